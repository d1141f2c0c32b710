// Package device provides the identifier source for hosts without a radio
// stack: values are configured up front and served as-is.
package device

import (
	"context"
	"log/slog"
	"maps"

	"pbd/internal/authorization"
	"pbd/pkg/platform/privacy"
)

// Static serves a fixed set of identifiers. Identifiers absent from the set,
// or configured empty, are reported as unavailable.
type Static struct {
	values map[authorization.Capability]string
	logger *slog.Logger
}

type Option func(*Static)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Static) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStatic(values map[authorization.Capability]string, opts ...Option) *Static {
	s := &Static{
		values: maps.Clone(values),
		logger: slog.New(slog.DiscardHandler),
	}
	if s.values == nil {
		s.values = map[authorization.Capability]string{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Static) Identifier(ctx context.Context, c authorization.Capability) (string, bool) {
	v, ok := s.values[c]
	if !ok || v == "" {
		s.logger.DebugContext(ctx, "identifier unavailable", "capability", c)
		return "", false
	}
	s.logger.DebugContext(ctx, "identifier read", "capability", c, "value", privacy.MaskIdentifier(v))
	return v, true
}
