// Package authorization decides, per app and capability, whether the remote
// policy server permits access.
package authorization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"pbd/internal/credential"
	"pbd/internal/location"
	"pbd/internal/policy"
	"pbd/pkg/platform/tracer"
)

// Decision is the outcome of an authorization request.
type Decision int

const (
	Error Decision = iota
	Refused
	Granted
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Refused:
		return "refused"
	default:
		return "error"
	}
}

// ErrUnknownCapability is returned for a capability outside the enumeration.
var ErrUnknownCapability = errors.New("unknown capability")

// ErrProviderRequired is returned when a location capability has no provider.
var ErrProviderRequired = errors.New("location provider required")

// Request is one authorization question.
type Request struct {
	AppID      string
	Capability Capability
	// Provider is required for location capabilities.
	Provider location.Provider
	// MinTimeMillis and MinDistance only apply to LocationUpdates.
	MinTimeMillis int64
	MinDistance   float32
}

// CredentialSource yields a usable credential for an app.
type CredentialSource interface {
	Ensure(ctx context.Context, appID string) (credential.AppCredential, error)
}

// Querier issues one policy query.
type Querier interface {
	Query(ctx context.Context, path string, params policy.Params) (map[string]any, error)
}

// Config carries the broker settings.
type Config struct {
	// Username is sent with every policy query.
	Username string
	// AuthenticationEnabled false grants every request without contacting
	// any server. Development only.
	AuthenticationEnabled bool
}

// Broker answers authorization requests.
type Broker struct {
	creds   CredentialSource
	policy  Querier
	cfg     Config
	tracer  tracer.Tracer
	metrics *Metrics
	logger  *slog.Logger
}

type Option func(*Broker)

func WithTracer(t tracer.Tracer) Option {
	return func(b *Broker) {
		if t != nil {
			b.tracer = t
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(b *Broker) {
		b.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Broker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func New(creds CredentialSource, policy Querier, cfg Config, opts ...Option) *Broker {
	b := &Broker{
		creds:  creds,
		policy: policy,
		cfg:    cfg,
		tracer: tracer.NewNoop(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	if !cfg.AuthenticationEnabled {
		b.logger.Warn("authentication disabled: every capability request will be granted")
	}
	return b
}

// Authorize returns Granted, Refused, or Error. The error is non-nil only
// for Error and carries the cause.
func (b *Broker) Authorize(ctx context.Context, req Request) (decision Decision, err error) {
	ctx, span := b.tracer.Start(ctx, tracer.SpanAuthorize,
		tracer.String(tracer.AttrAppID, req.AppID),
		tracer.String(tracer.AttrCapability, string(req.Capability)),
	)
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrDecision, decision.String()))
		span.End(err)
		b.metrics.record(req.Capability, decision)
	}()

	entry, ok := capabilities[req.Capability]
	if !ok {
		return Error, fmt.Errorf("%w: %q", ErrUnknownCapability, req.Capability)
	}
	if entry.kind != scopeIdentifier && !req.Provider.IsSet() {
		return Error, ErrProviderRequired
	}

	if !b.cfg.AuthenticationEnabled {
		return Granted, nil
	}

	cred, err := b.creds.Ensure(ctx, req.AppID)
	if err != nil {
		b.logger.WarnContext(ctx, "authorization failed: no usable credential",
			"app_id", req.AppID,
			"capability", req.Capability,
			"error", err,
		)
		return Error, err
	}

	body, err := b.policy.Query(ctx, entry.endpoint, b.params(entry.kind, req, cred))
	if err != nil {
		b.logger.WarnContext(ctx, "authorization failed: policy query",
			"app_id", req.AppID,
			"capability", req.Capability,
			"error", err,
		)
		return Error, err
	}

	permitted, err := policy.Permitted(body, entry.decisionField)
	if err != nil {
		b.logger.WarnContext(ctx, "authorization failed: malformed decision",
			"app_id", req.AppID,
			"capability", req.Capability,
			"error", err,
		)
		return Error, err
	}
	if !permitted {
		b.logger.InfoContext(ctx, "capability refused", "app_id", req.AppID, "capability", req.Capability)
		return Refused, nil
	}
	b.logger.DebugContext(ctx, "capability granted", "app_id", req.AppID, "capability", req.Capability)
	return Granted, nil
}

func (b *Broker) params(kind scopeKind, req Request, cred credential.AppCredential) policy.Params {
	p := policy.Params{}.Add("access_token", cred.AccessToken)
	switch kind {
	case scopeIdentifier:
		return p.
			Add("scope", string(req.Capability)).
			Add("username", b.cfg.Username).
			Add("api_key", cred.APIKey)
	case scopeLocationUpdates:
		return p.
			Add("scope", string(req.Provider)).
			Add("username", b.cfg.Username).
			Add("duration", strconv.FormatInt(req.MinTimeMillis/1000, 10)).
			Add("distance", formatFloat(req.MinDistance))
	default:
		return p.
			Add("scope", string(req.Provider)).
			Add("username", b.cfg.Username).
			Add("type", "Single")
	}
}
