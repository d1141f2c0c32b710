// Package tracer is a small tracing facade so services can emit spans without
// importing OpenTelemetry directly.
//
// Implementations:
//   - Noop: for tests
//   - OTel: OpenTelemetry adapter backed by the global provider
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashValue returns a short SHA-256 prefix of v so spans can correlate on a
// credential or identifier without carrying it.
func HashValue(v string) string {
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:8])
}

const (
	SpanPolicyQuery   = "policy.query"
	SpanAuthorize     = "authorization.authorize"
	SpanCredential    = "credential.ensure"
	SpanRelayDispatch = "relay.dispatch"
)

const (
	AttrAppID      = "app.id"
	AttrCapability = "capability"
	AttrEndpoint   = "endpoint"
	AttrDecision   = "decision"
	AttrStatusCode = "http.status_code"
	AttrOperation  = "operation"
	AttrAccessHash = "credential.access_hash"
)
