// Package requestcontext carries per-request values (request id, calling app)
// through context.Context.
package requestcontext

import (
	"context"
	"time"
)

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyAppID
	keyClientIP
	keyNow
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID returns the request id, or "" when none was set.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(keyRequestID).(string)
	return v
}

// WithAppID records the package name of the calling application.
func WithAppID(ctx context.Context, appID string) context.Context {
	return context.WithValue(ctx, keyAppID, appID)
}

func AppID(ctx context.Context) string {
	v, _ := ctx.Value(keyAppID).(string)
	return v
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, keyClientIP, ip)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(keyClientIP).(string)
	return v
}

// WithNow pins the clock for everything downstream of ctx. Tests use it to
// get deterministic token timestamps.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, keyNow, now)
}

// Now returns the pinned time when present, otherwise time.Now().
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(keyNow).(time.Time); ok {
		return v
	}
	return time.Now()
}
