// Package credential keeps one OAuth-style token bundle per app, fetching it
// on first use and refreshing it on every later use.
package credential

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pbd/internal/policy"
	platformsync "pbd/pkg/platform/sync"
	"pbd/pkg/platform/tracer"
)

const (
	bootstrapPath = "/get_current_tokens"
	refreshPath   = "/oauth/token"
	authorizedCB  = "/authorized"
)

// Querier issues one policy query.
type Querier interface {
	Query(ctx context.Context, path string, params policy.Params) (map[string]any, error)
}

// Cache stores credentials per app. Calls for the same app are serialized
// across the remote exchange; calls for different apps proceed in parallel.
type Cache struct {
	issuer      Querier
	tokens      Querier
	redirectURI string

	locks *platformsync.KeyedMutex
	mu    sync.RWMutex
	creds map[string]entry

	freshness time.Duration
	now       func() time.Time
	tracer    tracer.Tracer
	metrics   *Metrics
	logger    *slog.Logger
}

type Option func(*Cache)

// WithFreshness lets Ensure return a bundle validated less than d ago without
// contacting the server. Zero (the default) revalidates on every call.
func WithFreshness(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.freshness = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Cache) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Cache. issuer serves the bootstrap endpoint and tokens serves
// the refresh endpoint; issuerBaseURL is used to build the redirect_uri sent
// on refresh.
func New(issuer, tokens Querier, issuerBaseURL string, opts ...Option) *Cache {
	c := &Cache{
		issuer:      issuer,
		tokens:      tokens,
		redirectURI: issuerBaseURL + authorizedCB,
		locks:       platformsync.NewKeyedMutex(),
		creds:       make(map[string]entry),
		now:         time.Now,
		tracer:      tracer.NewNoop(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure returns a usable credential for appID. With no stored bundle it
// bootstraps one; otherwise it refreshes the stored bundle. Exactly one
// remote request is made per call unless the freshness window applies.
func (c *Cache) Ensure(ctx context.Context, appID string) (cred AppCredential, err error) {
	c.locks.Lock(appID)
	defer c.locks.Unlock(appID)

	ctx, span := c.tracer.Start(ctx, tracer.SpanCredential, tracer.String(tracer.AttrAppID, appID))
	defer func() { span.End(err) }()

	current, ok := c.get(appID)
	if !ok {
		span.SetAttributes(tracer.String(tracer.AttrOperation, "bootstrap"))
		cred, err = c.bootstrap(ctx, appID)
		c.metrics.record("bootstrap", err)
		return cred, err
	}

	if c.freshness > 0 && c.now().Sub(current.validatedAt) < c.freshness {
		span.SetAttributes(tracer.String(tracer.AttrOperation, "cached"))
		c.metrics.record("cached", nil)
		return current.cred, nil
	}

	span.SetAttributes(tracer.String(tracer.AttrOperation, "refresh"))
	cred, err = c.refresh(ctx, appID, current.cred)
	c.metrics.record("refresh", err)
	return cred, err
}

// Lookup returns the stored bundle without contacting any server.
func (c *Cache) Lookup(appID string) (AppCredential, bool) {
	e, ok := c.get(appID)
	return e.cred, ok
}

// Len returns the number of apps with a stored bundle.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.creds)
}

func (c *Cache) bootstrap(ctx context.Context, appID string) (AppCredential, error) {
	body, err := c.issuer.Query(ctx, bootstrapPath, nil)
	if err != nil {
		c.logger.WarnContext(ctx, "credential bootstrap failed", "app_id", appID, "error", err)
		return AppCredential{}, fmt.Errorf("%w: %w", ErrBootstrapFailed, err)
	}

	cred := AppCredential{}
	cred.AccessToken, _ = policy.StringField(body, "access_token")
	cred.RefreshToken, _ = policy.StringField(body, "refresh_token")
	cred.ClientID, _ = policy.StringField(body, "client_id")
	cred.ClientSecret, _ = policy.StringField(body, "client_secret")
	cred.APIKey, _ = policy.StringField(body, "api_key")
	if !cred.complete() {
		c.logger.WarnContext(ctx, "credential bootstrap returned an incomplete bundle", "app_id", appID)
		return AppCredential{}, fmt.Errorf("%w: incomplete token bundle", ErrBootstrapFailed)
	}

	c.put(appID, cred)
	c.logger.InfoContext(ctx, "credential bootstrapped", "app_id", appID)
	return cred, nil
}

func (c *Cache) refresh(ctx context.Context, appID string, current AppCredential) (AppCredential, error) {
	params := policy.Params{}.
		Add("grant_type", "refresh_token").
		Add("refresh_token", current.RefreshToken).
		Add("client_secret", current.ClientSecret).
		Add("redirect_uri", c.redirectURI).
		Add("client_id", current.ClientID)

	body, err := c.tokens.Query(ctx, refreshPath, params)
	if err != nil {
		c.logger.WarnContext(ctx, "credential refresh failed", "app_id", appID, "error", err)
		return AppCredential{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	access, okAccess := policy.StringField(body, "access_token")
	refresh, okRefresh := policy.StringField(body, "refresh_token")
	if !okAccess || !okRefresh {
		c.logger.WarnContext(ctx, "credential refresh response missing tokens", "app_id", appID)
		return AppCredential{}, fmt.Errorf("%w: response missing tokens", ErrRefreshFailed)
	}

	updated := current
	updated.AccessToken = access
	updated.RefreshToken = refresh
	c.put(appID, updated)
	return updated, nil
}

func (c *Cache) get(appID string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.creds[appID]
	return e, ok
}

func (c *Cache) put(appID string, cred AppCredential) {
	c.mu.Lock()
	c.creds[appID] = entry{cred: cred, validatedAt: c.now()}
	n := len(c.creds)
	c.mu.Unlock()
	c.metrics.setCached(n)
}
