// Package subscription tracks, per app, the location listener registered with
// the platform and whether an undelivered fix is waiting.
package subscription

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"pbd/internal/location"
	platformsync "pbd/pkg/platform/sync"
)

// Subscription is an app's standing location registration.
type Subscription struct {
	AppID string
	// ListenerID is an opaque token the app uses to correlate wake-up
	// notifications. It does not change for the life of the subscription.
	ListenerID      string
	Provider        location.Provider
	UpdateAvailable bool
}

// Platform is the device location service.
type Platform interface {
	// RequestUpdates starts periodic delivery for listenerID, replacing any
	// earlier registration. onChange runs for every new fix.
	RequestUpdates(ctx context.Context, listenerID string, provider location.Provider, minTime time.Duration, minDistance float32, onChange func()) error
	// RequestSingleUpdate asks for one fix; onChange runs once when it arrives.
	RequestSingleUpdate(ctx context.Context, listenerID string, provider location.Provider, onChange func()) error
	// RemoveUpdates stops delivery to listenerID. Unknown listeners are ignored.
	RemoveUpdates(ctx context.Context, listenerID string) error
	// LastKnownLocation returns the most recent fix for provider.
	LastKnownLocation(ctx context.Context, provider location.Provider) (location.Location, error)
}

const shardCount = 32

type shard struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// Registry holds at most one subscription per app. Apps are spread over
// shards so operations on different apps rarely share a lock.
type Registry struct {
	platform Platform

	shards [shardCount]shard
	active atomic.Int64

	newListenerID func() string
	metrics       *Metrics
	logger        *slog.Logger
}

type Option func(*Registry)

// WithListenerIDs overrides listener token generation.
func WithListenerIDs(gen func() string) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newListenerID = gen
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRegistry(platform Platform, opts ...Option) *Registry {
	r := &Registry{
		platform:      platform,
		newListenerID: NewListenerID,
		logger:        slog.New(slog.DiscardHandler),
	}
	for i := range r.shards {
		r.shards[i].subs = make(map[string]*Subscription)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) shardFor(appID string) *shard {
	return &r.shards[platformsync.ShardFor(appID, shardCount)]
}

// NewListenerID returns 128 random bits as 32 lowercase hex characters.
func NewListenerID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RegisterOrGet returns the app's subscription, creating one with a fresh
// listener token if none exists. Repeated calls return the same token.
func (r *Registry) RegisterOrGet(appID string) Subscription {
	sub, _ := r.Register(appID)
	return sub
}

// Register is RegisterOrGet that also reports whether this call created the
// subscription.
func (r *Registry) Register(appID string) (Subscription, bool) {
	sh := r.shardFor(appID)
	sh.mu.Lock()
	if sub, ok := sh.subs[appID]; ok {
		sh.mu.Unlock()
		return *sub, false
	}
	sub := &Subscription{AppID: appID, ListenerID: r.newListenerID()}
	sh.subs[appID] = sub
	sh.mu.Unlock()

	r.active.Add(1)
	r.metrics.addActive(1)
	return *sub, true
}

// Get returns a copy of the app's subscription.
func (r *Registry) Get(appID string) (Subscription, bool) {
	sh := r.shardFor(appID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	sub, ok := sh.subs[appID]
	if !ok {
		return Subscription{}, false
	}
	return *sub, true
}

// SetProvider records which provider the app's fixes come from. It reports
// false when the app has no subscription.
func (r *Registry) SetProvider(appID string, provider location.Provider) bool {
	sh := r.shardFor(appID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sub, ok := sh.subs[appID]
	if !ok {
		return false
	}
	sub.Provider = provider
	return true
}

// OnLocationChanged marks a fix as waiting and returns the listener token to
// wake the app with. It never creates a subscription.
func (r *Registry) OnLocationChanged(appID string) (string, bool) {
	sh := r.shardFor(appID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sub, ok := sh.subs[appID]
	if !ok {
		return "", false
	}
	sub.UpdateAvailable = true
	return sub.ListenerID, true
}

// TakeUpdate consumes the waiting-fix flag. It returns the provider to read
// from when a fix was waiting, and false otherwise.
func (r *Registry) TakeUpdate(appID string) (location.Provider, bool) {
	sh := r.shardFor(appID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sub, ok := sh.subs[appID]
	if !ok || !sub.UpdateAvailable {
		return location.ProviderUnset, false
	}
	sub.UpdateAvailable = false
	return sub.Provider, true
}

// StopUpdates stops platform delivery for the app but keeps its subscription,
// so a later request reuses the same listener token.
func (r *Registry) StopUpdates(ctx context.Context, appID string) error {
	sub, ok := r.Get(appID)
	if !ok {
		return nil
	}
	return r.platform.RemoveUpdates(ctx, sub.ListenerID)
}

// Remove deletes the app's subscription and stops platform delivery.
// Removing an app with no subscription is a no-op.
func (r *Registry) Remove(ctx context.Context, appID string) error {
	sub, ok := r.take(appID)
	if !ok {
		return nil
	}
	if err := r.platform.RemoveUpdates(ctx, sub.ListenerID); err != nil {
		r.logger.WarnContext(ctx, "failed to stop platform location updates",
			"app_id", appID,
			"error", err,
		)
		return err
	}
	r.logger.InfoContext(ctx, "location subscription removed", "app_id", appID)
	return nil
}

// Discard deletes the app's subscription without touching the platform. It
// is for subscriptions the platform never accepted a listener for.
func (r *Registry) Discard(appID string) {
	r.take(appID)
}

func (r *Registry) take(appID string) (*Subscription, bool) {
	sh := r.shardFor(appID)
	sh.mu.Lock()
	sub, ok := sh.subs[appID]
	if ok {
		delete(sh.subs, appID)
	}
	sh.mu.Unlock()

	if ok {
		r.active.Add(-1)
		r.metrics.addActive(-1)
	}
	return sub, ok
}

// Len returns the number of subscriptions.
func (r *Registry) Len() int {
	return int(r.active.Load())
}
