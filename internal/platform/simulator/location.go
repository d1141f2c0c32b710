// Package simulator stands in for the device location service. Fixes are fed
// in with Publish and fanned out to registered listeners using the same
// interval and distance filters a real provider applies.
package simulator

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"pbd/internal/location"
)

var (
	ErrNoFix           = errors.New("no fix available for provider")
	ErrProviderMissing = errors.New("fix has no provider")
)

const earthRadiusMeters = 6371008.8

type listener struct {
	provider    location.Provider
	minTime     time.Duration
	minDistance float64
	single      bool
	onChange    func()

	delivered   bool
	lastFix     location.Location
	lastDeliver time.Time
}

// Location is an in-memory location service.
type Location struct {
	mu        sync.Mutex
	listeners map[string]*listener
	last      map[location.Provider]location.Location

	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Location)

func WithClock(now func() time.Time) Option {
	return func(l *Location) {
		if now != nil {
			l.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Location) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLocation(opts ...Option) *Location {
	l := &Location{
		listeners: make(map[string]*listener),
		last:      make(map[location.Provider]location.Location),
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Location) RequestUpdates(_ context.Context, listenerID string, provider location.Provider, minTime time.Duration, minDistance float32, onChange func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners[listenerID] = &listener{
		provider:    provider,
		minTime:     minTime,
		minDistance: float64(minDistance),
		onChange:    onChange,
	}
	return nil
}

func (l *Location) RequestSingleUpdate(_ context.Context, listenerID string, provider location.Provider, onChange func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners[listenerID] = &listener{
		provider: provider,
		single:   true,
		onChange: onChange,
	}
	return nil
}

func (l *Location) RemoveUpdates(_ context.Context, listenerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.listeners, listenerID)
	return nil
}

func (l *Location) LastKnownLocation(_ context.Context, provider location.Provider) (location.Location, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fix, ok := l.last[provider]
	if !ok {
		return location.Location{}, ErrNoFix
	}
	return fix, nil
}

// Publish records fix as the provider's last known location and notifies
// every listener whose filters it passes. It returns the number of listeners
// notified. Callbacks run on the caller's goroutine after the lock is released.
func (l *Location) Publish(ctx context.Context, fix location.Location) (int, error) {
	if !fix.Provider.IsSet() {
		return 0, ErrProviderMissing
	}
	now := l.now()
	if fix.Time.IsZero() {
		fix.Time = now
	}

	l.mu.Lock()
	l.last[fix.Provider] = fix
	var notify []func()
	for id, ln := range l.listeners {
		if ln.provider != fix.Provider || !ln.accepts(fix, now) {
			continue
		}
		ln.delivered = true
		ln.lastFix = fix
		ln.lastDeliver = now
		if ln.single {
			delete(l.listeners, id)
		}
		if ln.onChange != nil {
			notify = append(notify, ln.onChange)
		}
	}
	l.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
	l.logger.DebugContext(ctx, "fix published",
		"provider", fix.Provider,
		"listeners_notified", len(notify),
	)
	return len(notify), nil
}

// Listeners returns the number of registered listeners.
func (l *Location) Listeners() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.listeners)
}

func (ln *listener) accepts(fix location.Location, now time.Time) bool {
	if !ln.delivered {
		return true
	}
	if now.Sub(ln.lastDeliver) < ln.minTime {
		return false
	}
	return distanceMeters(ln.lastFix, fix) >= ln.minDistance
}

// distanceMeters is the great-circle distance between two fixes.
func distanceMeters(a, b location.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
