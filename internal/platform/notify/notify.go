// Package notify wakes apps that have a location fix waiting. This host has
// no app process to signal, so wake-ups are logged, counted and kept for the
// app to poll.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notifier records the most recent wake-up per app.
type Notifier struct {
	mu    sync.RWMutex
	last  map[string]string
	wakes prometheus.Counter

	logger *slog.Logger
}

type Option func(*Notifier)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithRegisterer registers the wake-up counter with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(n *Notifier) {
		n.wakes = promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pbd_app_wakeups_total",
			Help: "Apps woken because a location fix is waiting",
		})
	}
}

func New(opts ...Option) *Notifier {
	n := &Notifier{
		last:   make(map[string]string),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Wake tells the app owning listenerID that a fix is waiting.
func (n *Notifier) Wake(ctx context.Context, appID, listenerID string) error {
	n.mu.Lock()
	n.last[appID] = listenerID
	n.mu.Unlock()

	if n.wakes != nil {
		n.wakes.Inc()
	}
	n.logger.InfoContext(ctx, "wake app", "app_id", appID, "listener_id", listenerID)
	return nil
}

// LastWake returns the listener token the app was last woken with.
func (n *Notifier) LastWake(appID string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	id, ok := n.last[appID]
	return id, ok
}
