// Package relay forwards granted data to the collection endpoint. Delivery
// runs on a bounded queue drained by a fixed worker pool; failures are
// logged and never reach the app that triggered them.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pbd/internal/location"
	"pbd/pkg/platform/circuit"
	"pbd/pkg/platform/tracer"
)

const (
	kindIdentifiers = "identifiers"
	kindLocation    = "location"

	defaultWorkers   = 4
	defaultQueueSize = 256
)

// ErrCollectorUnavailable is reported by Healthy while recent deliveries
// keep failing.
var ErrCollectorUnavailable = errors.New("collection endpoint unavailable")

// Sender performs one delivery exchange.
type Sender interface {
	Send(ctx context.Context, payload string) (string, error)
}

type dispatch struct {
	appID   string
	kind    string
	payload string
}

// Relay serializes records and hands them to the worker pool.
type Relay struct {
	sender   Sender
	username string

	mu     sync.RWMutex
	closed bool
	queue  chan dispatch
	group  errgroup.Group

	sentMu sync.Mutex
	sent   map[string]struct{}

	workers   int
	queueSize int
	breaker   *circuit.Breaker
	now       func() time.Time
	tracer    tracer.Tracer
	metrics   *Metrics
	logger    *slog.Logger
}

type Option func(*Relay)

func WithWorkers(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithQueueSize bounds the number of records waiting for a worker. When the
// queue is full the oldest waiting record is dropped.
func WithQueueSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) {
		if b != nil {
			r.breaker = b
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		if now != nil {
			r.now = now
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(r *Relay) {
		if t != nil {
			r.tracer = t
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New starts a relay whose workers run until Close.
func New(sender Sender, username string, opts ...Option) *Relay {
	r := &Relay{
		sender:    sender,
		username:  username,
		sent:      make(map[string]struct{}),
		workers:   defaultWorkers,
		queueSize: defaultQueueSize,
		now:       time.Now,
		tracer:    tracer.NewNoop(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = circuit.New("collector", circuit.WithStateChange(r.logBreakerChange))
	}
	r.queue = make(chan dispatch, r.queueSize)
	for range r.workers {
		r.group.Go(r.work)
	}
	return r
}

// RelayIdentifierSnapshot sends the device record for appID the first time
// it is called for that app and reports whether a dispatch was started.
// The app is marked as sent as soon as dispatch starts, whether or not
// delivery later succeeds.
func (r *Relay) RelayIdentifierSnapshot(ctx context.Context, appID string, snap IdentifierSnapshot) bool {
	if !r.markSent(appID) {
		r.logger.DebugContext(ctx, "identifiers already sent", "app_id", appID)
		return false
	}
	r.enqueue(ctx, dispatch{
		appID:   appID,
		kind:    kindIdentifiers,
		payload: FormatIdentifiers(snap, r.username),
	})
	return true
}

// RelayLocation sends a location record. Locations are never deduplicated.
func (r *Relay) RelayLocation(ctx context.Context, appID string, loc location.Location) {
	r.enqueue(ctx, dispatch{
		appID:   appID,
		kind:    kindLocation,
		payload: FormatLocation(loc, r.username, r.now()),
	})
}

// Sent reports whether identifiers for appID have been dispatched.
func (r *Relay) Sent(appID string) bool {
	r.sentMu.Lock()
	defer r.sentMu.Unlock()
	_, ok := r.sent[appID]
	return ok
}

// Healthy returns ErrCollectorUnavailable while the breaker is open.
func (r *Relay) Healthy() error {
	if r.breaker.IsOpen() {
		return ErrCollectorUnavailable
	}
	return nil
}

// Close stops accepting records, waits for queued ones to be delivered, and
// stops the workers.
func (r *Relay) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	return r.group.Wait()
}

func (r *Relay) logBreakerChange(name string, _, to circuit.State) {
	if to == circuit.StateOpen {
		r.logger.Error("collection endpoint marked unavailable", "breaker", name)
		return
	}
	r.logger.Info("collection endpoint recovered", "breaker", name)
}

func (r *Relay) markSent(appID string) bool {
	r.sentMu.Lock()
	defer r.sentMu.Unlock()
	if _, ok := r.sent[appID]; ok {
		return false
	}
	r.sent[appID] = struct{}{}
	return true
}

// enqueue never blocks: a full queue sheds its oldest record.
func (r *Relay) enqueue(ctx context.Context, d dispatch) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.WarnContext(ctx, "relay closed, record dropped", "app_id", d.appID, "kind", d.kind)
		r.metrics.recordDropped(d.kind)
		return
	}

	for {
		select {
		case r.queue <- d:
			r.metrics.recordQueued(d.kind, len(r.queue))
			return
		default:
		}
		select {
		case old := <-r.queue:
			r.logger.WarnContext(ctx, "relay queue full, oldest record dropped",
				"app_id", old.appID,
				"kind", old.kind,
			)
			r.metrics.recordDropped(old.kind)
		default:
		}
	}
}

func (r *Relay) work() error {
	for d := range r.queue {
		r.deliver(d)
	}
	return nil
}

func (r *Relay) deliver(d dispatch) {
	ctx, span := r.tracer.Start(context.Background(), tracer.SpanRelayDispatch,
		tracer.String(tracer.AttrAppID, d.appID),
		tracer.String("kind", d.kind),
	)
	start := time.Now()
	resp, err := r.sender.Send(ctx, d.payload)
	r.metrics.recordDelivery(d.kind, err, time.Since(start).Seconds(), len(r.queue))
	span.End(err)

	if err != nil {
		r.breaker.RecordFailure()
		r.logger.Warn("relay delivery failed",
			"app_id", d.appID,
			"kind", d.kind,
			"error", err,
		)
		return
	}

	r.breaker.RecordSuccess()
	r.logger.Debug("relay delivered", "app_id", d.appID, "kind", d.kind, "response", resp)
}
