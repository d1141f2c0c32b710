// Package circuit tracks consecutive failures of a downstream dependency.
package circuit

import "sync"

// State is the breaker position.
type State int

const (
	// StateClosed: the dependency is considered healthy.
	StateClosed State = iota
	// StateOpen: recent calls kept failing.
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Breaker opens after FailureThreshold consecutive failures and closes again
// after SuccessThreshold consecutive successes while open. It never blocks
// calls itself; callers decide what an open breaker means for them.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
	onChange         func(name string, from, to State)
}

type Option func(*Breaker)

// WithFailureThreshold defaults to 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold defaults to 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithStateChange registers fn to run on every transition. fn runs with the
// breaker lock released.
func WithStateChange(fn func(name string, from, to State)) Option {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		successThreshold: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// RecordFailure counts a failed call and returns the resulting state.
func (b *Breaker) RecordFailure() State {
	b.mu.Lock()
	b.failures++
	b.successes = 0
	from := b.state
	if b.state == StateClosed && b.failures >= b.failureThreshold {
		b.state = StateOpen
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return to
}

// RecordSuccess counts a successful call and returns the resulting state.
func (b *Breaker) RecordSuccess() State {
	b.mu.Lock()
	from := b.state
	if b.state == StateOpen {
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	} else {
		b.failures = 0
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return to
}

// Reset closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	b.mu.Unlock()

	b.notify(from, StateClosed)
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
