package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New("collector", WithFailureThreshold(3))

	assert.Equal(t, StateClosed, b.RecordFailure())
	assert.Equal(t, StateClosed, b.RecordFailure())
	assert.Equal(t, StateOpen, b.RecordFailure())
	assert.True(t, b.IsOpen())
}

func TestBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b := New("collector", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.RecordFailure(), "streak restarted after success")
}

func TestBreaker_ClosesAfterSuccessThreshold(t *testing.T) {
	b := New("collector", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	assert.Equal(t, StateOpen, b.RecordSuccess())
	assert.Equal(t, StateClosed, b.RecordSuccess())
}

func TestBreaker_StateChangeCallback(t *testing.T) {
	var transitions []string
	b := New("collector",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithStateChange(func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		}),
	)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.Reset()

	assert.Equal(t, []string{"collector:closed->open", "collector:open->closed"}, transitions)
}

func TestBreaker_IgnoresNonPositiveThresholds(t *testing.T) {
	b := New("x", WithFailureThreshold(0), WithSuccessThreshold(-1), nil)
	for range 4 {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen(), "default threshold of 5 applies")
	b.RecordFailure()
	assert.True(t, b.IsOpen())
}
