package simulator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbd/internal/location"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func fineFix(lat, lon float64) location.Location {
	return location.Location{Latitude: lat, Longitude: lon, Provider: location.ProviderFine}
}

func TestLocation_LastKnownLocation(t *testing.T) {
	ctx := context.Background()
	sim := NewLocation()

	_, err := sim.LastKnownLocation(ctx, location.ProviderFine)
	assert.ErrorIs(t, err, ErrNoFix)

	_, err = sim.Publish(ctx, fineFix(51.5, -0.12))
	require.NoError(t, err)

	fix, err := sim.LastKnownLocation(ctx, location.ProviderFine)
	require.NoError(t, err)
	assert.Equal(t, 51.5, fix.Latitude)
	assert.False(t, fix.Time.IsZero(), "publish stamps missing times")

	_, err = sim.LastKnownLocation(ctx, location.ProviderCoarse)
	assert.ErrorIs(t, err, ErrNoFix, "providers are tracked separately")
}

func TestLocation_PublishRequiresProvider(t *testing.T) {
	_, err := NewLocation().Publish(context.Background(), location.Location{Latitude: 1})
	assert.ErrorIs(t, err, ErrProviderMissing)
}

func TestLocation_UpdatesRespectFilters(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	sim := NewLocation(WithClock(clock.now))

	var calls atomic.Int32
	require.NoError(t, sim.RequestUpdates(ctx, "L1", location.ProviderFine, time.Minute, 100, func() { calls.Add(1) }))

	n, _ := sim.Publish(ctx, fineFix(51.5000, -0.1200))
	assert.Equal(t, 1, n, "first fix always delivers")

	clock.advance(10 * time.Second)
	n, _ = sim.Publish(ctx, fineFix(51.6000, -0.1200))
	assert.Zero(t, n, "too soon")

	clock.advance(time.Minute)
	n, _ = sim.Publish(ctx, fineFix(51.5001, -0.1200))
	assert.Zero(t, n, "too close to the last delivered fix")

	n, _ = sim.Publish(ctx, fineFix(51.5100, -0.1200))
	assert.Equal(t, 1, n)
	assert.Equal(t, int32(2), calls.Load())

	n, _ = sim.Publish(ctx, location.Location{Latitude: 40, Longitude: 2, Provider: location.ProviderCoarse})
	assert.Zero(t, n, "other provider")
}

func TestLocation_SingleUpdateFiresOnce(t *testing.T) {
	ctx := context.Background()
	sim := NewLocation()

	var calls atomic.Int32
	require.NoError(t, sim.RequestSingleUpdate(ctx, "L1", location.ProviderFine, func() { calls.Add(1) }))

	_, _ = sim.Publish(ctx, fineFix(1, 1))
	_, _ = sim.Publish(ctx, fineFix(2, 2))

	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, sim.Listeners())
}

func TestLocation_RemoveUpdates(t *testing.T) {
	ctx := context.Background()
	sim := NewLocation()

	var calls atomic.Int32
	require.NoError(t, sim.RequestUpdates(ctx, "L1", location.ProviderFine, 0, 0, func() { calls.Add(1) }))
	require.NoError(t, sim.RemoveUpdates(ctx, "L1"))
	require.NoError(t, sim.RemoveUpdates(ctx, "unknown"))

	_, _ = sim.Publish(ctx, fineFix(1, 1))
	assert.Zero(t, calls.Load())
}

func TestLocation_CallbackMayReenter(t *testing.T) {
	ctx := context.Background()
	sim := NewLocation()

	var got location.Location
	require.NoError(t, sim.RequestUpdates(ctx, "L1", location.ProviderFine, 0, 0, func() {
		got, _ = sim.LastKnownLocation(ctx, location.ProviderFine)
	}))

	_, _ = sim.Publish(ctx, fineFix(3, 4))
	assert.Equal(t, 3.0, got.Latitude)
}

func TestDistanceMeters(t *testing.T) {
	a := location.Location{Latitude: 0, Longitude: 0}
	b := location.Location{Latitude: 0, Longitude: 1}
	assert.InDelta(t, 111195, distanceMeters(a, b), 10)
	assert.Zero(t, distanceMeters(a, a))
}
