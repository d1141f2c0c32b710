package notify

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Wake(t *testing.T) {
	n := New(WithRegisterer(prometheus.NewRegistry()))

	_, ok := n.LastWake("com.example.app")
	assert.False(t, ok)

	require.NoError(t, n.Wake(context.Background(), "com.example.app", "L1"))
	require.NoError(t, n.Wake(context.Background(), "com.example.app", "L2"))

	id, ok := n.LastWake("com.example.app")
	assert.True(t, ok)
	assert.Equal(t, "L2", id)
	assert.Equal(t, 2.0, testutil.ToFloat64(n.wakes))
}

func TestNotifier_WithoutMetrics(t *testing.T) {
	assert.NoError(t, New().Wake(context.Background(), "a", "b"))
}
