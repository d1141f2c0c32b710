package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, AppID(ctx))
	assert.Empty(t, ClientIP(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithAppID(ctx, "com.example.maps")
	ctx = WithClientIP(ctx, "10.0.0.7")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "com.example.maps", AppID(ctx))
	assert.Equal(t, "10.0.0.7", ClientIP(ctx))
}

func TestNow(t *testing.T) {
	pinned := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, pinned, Now(WithNow(context.Background(), pinned)))
	assert.WithinDuration(t, time.Now(), Now(context.Background()), time.Second)
}
