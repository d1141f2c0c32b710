package sync

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbd/pkg/testutil"
)

func TestKeyedMutex_LockUnlock(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("key1")
	m.Unlock("key1")

	// Empty key is just another key
	m.Lock("")
	m.Unlock("")

	assert.Equal(t, 0, m.Len(), "entries should be released after unlock")
}

func TestKeyedMutex_SameKeySerializes(t *testing.T) {
	m := NewKeyedMutex()
	counter := 0

	res := testutil.RunConcurrent(100, func(int) error {
		m.Lock("same-key")
		defer m.Unlock("same-key")
		counter++
		return nil
	})

	assert.Equal(t, int32(100), res.Successes)
	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, m.Len())
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("app.a")
	defer m.Unlock("app.a")

	done := make(chan struct{})
	go func() {
		m.Lock("app.b")
		m.Unlock("app.b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedMutex_WaiterAcquiresAfterRelease(t *testing.T) {
	m := NewKeyedMutex()
	var acquired atomic.Bool

	m.Lock("k")
	go func() {
		m.Lock("k")
		acquired.Store(true)
		m.Unlock("k")
	}()

	time.Sleep(20 * time.Millisecond)
	require.False(t, acquired.Load(), "waiter must not acquire while held")

	m.Unlock("k")
	require.Eventually(t, acquired.Load, time.Second, 5*time.Millisecond)
}

func TestKeyedMutex_UnlockUnknownKeyPanics(t *testing.T) {
	m := NewKeyedMutex()
	assert.Panics(t, func() { m.Unlock("never-locked") })
}

func TestKeyedMutex_WithLock(t *testing.T) {
	m := NewKeyedMutex()
	ran := false
	m.WithLock("k", func() {
		ran = true
		assert.Equal(t, 1, m.Len())
	})
	assert.True(t, ran)
	assert.Equal(t, 0, m.Len())
}

func TestShardFor(t *testing.T) {
	assert.Equal(t, 0, ShardFor("", 32))
	assert.Equal(t, 0, ShardFor("com.example.app", 1))
	assert.Equal(t, ShardFor("com.example.app", 32), ShardFor("com.example.app", 32))

	seen := make(map[int]bool)
	for i := range 200 {
		idx := ShardFor(fmt.Sprintf("com.example.app%d", i), 32)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 32)
		seen[idx] = true
	}
	assert.Greater(t, len(seen), 16, "keys should spread across shards")
}
