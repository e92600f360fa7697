package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Exclusive(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	release, err := m.Acquire(ctx, "SHIP-1", time.Minute)
	require.NoError(t, err)

	_, err = m.Acquire(ctx, "SHIP-1", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	_, err = m.Acquire(ctx, "SHIP-2", time.Minute)
	assert.NoError(t, err)

	require.NoError(t, release(ctx))
	_, err = m.Acquire(ctx, "SHIP-1", time.Minute)
	assert.NoError(t, err)
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.clock = func() time.Time { return now }
	ctx := context.Background()

	stale, err := m.Acquire(ctx, "SHIP-1", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = m.Acquire(ctx, "SHIP-1", time.Minute)
	require.NoError(t, err)

	// The expired holder must not drop the new holder's lock.
	require.NoError(t, stale(ctx))
	_, err = m.Acquire(ctx, "SHIP-1", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestMemory_ConcurrentAcquire(t *testing.T) {
	m := NewMemory()
	var won atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Acquire(context.Background(), "SHIP-1", time.Minute); err == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), won.Load())
}

func TestRedis_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	r := NewRedisWithClient(client)
	defer r.Close()

	_, err := r.Acquire(context.Background(), "SHIP-1", time.Minute)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocked)
}
