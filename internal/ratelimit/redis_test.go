package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func newTestRedisStore(t *testing.T) (*RedisStore, *time.Time) {
	t.Helper()
	now := time.Unix(1_700_000_000, 0)
	store := NewRedisStore(setupTestRedis(t), Config{MaxAttempts: 3, Window: 10 * time.Minute}, nil)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestRedisStore_AllowsUpToMax(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, store.Allow(ctx, "1.2.3.4"), "attempt %d", i+1)
	}
	assert.False(t, store.Allow(ctx, "1.2.3.4"))
}

func TestRedisStore_WindowSlides(t *testing.T) {
	store, now := newTestRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, store.Allow(ctx, "1.2.3.4"))
	}
	require.False(t, store.Allow(ctx, "1.2.3.4"))

	*now = now.Add(10*time.Minute + time.Second)
	assert.True(t, store.Allow(ctx, "1.2.3.4"))
}

func TestRedisStore_KeysAreIndependent(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, store.Allow(ctx, "1.2.3.4"))
	}
	require.False(t, store.Allow(ctx, "1.2.3.4"))
	assert.True(t, store.Allow(ctx, "5.6.7.8"))
}

func TestRedisStore_FailsOpenWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	store := NewRedisStore(client, Config{MaxAttempts: 1, Window: time.Minute}, nil)
	for i := 0; i < 5; i++ {
		assert.True(t, store.Allow(context.Background(), "1.2.3.4"))
	}
}
