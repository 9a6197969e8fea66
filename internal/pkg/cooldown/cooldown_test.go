package cooldown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_FirstCreateAllowed(t *testing.T) {
	guard := NewGuard(NewMemoryStore(), 10*time.Second)

	err := guard.Check(context.Background(), 1)
	assert.NoError(t, err)
}

func TestGuard_BlockedWithinWindow(t *testing.T) {
	store := NewMemoryStore()
	guard := NewGuard(store, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, guard.MarkCreated(ctx, 1))

	err := guard.Check(ctx, 1)
	require.Error(t, err)

	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Greater(t, rle.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, rle.RetryAfter, 10*time.Second)
}

func TestGuard_AllowedAfterWindow(t *testing.T) {
	store := NewMemoryStore()
	guard := NewGuard(store, 10*time.Second)
	ctx := context.Background()

	// 直接写入一个窗口之外的时间戳
	require.NoError(t, store.SetLastCreate(ctx, 1, time.Now().Add(-11*time.Second)))

	assert.NoError(t, guard.Check(ctx, 1))
}

func TestGuard_PerUserIsolation(t *testing.T) {
	guard := NewGuard(NewMemoryStore(), 10*time.Second)
	ctx := context.Background()

	require.NoError(t, guard.MarkCreated(ctx, 1))

	assert.Error(t, guard.Check(ctx, 1))
	assert.NoError(t, guard.Check(ctx, 2))
}

func TestGuard_ZeroWindowDisabled(t *testing.T) {
	guard := NewGuard(NewMemoryStore(), 0)
	ctx := context.Background()

	require.NoError(t, guard.MarkCreated(ctx, 1))
	assert.NoError(t, guard.Check(ctx, 1))
}

func TestRateLimitError_Message(t *testing.T) {
	err := &RateLimitError{RetryAfter: 3500 * time.Millisecond}
	// 剩余时间向上取整到秒
	assert.Contains(t, err.Error(), "4 秒")

	err = &RateLimitError{RetryAfter: 100 * time.Millisecond}
	assert.Contains(t, err.Error(), "1 秒")
}

func setupRedisStore(t *testing.T, window time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, window), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := setupRedisStore(t, 10*time.Second)
	ctx := context.Background()

	_, ok, err := store.GetLastCreate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now()
	require.NoError(t, store.SetLastCreate(ctx, 1, now))

	got, ok, err := store.GetLastCreate(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now.UnixNano(), got.UnixNano())
}

func TestRedisStore_KeyExpires(t *testing.T) {
	store, mr := setupRedisStore(t, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, store.SetLastCreate(ctx, 1, time.Now()))

	mr.FastForward(11 * time.Second)

	_, ok, err := store.GetLastCreate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_CorruptValueTreatedAsMissing(t *testing.T) {
	store, mr := setupRedisStore(t, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, mr.Set("comment:cooldown:1", "not-a-number"))

	_, ok, err := store.GetLastCreate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGuard_WithRedisStore(t *testing.T) {
	store, mr := setupRedisStore(t, 10*time.Second)
	guard := NewGuard(store, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, guard.MarkCreated(ctx, 1))
	assert.Error(t, guard.Check(ctx, 1))

	mr.FastForward(11 * time.Second)
	assert.NoError(t, guard.Check(ctx, 1))
}
