package hotcache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDisabledCache(t *testing.T) {
	var c Disabled

	text, ok, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, text)

	require.NoError(t, c.Set(context.Background(), "abc", "hello"))
	require.NoError(t, c.Close())
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisOptions{})
	require.Error(t, err)
}

// TestRedisCacheRoundTrip runs only when REDIS_ADDR points at a live server.
func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	cache, err := NewRedisCache(ctx, RedisOptions{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	defer cache.Close()

	_, ok, err := cache.Get(ctx, "hotcache-test-missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, "hotcache-test", "some text"))

	text, ok, err := cache.Get(ctx, "hotcache-test")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "some text", text)
}
