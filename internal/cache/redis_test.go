package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ services.Cache = (*cache.RedisCache)(nil)

// newTestCache connects to the Redis named by REDIS_TEST_ADDR and skips otherwise.
func newTestCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	c, err := cache.NewRedisCache(context.Background(), cache.Config{Addr: addr, DB: 15, TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

type entry struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func TestRedisCache_SetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.DeletePrefix(ctx, "test:"))

	var got entry
	hit, err := c.Get(ctx, "test:missing", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "test:one", entry{Name: "Tシャツ", Price: 298000}))
	hit, err = c.Get(ctx, "test:one", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, entry{Name: "Tシャツ", Price: 298000}, got)
}

func TestRedisCache_DeletePrefix(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, "test:list:"+time.Duration(i).String(), entry{Price: int64(i)}))
	}
	require.NoError(t, c.Set(ctx, "test:keep", entry{Name: "keep"}))

	require.NoError(t, c.DeletePrefix(ctx, "test:list:"))

	var got entry
	hit, err := c.Get(ctx, "test:list:0s", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	hit, err = c.Get(ctx, "test:keep", &got)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := cache.NewRedisCache(ctx, cache.Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
