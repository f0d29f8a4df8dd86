package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"citegraph/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopPapersKey(t *testing.T) {
	assert.Equal(t, "top_papers:AI:50", TopPapersKey("AI", 50))
	assert.Equal(t, "top_papers:Machine Learning:1", TopPapersKey("Machine Learning", 1))
	assert.Equal(t, "top_papers::10", TopPapersKey("", 10))
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemoryCacheTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	clock.Advance(59 * time.Second)
	_, err = c.Get(ctx, "k")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Zero(t, c.Len())
}

func TestMemoryCacheDelPrefix(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	for _, key := range []string{TopPapersKey("AI", 1), TopPapersKey("AI", 2), TopPapersKey("NLP", 5), "other:key"} {
		require.NoError(t, c.Set(ctx, key, []byte("x"), time.Minute))
	}

	n, err := c.DelPrefix(ctx, TopPapersPrefix)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = c.Get(ctx, "other:key")
	assert.NoError(t, err)
	_, err = c.Get(ctx, TopPapersKey("AI", 1))
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheDel(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))

	n, err := c.Del(ctx, "a", "missing")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	val := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", val, time.Minute))
	val[0] = 'X'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestRedisCacheUnreachableFailsFast(t *testing.T) {
	c := NewRedisCache(RedisOptions{Addr: "127.0.0.1:1", OpTimeout: 100 * time.Millisecond})
	defer c.Close()
	ctx := context.Background()

	start := time.Now()
	_, err := c.Get(ctx, TopPapersKey("AI", 10))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.Error(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err = c.DelPrefix(ctx, TopPapersPrefix)
	assert.Error(t, err)
	assert.Error(t, c.Ping(ctx))
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := &config.Config{CacheBackend: "MEMORY"}
	assert.IsType(t, &MemoryCache{}, New(cfg))

	cfg = &config.Config{CacheBackend: config.CacheBackendRedis, RedisHost: "127.0.0.1", RedisPort: 1, CacheTimeout: 50 * time.Millisecond}
	c := New(cfg)
	defer c.Close()
	assert.IsType(t, &RedisCache{}, c)
}

func TestMemoryCacheCleanupRemovesExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, c.Set(ctx, TopPapersKey(fmt.Sprintf("topic-%d", i), 10), []byte("[]"), time.Minute))
	}
	require.NoError(t, c.Set(ctx, "long", []byte("v"), time.Hour))
	assert.Equal(t, 101, c.Len())

	clock.Advance(time.Minute)
	assert.Equal(t, 100, c.Cleanup())
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCacheSetSweepsExpiredKeys(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	for i := 0; i < 5000; i++ {
		require.NoError(t, c.Set(ctx, TopPapersKey(fmt.Sprintf("topic-%d", i), 10), []byte("[]"), time.Minute))
	}
	assert.Equal(t, 5000, c.Len())

	clock.Advance(24 * time.Hour)
	require.NoError(t, c.Set(ctx, TopPapersKey("fresh", 10), []byte("[]"), time.Minute))
	assert.Equal(t, 1, c.Len())
}
