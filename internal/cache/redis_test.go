package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/retail-insights/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client, time.Minute)
}

func TestRedisRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	key := "analysis:abc:default"
	require.NoError(t, c.Set(ctx, key, payload{Name: "abc", Value: 80}))
	assert.Equal(t, time.Minute, mr.TTL(key))

	var got payload
	ok, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", got.Name)

	mr.FastForward(time.Minute)
	ok, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisInvalidateAllOnlyTouchesAnalysisKeys(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "analysis:rfm:1", 1))
	require.NoError(t, c.Set(ctx, "analysis:abc:2", 2))
	require.NoError(t, mr.Set("session:42", "keep"))

	require.NoError(t, c.InvalidateAll(ctx))
	assert.False(t, mr.Exists("analysis:rfm:1"))
	assert.False(t, mr.Exists("analysis:abc:2"))
	assert.True(t, mr.Exists("session:42"))
}

func TestRedisInvalidateSingleKey(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "analysis:rfm:1", 1))
	require.NoError(t, c.Invalidate(ctx, "analysis:rfm:1"))
	assert.False(t, mr.Exists("analysis:rfm:1"))
}

func TestNewSelectsBackend(t *testing.T) {
	disabled, err := New(config.CacheConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Noop{}, disabled)

	mem, err := New(config.CacheConfig{Enabled: true, Backend: "memory", TTLSeconds: 5}, SystemClock)
	require.NoError(t, err)
	require.IsType(t, &Memory{}, mem)
	assert.Equal(t, 5*time.Second, mem.(*Memory).ttl)

	mr := miniredis.RunT(t)
	rc, err := New(config.CacheConfig{Enabled: true, Backend: "redis", RedisURL: "redis://" + mr.Addr()}, nil)
	require.NoError(t, err)
	require.IsType(t, &Redis{}, rc)
	assert.Equal(t, DefaultTTL, rc.(*Redis).ttl)

	_, err = New(config.CacheConfig{Enabled: true, Backend: "memcached"}, nil)
	assert.Error(t, err)
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.CacheConfig{RedisPassword: "s3cret", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = redisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}
