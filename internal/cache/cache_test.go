package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "forever", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "short", []byte("b"), time.Minute))

	now = now.Add(2 * time.Minute)

	v, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), v)

	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	v[0] = 'z'
	v, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), v)

	require.NoError(t, c.Delete(ctx, "forever"))
	_, err = c.Get(ctx, "forever")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)

	c, err := NewRedisCache(RedisConfig{Addr: srv.Addr(), KeyPrefix: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	_, err = c.Get(ctx, "quota")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "quota", []byte(`{"calls":1}`), 0))
	assert.True(t, srv.Exists("test:quota"))

	v, err := c.Get(ctx, "quota")
	require.NoError(t, err)
	assert.JSONEq(t, `{"calls":1}`, string(v))

	require.NoError(t, c.Set(ctx, "temp", []byte("x"), time.Second))
	srv.FastForward(2 * time.Second)
	_, err = c.Get(ctx, "temp")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Delete(ctx, "quota"))
	assert.False(t, srv.Exists("test:quota"))
	assert.NoError(t, c.Ping(ctx))
}
