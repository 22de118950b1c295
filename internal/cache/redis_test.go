package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisForTest(t *testing.T) (*redisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedis(Config{RedisAddr: mr.Addr(), Prefix: "authhub:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedis_SetGetTake(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisForTest(t)

	require.NoError(t, c.Set(ctx, "oauth_state:abc", "google", time.Minute))
	assert.True(t, mr.Exists("authhub:oauth_state:abc"), "prefix applied")

	v, err := c.Get(ctx, "oauth_state:abc")
	require.NoError(t, err)
	assert.Equal(t, "google", v)

	v, err = c.Take(ctx, "oauth_state:abc")
	require.NoError(t, err)
	assert.Equal(t, "google", v)

	_, err = c.Take(ctx, "oauth_state:abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisForTest(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "k")
	assert.True(t, IsNotFound(err))

	// ttl 0 usa el default, nunca "sin expiración"
	require.NoError(t, c.Set(ctx, "d", "v", 0))
	assert.Greater(t, mr.TTL("authhub:d"), time.Duration(0))
}

func TestRedis_StatsAndPing(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisForTest(t)

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "redis", st.Driver)
	assert.EqualValues(t, 1, st.Keys)
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis(Config{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestInfoField(t *testing.T) {
	info := "# Memory\r\nused_memory:1024\r\nused_memory_human:1.00K\r\n"
	assert.Equal(t, "1.00K", infoField(info, "used_memory_human"))
	assert.Equal(t, "1024", infoField(info, "used_memory"))
	assert.Equal(t, "", infoField(info, "missing"))
}
