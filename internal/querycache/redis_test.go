package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rc.Close() })
	return mr, rc
}

func TestSetWritesRedisWithTTL(t *testing.T) {
	mr, rc := setupRedis(t)
	c := New(rc, 8, 90*time.Second)
	key := c.Key(3, "nearest", "1", "2")
	c.Set(context.Background(), key, []byte(`[1,2]`))

	v, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, v)
	assert.Equal(t, 90*time.Second, mr.TTL(key))
}

func TestGetFillsLRUOnRedisHit(t *testing.T) {
	mr, rc := setupRedis(t)
	ctx := context.Background()
	writer := New(rc, 8, time.Minute)
	key := writer.Key(1, "by_name")
	writer.Set(ctx, key, []byte("abc"))

	// 新实例本地层为空，只能从 Redis 命中
	c := New(rc, 8, time.Minute)
	require.Equal(t, 0, c.lru.Len())
	v, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), v)
	assert.Equal(t, 1, c.lru.Len())

	// 回填后不再依赖 Redis
	mr.Del(key)
	v, ok = c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, []byte("abc"), v)
}

func TestGetRedisMiss(t *testing.T) {
	_, rc := setupRedis(t)
	c := New(rc, 8, time.Minute)
	_, ok := c.Get(context.Background(), c.Key(1, "missing"))
	assert.False(t, ok)
	assert.Equal(t, 0, c.lru.Len())
}

func TestRedisDownFallsBackToLRU(t *testing.T) {
	mr, rc := setupRedis(t)
	ctx := context.Background()
	c := New(rc, 8, time.Minute)
	local := c.Key(1, "local")
	c.Set(ctx, local, []byte("x"))
	mr.Close()

	_, ok := c.Get(ctx, c.Key(1, "remote"))
	assert.False(t, ok)
	// Redis 写入失败不影响本地层
	c.Set(ctx, c.Key(1, "later"), []byte("y"))
	v, ok := c.Get(ctx, c.Key(1, "later"))
	assert.True(t, ok)
	assert.Equal(t, []byte("y"), v)
	_, ok = c.Get(ctx, local)
	assert.True(t, ok)
}
