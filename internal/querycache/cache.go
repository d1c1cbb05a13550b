// 包 querycache：查询结果两级缓存（进程内 LRU → Redis），键携带登记表版本号
package querycache

import (
	"context"
	"errors"
	"geo-registry/internal/logger"
	"geo-registry/internal/metrics"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "georeg:"

// Cache：Redis 可为空，此时仅使用进程内 LRU
// 约束：版本号随进程重启归零，键中另带实例纪元，避免新进程命中旧进程写入 Redis 的结果
type Cache struct {
	lru   *LRU
	rc    *redis.Client
	ttl   time.Duration
	epoch string
}

func New(rc *redis.Client, size int, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	epoch := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return &Cache{lru: NewLRU(size, ttl), rc: rc, ttl: ttl, epoch: epoch}
}

// 文档注释：按环境变量构造缓存
// 约束：QUERY_CACHE_SIZE 默认 4096，QUERY_CACHE_TTL_S 默认 3600；非法值回退默认
func NewFromEnv(rc *redis.Client) *Cache {
	size := 4096
	if s := os.Getenv("QUERY_CACHE_SIZE"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			size = n
		}
	}
	ttlSec := 3600
	if s := os.Getenv("QUERY_CACHE_TTL_S"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			ttlSec = n
		}
	}
	return New(rc, size, time.Duration(ttlSec)*time.Second)
}

// Key：以实例纪元与版本号开头的缓存键，登记表任一写入都会使旧键不再被命中
func (c *Cache) Key(gen uint64, parts ...string) string {
	return keyPrefix + c.epoch + ":g" + strconv.FormatUint(gen, 10) + ":" + strings.Join(parts, ":")
}

// Get：先查本地 LRU，再查 Redis；Redis 命中时回填本地
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := c.lru.Get(key); ok {
		metrics.QueryCacheHitsTotal.WithLabelValues("lru").Inc()
		return v, true
	}
	if c.rc != nil {
		b, err := c.rc.Get(ctx, key).Bytes()
		if err == nil && len(b) > 0 {
			c.lru.Set(key, b)
			metrics.QueryCacheHitsTotal.WithLabelValues("redis").Inc()
			return b, true
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.L().Debug("query_cache_redis_get_error", "key", key, "err", err)
		}
	}
	metrics.QueryCacheMissesTotal.Inc()
	return nil, false
}

// Set：写入两级缓存；Redis 失败只记录日志
func (c *Cache) Set(ctx context.Context, key string, v []byte) {
	c.lru.Set(key, v)
	if c.rc == nil {
		return
	}
	if err := c.rc.Set(ctx, key, v, c.ttl).Err(); err != nil {
		logger.L().Debug("query_cache_redis_set_error", "key", key, "err", err)
	}
}

// Purge：清空本地层；Redis 层依靠版本号与 TTL 自然过期
func (c *Cache) Purge() { c.lru.Purge() }
