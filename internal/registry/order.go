package registry

import (
	"geo-registry/internal/logger"
	"geo-registry/internal/metrics"
	"sort"
	"time"
)

// cacheState：排序缓存状态，显式枚举使每个失效点可审计
type cacheState int

const (
	cacheStale cacheState = iota
	cacheFresh
)

func (s cacheState) String() string {
	if s == cacheFresh {
		return "fresh"
	}
	return "stale"
}

// 文档注释：惰性排序缓存
// 背景：全量排序代价为 O(n log n)，查询频率远高于写入；仅在状态为 stale 时重算，其后读取直接返回缓存。
// 约束：任何可能改变排序键的写操作必须调用 invalidate；返回值为副本，调用方修改不影响缓存。
type orderCache struct {
	name  string
	state cacheState
	ids   []PlaceID
	less  func(a, b *place) bool
}

func newOrderCache(name string, less func(a, b *place) bool) *orderCache {
	return &orderCache{name: name, state: cacheStale, less: less}
}

func (c *orderCache) invalidate() { c.state = cacheStale }

func (c *orderCache) get(places map[PlaceID]*place) []PlaceID {
	if c.state == cacheStale {
		t0 := time.Now()
		ps := make([]*place, 0, len(places))
		for _, p := range places {
			ps = append(ps, p)
		}
		sort.SliceStable(ps, func(i, j int) bool { return c.less(ps[i], ps[j]) })
		ids := make([]PlaceID, len(ps))
		for i, p := range ps {
			ids[i] = p.id
		}
		c.ids = ids
		c.state = cacheFresh
		metrics.OrderCacheRebuildsTotal.WithLabelValues(c.name).Inc()
		logger.L().Debug("registry_order_rebuild", "order", c.name, "places", len(ids), "us", time.Since(t0).Microseconds())
	}
	out := make([]PlaceID, len(c.ids))
	copy(out, c.ids)
	return out
}

// 名称序：名称字典序，同名按标识升序（固定的决胜顺序）
func lessByName(a, b *place) bool {
	if a.name != b.name {
		return a.name < b.name
	}
	return a.id < b.id
}

// 坐标序：CoordLess，完全相同的坐标按标识升序
func lessByCoord(a, b *place) bool {
	if c := closer(Coord{}, a.coord, b.coord); c != 0 {
		return c < 0
	}
	return a.id < b.id
}
