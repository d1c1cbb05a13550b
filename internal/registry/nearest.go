package registry

import "geo-registry/internal/metrics"

// NearestK：最近邻查询返回的最大数量
const NearestK = 3

// 文档注释：最近邻选择（有界 Top-K）
// 背景：扫描分类桶（通配时扫描全部地点），维护当前最近的 K 个候选，按插入排序保持有序；K 很小，线性插入优于堆。
// 约束：距离相同时 y 小者更优（与 CoordLess 共用 closer）；仍相同按标识升序；候选不足 K 个时返回实际数量。
func (r *Registry) Nearest(xy Coord, cat Category) []PlaceID {
	var src map[PlaceID]*place
	if cat == NoCategory {
		src = r.places
	} else {
		src = r.byCat.bucket(cat)
	}
	best := make([]*place, 0, NearestK)
	for _, p := range src {
		best = offer(best, xy, p)
	}
	metrics.NearestScannedTotal.Add(float64(len(src)))
	out := make([]PlaceID, len(best))
	for i, p := range best {
		out[i] = p.id
	}
	return out
}

// offer：将 p 插入有序候选集，超过 K 个时淘汰最差者
func offer(best []*place, q Coord, p *place) []*place {
	i := len(best)
	for i > 0 && better(q, p, best[i-1]) {
		i--
	}
	if i >= NearestK {
		return best
	}
	if len(best) < NearestK {
		best = append(best, nil)
	}
	copy(best[i+1:], best[i:len(best)-1])
	best[i] = p
	return best
}

func better(q Coord, a, b *place) bool {
	if c := closer(q, a.coord, b.coord); c != 0 {
		return c < 0
	}
	return a.id < b.id
}
