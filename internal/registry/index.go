package registry

import "sort"

// 文档注释：多值二级索引（键 → 地点集合）
// 背景：名称与分类都可能被多个地点共享，桶内以地点标识精确定位记录，删除时不会误删同键的其它地点。
// 约束：只持有登记表中记录的引用；桶清空后立即删除键，避免遗留空桶。
type multiIndex[K comparable] struct {
	buckets map[K]map[PlaceID]*place
}

func newMultiIndex[K comparable]() *multiIndex[K] {
	return &multiIndex[K]{buckets: make(map[K]map[PlaceID]*place)}
}

func (ix *multiIndex[K]) add(k K, p *place) {
	b, ok := ix.buckets[k]
	if !ok {
		b = make(map[PlaceID]*place)
		ix.buckets[k] = b
	}
	b[p.id] = p
}

func (ix *multiIndex[K]) remove(k K, p *place) {
	b, ok := ix.buckets[k]
	if !ok {
		return
	}
	if cur, ok := b[p.id]; ok && cur == p {
		delete(b, p.id)
	}
	if len(b) == 0 {
		delete(ix.buckets, k)
	}
}

func (ix *multiIndex[K]) bucket(k K) map[PlaceID]*place { return ix.buckets[k] }

// ids：返回桶内全部标识（升序，便于调用方得到稳定结果）
func (ix *multiIndex[K]) ids(k K) []PlaceID {
	b := ix.buckets[k]
	out := make([]PlaceID, 0, len(b))
	for id := range b {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (ix *multiIndex[K]) size() int {
	n := 0
	for _, b := range ix.buckets {
		n += len(b)
	}
	return n
}

func (ix *multiIndex[K]) reset() { ix.buckets = make(map[K]map[PlaceID]*place) }
