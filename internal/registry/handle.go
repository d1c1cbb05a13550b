package registry

import "sync"

// 文档注释：串行化访问句柄
// 背景：登记表的一次写入需要同时更新存储、索引与缓存状态，读取排序时也会重建缓存；因此所有调用（包括读）统一经过一把互斥锁。
// 约束：不做细粒度加锁；需要多步原子操作时使用 Do。
type Handle struct {
	mu  sync.Mutex
	reg *Registry
}

func NewHandle(r *Registry) *Handle {
	if r == nil {
		r = New()
	}
	return &Handle{reg: r}
}

// Do：持锁执行 fn，fn 内可连续调用 Registry 的任意方法
func (h *Handle) Do(fn func(r *Registry)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.reg)
}

func (h *Handle) AddPlace(id PlaceID, name string, cat Category, xy Coord) (ok bool) {
	h.Do(func(r *Registry) { ok = r.AddPlace(id, name, cat, xy) })
	return
}

func (h *Handle) RemovePlace(id PlaceID) (ok bool) {
	h.Do(func(r *Registry) { ok = r.RemovePlace(id) })
	return
}

func (h *Handle) ChangeName(id PlaceID, name string) (ok bool) {
	h.Do(func(r *Registry) { ok = r.ChangeName(id, name) })
	return
}

func (h *Handle) ChangeCoord(id PlaceID, xy Coord) (ok bool) {
	h.Do(func(r *Registry) { ok = r.ChangeCoord(id, xy) })
	return
}

func (h *Handle) AddArea(id AreaID, name string, coords []Coord) (ok bool) {
	h.Do(func(r *Registry) { ok = r.AddArea(id, name, coords) })
	return
}

func (h *Handle) LinkSubarea(child, parent AreaID) (ok bool) {
	h.Do(func(r *Registry) { ok = r.LinkSubarea(child, parent) })
	return
}

func (h *Handle) ClearAll() { h.Do(func(r *Registry) { r.ClearAll() }) }

func (h *Handle) Generation() (g uint64) {
	h.Do(func(r *Registry) { g = r.Generation() })
	return
}
