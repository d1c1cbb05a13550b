package registry

import (
	"geo-registry/internal/logger"
	"geo-registry/internal/metrics"
)

// 文档注释：登记表（实体存储 + 二级索引 + 排序缓存 + 区域层级）
// 背景：所有写操作经由实体存储进入，再扇出到名称/分类索引并使相应排序缓存失效；查询直接读取最合适的结构。
// 约束：非并发安全，多协程访问请使用 Handle；每种写操作只有一个内部扇出例程，保证各结构一致。
type Registry struct {
	places   map[PlaceID]*place
	byName   *multiIndex[string]
	byCat    *multiIndex[Category]
	nameOrd  *orderCache
	coordOrd *orderCache
	areas    map[AreaID]*area
	gen      uint64
}

func New() *Registry {
	return &Registry{
		places:   make(map[PlaceID]*place),
		byName:   newMultiIndex[string](),
		byCat:    newMultiIndex[Category](),
		nameOrd:  newOrderCache("name", lessByName),
		coordOrd: newOrderCache("coord", lessByCoord),
		areas:    make(map[AreaID]*area),
	}
}

// Generation：成功写入次数，供结果缓存作为版本键
func (r *Registry) Generation() uint64 { return r.gen }

// Count：当前地点数量
func (r *Registry) Count() int { return len(r.places) }

// AllPlaces：全部地点标识，顺序不作保证
func (r *Registry) AllPlaces() []PlaceID {
	out := make([]PlaceID, 0, len(r.places))
	for id := range r.places {
		out = append(out, id)
	}
	return out
}

// ClearAll：清空地点、区域与全部派生状态
func (r *Registry) ClearAll() {
	r.places = make(map[PlaceID]*place)
	r.byName.reset()
	r.byCat.reset()
	r.nameOrd.invalidate()
	r.coordOrd.invalidate()
	r.areas = make(map[AreaID]*area)
	r.gen++
	metrics.RegistryMutationsTotal.WithLabelValues("clear_all", "ok").Inc()
	logger.L().Debug("registry_cleared", "generation", r.gen)
}

// AddPlace：新增地点；标识已存在时返回 false 且不做任何修改
func (r *Registry) AddPlace(id PlaceID, name string, cat Category, xy Coord) bool {
	if _, ok := r.places[id]; ok {
		observe("add_place", false)
		logger.L().Debug("place_add_dup", "id", id)
		return false
	}
	r.insertPlace(&place{id: id, name: name, cat: cat, coord: xy})
	observe("add_place", true)
	return true
}

// Place：返回名称与分类；未命中返回 NoName、NoCategory 与 false
func (r *Registry) Place(id PlaceID) (string, Category, bool) {
	p, ok := r.places[id]
	if !ok {
		return NoName, NoCategory, false
	}
	return p.name, p.cat, true
}

// PlaceCoord：返回坐标；未命中返回 NoCoord 与 false
func (r *Registry) PlaceCoord(id PlaceID) (Coord, bool) {
	p, ok := r.places[id]
	if !ok {
		return NoCoord, false
	}
	return p.coord, true
}

// RemovePlace：从存储与两个索引中删除，并使两个排序缓存失效
func (r *Registry) RemovePlace(id PlaceID) bool {
	p, ok := r.places[id]
	if !ok {
		observe("remove_place", false)
		return false
	}
	r.erasePlace(p)
	observe("remove_place", true)
	return true
}

// ChangeName：改名并重建名称索引项；只影响名称序缓存
func (r *Registry) ChangeName(id PlaceID, name string) bool {
	p, ok := r.places[id]
	if !ok {
		observe("change_name", false)
		return false
	}
	r.renamePlace(p, name)
	observe("change_name", true)
	return true
}

// ChangeCoord：移动地点；只影响坐标序缓存
func (r *Registry) ChangeCoord(id PlaceID, xy Coord) bool {
	p, ok := r.places[id]
	if !ok {
		observe("change_coord", false)
		return false
	}
	r.movePlace(p, xy)
	observe("change_coord", true)
	return true
}

// FindByName：同名地点全集（升序标识）；无匹配返回空切片
func (r *Registry) FindByName(name string) []PlaceID { return r.byName.ids(name) }

// FindByCategory：该分类下全部地点（升序标识）
func (r *Registry) FindByCategory(cat Category) []PlaceID { return r.byCat.ids(cat) }

// PlacesByName：按名称排序的全部地点，缓存有效时 O(1) 返回副本
func (r *Registry) PlacesByName() []PlaceID { return r.nameOrd.get(r.places) }

// PlacesByCoord：按 CoordLess 排序的全部地点
func (r *Registry) PlacesByCoord() []PlaceID { return r.coordOrd.get(r.places) }

// ---- 扇出例程：每种写操作唯一入口，一次性更新所有受影响结构 ----

func (r *Registry) insertPlace(p *place) {
	r.places[p.id] = p
	r.byName.add(p.name, p)
	r.byCat.add(p.cat, p)
	r.nameOrd.invalidate()
	r.coordOrd.invalidate()
	r.gen++
}

func (r *Registry) erasePlace(p *place) {
	delete(r.places, p.id)
	r.byName.remove(p.name, p)
	r.byCat.remove(p.cat, p)
	r.nameOrd.invalidate()
	r.coordOrd.invalidate()
	r.gen++
}

func (r *Registry) renamePlace(p *place, name string) {
	r.byName.remove(p.name, p)
	p.name = name
	r.byName.add(p.name, p)
	r.nameOrd.invalidate()
	r.gen++
}

func (r *Registry) movePlace(p *place, xy Coord) {
	p.coord = xy
	r.coordOrd.invalidate()
	r.gen++
}

func observe(op string, ok bool) {
	res := "ok"
	if !ok {
		res = "rejected"
	}
	metrics.RegistryMutationsTotal.WithLabelValues(op, res).Inc()
}
