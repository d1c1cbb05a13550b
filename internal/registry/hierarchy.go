package registry

import (
	"geo-registry/internal/logger"
	"sort"
)

// AddArea：新增区域；标识重复返回 false。新区域没有父区域，直到显式 LinkSubarea
func (r *Registry) AddArea(id AreaID, name string, coords []Coord) bool {
	if _, ok := r.areas[id]; ok {
		observe("add_area", false)
		return false
	}
	cs := make([]Coord, len(coords))
	copy(cs, coords)
	r.areas[id] = &area{id: id, name: name, coords: cs, parent: NoArea}
	r.gen++
	observe("add_area", true)
	return true
}

// AreaName：未命中返回 NoName 与 false
func (r *Registry) AreaName(id AreaID) (string, bool) {
	a, ok := r.areas[id]
	if !ok {
		return NoName, false
	}
	return a.name, true
}

// AreaCoords：返回边界坐标副本；未命中返回 nil 与 false
func (r *Registry) AreaCoords(id AreaID) ([]Coord, bool) {
	a, ok := r.areas[id]
	if !ok {
		return nil, false
	}
	out := make([]Coord, len(a.coords))
	copy(out, a.coords)
	return out, true
}

// AreaCount：区域数量
func (r *Registry) AreaCount() int { return len(r.areas) }

// AllAreas：全部区域标识（升序）
func (r *Registry) AllAreas() []AreaID {
	out := make([]AreaID, 0, len(r.areas))
	for id := range r.areas {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Parent：直接父区域；无父区域时返回 NoArea 与 true
func (r *Registry) Parent(id AreaID) (AreaID, bool) {
	a, ok := r.areas[id]
	if !ok {
		return NoArea, false
	}
	return a.parent, true
}

// Children：直接子区域，按挂接顺序
func (r *Registry) Children(id AreaID) ([]AreaID, bool) {
	a, ok := r.areas[id]
	if !ok {
		return nil, false
	}
	out := make([]AreaID, len(a.children))
	copy(out, a.children)
	return out, true
}

// 文档注释：挂接子区域
// 背景：父子边以标识双向记录（子记父、父记子），两侧同时写入以保持一致。
// 约束：任一标识未知、子区域已有父区域、或挂接会形成环（含自挂接）时返回 false 且不做修改；区域一生只能被挂接一次。
func (r *Registry) LinkSubarea(child, parent AreaID) bool {
	c, ok := r.areas[child]
	if !ok {
		observe("link_subarea", false)
		return false
	}
	p, ok := r.areas[parent]
	if !ok || c.parent != NoArea || r.reaches(parent, child) {
		observe("link_subarea", false)
		logger.L().Debug("area_link_rejected", "child", child, "parent", parent)
		return false
	}
	c.parent = parent
	p.children = append(p.children, child)
	r.gen++
	observe("link_subarea", true)
	return true
}

// reaches：from 自身或其祖先链中是否包含 target
func (r *Registry) reaches(from, target AreaID) bool {
	for cur := from; cur != NoArea; cur = r.areas[cur].parent {
		if cur == target {
			return true
		}
	}
	return false
}

// AncestorChain：从直接父区域到根的祖先链；无父区域返回空切片；未知标识返回 nil 与 false
func (r *Registry) AncestorChain(id AreaID) ([]AreaID, bool) {
	a, ok := r.areas[id]
	if !ok {
		return nil, false
	}
	out := []AreaID{}
	for cur := a.parent; cur != NoArea; cur = r.areas[cur].parent {
		out = append(out, cur)
	}
	return out, true
}

// 文档注释：子树枚举（后序，不含自身）
// 背景：对每个子区域先输出其全部后代，再输出该子区域本身，子区域按挂接顺序遍历。
func (r *Registry) AllDescendants(id AreaID) ([]AreaID, bool) {
	a, ok := r.areas[id]
	if !ok {
		return nil, false
	}
	out := []AreaID{}
	var walk func(a *area)
	walk = func(a *area) {
		for _, cid := range a.children {
			walk(r.areas[cid])
			out = append(out, cid)
		}
	}
	walk(a)
	return out, true
}

// 文档注释：最近公共祖先
// 背景：分别构建两区域自根向下的祖先链（根在前，不含自身），取两链仍一致的最后位置。
// 约束：任一标识未知或两链没有公共前缀（包括任一方为根）时返回 NoArea 与 false。
func (r *Registry) LowestCommonAncestor(a, b AreaID) (AreaID, bool) {
	ca, ok := r.AncestorChain(a)
	if !ok {
		return NoArea, false
	}
	cb, ok := r.AncestorChain(b)
	if !ok {
		return NoArea, false
	}
	reverse(ca)
	reverse(cb)
	lca := NoArea
	for i := 0; i < len(ca) && i < len(cb) && ca[i] == cb[i]; i++ {
		lca = ca[i]
	}
	return lca, lca != NoArea
}

func reverse(s []AreaID) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
