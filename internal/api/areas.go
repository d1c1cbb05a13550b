package api

import (
	"encoding/json"
	"geo-registry/internal/registry"
	"net/http"
	"strconv"
)

func (s *server) addArea(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	cs := make([]registry.Coord, len(req.Coords))
	for i, c := range req.Coords {
		cs[i] = registry.Coord{X: c[0], Y: c[1]}
	}
	if !s.h.AddArea(registry.AreaID(*req.ID), req.Name, cs) {
		writeError(w, http.StatusConflict, "area exists")
		return
	}
	writeJSON(w, http.StatusCreated, idResult{ID: *req.ID})
}

func (s *server) listAreas(w http.ResponseWriter, r *http.Request) {
	var ids []registry.AreaID
	s.h.Do(func(reg *registry.Registry) { ids = reg.AllAreas() })
	writeJSON(w, http.StatusOK, idsResult[registry.AreaID]{IDs: ids})
}

func (s *server) getArea(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var (
		out   areaResult
		found bool
	)
	s.h.Do(func(reg *registry.Registry) {
		aid := registry.AreaID(id)
		name, ok := reg.AreaName(aid)
		if !ok {
			return
		}
		found = true
		cs, _ := reg.AreaCoords(aid)
		kids, _ := reg.Children(aid)
		out = areaResult{ID: id, Name: name, Coords: make([][2]int32, len(cs)), Children: make([]int64, len(kids))}
		for i, c := range cs {
			out.Coords[i] = [2]int32{c.X, c.Y}
		}
		for i, k := range kids {
			out.Children[i] = int64(k)
		}
		if p, _ := reg.Parent(aid); p != registry.NoArea {
			pv := int64(p)
			out.Parent = &pv
		}
	})
	if !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// linkArea：挂接失败（未知标识、已有父区域、成环）统一返回 409
func (s *server) linkArea(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req parentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Parent == nil {
		writeError(w, http.StatusBadRequest, "parent is required")
		return
	}
	if !s.h.LinkSubarea(registry.AreaID(id), registry.AreaID(*req.Parent)) {
		writeError(w, http.StatusConflict, "link rejected")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) ancestors(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	s.cached(w, r, []string{"ancestors", strconv.FormatInt(id, 10)}, func(reg *registry.Registry) (any, bool) {
		ids, ok := reg.AncestorChain(registry.AreaID(id))
		return idsResult[registry.AreaID]{IDs: ids}, ok
	})
}

func (s *server) descendants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	s.cached(w, r, []string{"descendants", strconv.FormatInt(id, 10)}, func(reg *registry.Registry) (any, bool) {
		ids, ok := reg.AllDescendants(registry.AreaID(id))
		return idsResult[registry.AreaID]{IDs: ids}, ok
	})
}

func (s *server) commonArea(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, erra := strconv.ParseInt(q.Get("a"), 10, 64)
	b, errb := strconv.ParseInt(q.Get("b"), 10, 64)
	if erra != nil || errb != nil {
		writeError(w, http.StatusBadRequest, "a and b are required integers")
		return
	}
	s.cached(w, r, []string{"common", strconv.FormatInt(a, 10), strconv.FormatInt(b, 10)}, func(reg *registry.Registry) (any, bool) {
		id, ok := reg.LowestCommonAncestor(registry.AreaID(a), registry.AreaID(b))
		return idResult{ID: int64(id)}, ok
	})
}
