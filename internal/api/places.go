package api

import (
	"encoding/json"
	"geo-registry/internal/registry"
	"net/http"
	"strconv"
)

func (s *server) addPlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == nil || req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, "id, x and y are required")
		return
	}
	cat, ok := registry.ParsePlaceCategory(req.Category)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if !s.h.AddPlace(registry.PlaceID(*req.ID), req.Name, cat, registry.Coord{X: *req.X, Y: *req.Y}) {
		writeError(w, http.StatusConflict, "place exists")
		return
	}
	writeJSON(w, http.StatusCreated, idResult{ID: *req.ID})
}

// listPlaces：?order=name|coord 返回排序结果（经缓存），缺省返回无序全集
func (s *server) listPlaces(w http.ResponseWriter, r *http.Request) {
	switch order := r.URL.Query().Get("order"); order {
	case "":
		var ids []registry.PlaceID
		s.h.Do(func(reg *registry.Registry) { ids = reg.AllPlaces() })
		writeJSON(w, http.StatusOK, idsResult[registry.PlaceID]{IDs: ids})
	case "name":
		s.cached(w, r, []string{"order", order}, func(reg *registry.Registry) (any, bool) {
			return idsResult[registry.PlaceID]{IDs: reg.PlacesByName()}, true
		})
	case "coord":
		s.cached(w, r, []string{"order", order}, func(reg *registry.Registry) (any, bool) {
			return idsResult[registry.PlaceID]{IDs: reg.PlacesByCoord()}, true
		})
	default:
		writeError(w, http.StatusBadRequest, "order must be name or coord")
	}
}

func (s *server) getPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var (
		out   placeResult
		found bool
	)
	s.h.Do(func(reg *registry.Registry) {
		name, cat, ok := reg.Place(registry.PlaceID(id))
		if !ok {
			return
		}
		xy, _ := reg.PlaceCoord(registry.PlaceID(id))
		out = placeResult{ID: id, Name: name, Category: cat.String(), X: xy.X, Y: xy.Y}
		found = true
	})
	if !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// patchPlace：改名与移动可同时提交，在同一次持锁内完成
func (s *server) patchPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req placePatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	move := req.X != nil || req.Y != nil
	if move && (req.X == nil || req.Y == nil) {
		writeError(w, http.StatusBadRequest, "x and y must be given together")
		return
	}
	if req.Name == nil && !move {
		writeError(w, http.StatusBadRequest, "nothing to change")
		return
	}
	found := false
	s.h.Do(func(reg *registry.Registry) {
		pid := registry.PlaceID(id)
		if _, _, ok := reg.Place(pid); !ok {
			return
		}
		found = true
		if req.Name != nil {
			reg.ChangeName(pid, *req.Name)
		}
		if move {
			reg.ChangeCoord(pid, registry.Coord{X: *req.X, Y: *req.Y})
		}
	})
	if !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) removePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !s.h.RemovePlace(registry.PlaceID(id)) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// searchPlaces：?name= 优先，其次 ?category=
func (s *server) searchPlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var ids []registry.PlaceID
	switch {
	case q.Has("name"):
		s.h.Do(func(reg *registry.Registry) { ids = reg.FindByName(q.Get("name")) })
	case q.Has("category"):
		cat, ok := registry.ParseCategory(q.Get("category"))
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		s.h.Do(func(reg *registry.Registry) { ids = reg.FindByCategory(cat) })
	default:
		writeError(w, http.StatusBadRequest, "name or category is required")
		return
	}
	writeJSON(w, http.StatusOK, idsResult[registry.PlaceID]{IDs: ids})
}

func (s *server) nearest(w http.ResponseWriter, r *http.Request) {
	x, okx := queryCoord(r, "x")
	y, oky := queryCoord(r, "y")
	if !okx || !oky {
		writeError(w, http.StatusBadRequest, "x and y are required integers")
		return
	}
	cat, ok := registry.ParseCategory(r.URL.Query().Get("category"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	key := []string{"nearest", strconv.FormatInt(int64(x), 10), strconv.FormatInt(int64(y), 10), cat.String()}
	s.cached(w, r, key, func(reg *registry.Registry) (any, bool) {
		return idsResult[registry.PlaceID]{IDs: reg.Nearest(registry.Coord{X: x, Y: y}, cat)}, true
	})
}
