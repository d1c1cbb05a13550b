// 包 api：集中注册 HTTP API 路由，所有登记表调用经由 registry.Handle 串行执行
package api

import (
	"encoding/json"
	"geo-registry/internal/logger"
	"geo-registry/internal/metrics"
	"geo-registry/internal/querycache"
	"geo-registry/internal/registry"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type server struct {
	h          *registry.Handle
	qc         *querycache.Cache
	adminToken string
}

// 文档注释：构建并返回 API 路由
// 背景：独立路由便于在主入口挂载到 API_BASE 前缀；排序、最近邻与层级查询结果经两级缓存。
// 约束：qc 可为空（不缓存）；adminToken 为空时 /reset 一律拒绝。
func BuildRoutes(h *registry.Handle, qc *querycache.Cache, adminToken string) http.Handler {
	s := &server{h: h, qc: qc, adminToken: adminToken}
	r := chi.NewRouter()
	r.Use(observeRoute)

	r.Route("/places", func(r chi.Router) {
		r.Get("/", s.listPlaces)
		r.Post("/", s.addPlace)
		r.Get("/search", s.searchPlaces)
		r.Get("/nearest", s.nearest)
		r.Get("/{id}", s.getPlace)
		r.Patch("/{id}", s.patchPlace)
		r.Delete("/{id}", s.removePlace)
	})
	r.Route("/areas", func(r chi.Router) {
		r.Get("/", s.listAreas)
		r.Post("/", s.addArea)
		r.Get("/common", s.commonArea)
		r.Get("/{id}", s.getArea)
		r.Put("/{id}/parent", s.linkArea)
		r.Get("/{id}/ancestors", s.ancestors)
		r.Get("/{id}/descendants", s.descendants)
	})
	r.Post("/reset", s.reset)
	r.Get("/stats", s.stats)
	return r
}

// observeRoute：按路由模板统计请求数与耗时
func observeRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		sw := &codeWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(sw.code/100)+"xx").Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(t0).Milliseconds()))
	})
}

type codeWriter struct {
	http.ResponseWriter
	code int
}

func (w *codeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.L().Error("api_encode_error", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeRaw(w, code, b)
}

func writeRaw(w http.ResponseWriter, code int, b []byte) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResult{Error: msg})
}

func pathID(r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return n, err == nil
}

func queryCoord(r *http.Request, k string) (int32, bool) {
	n, err := strconv.ParseInt(r.URL.Query().Get(k), 10, 32)
	return int32(n), err == nil
}

// 文档注释：经缓存的只读查询
// 背景：先以当前版本号查缓存；未命中时在同一次持锁内读取版本号并计算，结果写入该版本号对应的键。
// 约束：compute 返回 found=false 时写 404 且不缓存。
func (s *server) cached(w http.ResponseWriter, r *http.Request, key []string, compute func(reg *registry.Registry) (any, bool)) {
	ctx := r.Context()
	if s.qc != nil {
		if b, ok := s.qc.Get(ctx, s.qc.Key(s.h.Generation(), key...)); ok {
			writeRaw(w, http.StatusOK, b)
			return
		}
	}
	var (
		v     any
		found bool
		gen   uint64
	)
	s.h.Do(func(reg *registry.Registry) {
		gen = reg.Generation()
		v, found = compute(reg)
	})
	if !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		logger.L().Error("api_encode_error", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if s.qc != nil {
		s.qc.Set(ctx, s.qc.Key(gen, key...), b)
	}
	writeRaw(w, http.StatusOK, b)
}

func (s *server) reset(w http.ResponseWriter, r *http.Request) {
	t := r.Header.Get("x-admin-token")
	if s.adminToken == "" || t != s.adminToken {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	s.h.ClearAll()
	if s.qc != nil {
		s.qc.Purge()
	}
	logger.L().Info("registry_reset", "ip", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) stats(w http.ResponseWriter, r *http.Request) {
	var out statsResult
	s.h.Do(func(reg *registry.Registry) {
		out = statsResult{Places: reg.Count(), Areas: reg.AreaCount(), Generation: reg.Generation()}
	})
	writeJSON(w, http.StatusOK, out)
}
