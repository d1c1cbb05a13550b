package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RegistryMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "georeg_mutations_total",
		Help: "Registry write operations by op and result (ok/rejected)",
	}, []string{"op", "result"})
	OrderCacheRebuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "georeg_order_cache_rebuilds_total",
		Help: "Number of full re-sorts of an order cache",
	}, []string{"order"})
	NearestScannedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "georeg_nearest_scanned_total",
		Help: "Total candidate places scanned by nearest queries",
	})
	QueryCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "georeg_query_cache_hits_total",
		Help: "Query result cache hits by tier (lru/redis)",
	}, []string{"tier"})
	QueryCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "georeg_query_cache_misses_total",
		Help: "Query result cache misses",
	})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "georeg_requests_total",
		Help: "HTTP API requests by route and status class",
	}, []string{"route", "code"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "georeg_request_duration_ms",
		Help:    "HTTP API request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "georeg_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
	LoaderRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "georeg_loader_records_total",
		Help: "Bulk-loaded records by kind (place/area/link) and result",
	}, []string{"kind", "result"})
)

func init() {
	prometheus.MustRegister(RegistryMutationsTotal)
	prometheus.MustRegister(OrderCacheRebuildsTotal)
	prometheus.MustRegister(NearestScannedTotal)
	prometheus.MustRegister(QueryCacheHitsTotal)
	prometheus.MustRegister(QueryCacheMissesTotal)
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(LoaderRecordsTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
