package middleware

import (
	"net/http"
	"os"
	"strconv"

	"geo-registry/internal/logger"
	"geo-registry/internal/metrics"

	"golang.org/x/time/rate"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：登记表所有调用经同一把锁串行执行，突发流量会在锁上排队；入口限速后直接丢弃并返回 429。
// 约束：RATE_LIMIT_ENABLED=true 时启用；RATE_LIMIT_QPS 默认 200，突发容量等于 QPS；不做排队。
func Wrap(next http.Handler) http.Handler {
	if os.Getenv("RATE_LIMIT_ENABLED") != "true" {
		return next
	}
	qps := 200
	if s := os.Getenv("RATE_LIMIT_QPS"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			qps = n
		}
	}
	logger.L().Info("rate_limit_enabled", "qps", qps)
	return Limit(rate.NewLimiter(rate.Limit(qps), qps), next)
}

// Limit：使用给定限速器包装处理器
func Limit(lim *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			metrics.RateLimitedTotal.Inc()
			w.Header().Set("retry-after", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
