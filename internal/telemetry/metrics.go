package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests by method, route and status"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	StatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "moderation_status_changes_total", Help: "Applied status changes by kind and target status"},
		[]string{"kind", "status"},
	)
	BulkItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "moderation_bulk_items_total", Help: "Bulk action items by outcome"},
		[]string{"outcome"},
	)
	RateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{Name: "rate_limit_rejects_total", Help: "Requests rejected by rate limiter"})
	JobsExpired      = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobs_expired_total", Help: "Jobs moved to expired by the worker"})
	StatsCacheHits   = prometheus.NewCounter(prometheus.CounterOpts{Name: "stats_cache_hits_total", Help: "Dashboard stats served from cache"})
)

// Register регистрирует метрики в default registry один раз
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			HTTPDuration,
			StatusChanges,
			BulkItems,
			RateLimitRejects,
			JobsExpired,
			StatsCacheHits,
		)
	})
}

// Handler exposes /metrics with a singleton registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
