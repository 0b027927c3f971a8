package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks inbound HTTP requests by route, method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helloworld_http_requests_total",
			Help: "Total number of HTTP requests handled (by route, method and status).",
		},
		[]string{"route", "method", "status"},
	)

	// Measures duration of inbound HTTP requests.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helloworld_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"route", "method"},
	)

	// Outcome of database health probes from GET /.
	DBHealthChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helloworld_db_health_checks_total",
			Help: "Total number of database health checks (by result).",
		},
		[]string{"result"},
	)

	// Number of on-demand schema bootstrap attempts.
	SchemaBootstrapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helloworld_schema_bootstraps_total",
			Help: "Total number of schema bootstrap attempts (by result).",
		},
		[]string{"result"},
	)
)

// ObserveRequest records one handled HTTP request.
func ObserveRequest(route, method, status string, start time.Time) {
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

func IncDBHealthCheck(result string) {
	DBHealthChecksTotal.WithLabelValues(result).Inc()
}

func IncSchemaBootstrap(result string) {
	SchemaBootstrapsTotal.WithLabelValues(result).Inc()
}
