package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifelog",
		Name:      "http_requests_total",
		Help:      "Handled HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes request latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lifelog",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// StorageOps counts object store operations by op and outcome.
	StorageOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifelog",
		Name:      "storage_operations_total",
		Help:      "Object store operations",
	}, []string{"op", "outcome"})
)

// Handler exposes the default registry (mounted at /metrics).
func Handler() http.Handler {
	return promhttp.Handler()
}
