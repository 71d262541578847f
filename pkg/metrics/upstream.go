package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records SP-API call volume and latency, labeled by logical
// operation (orders, order_items, catalog, inventory, report) and outcome.
type UpstreamMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewUpstreamMetrics registers the upstream metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "SP-API calls issued, by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of SP-API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(requests, duration)
	return &UpstreamMetrics{requests: requests, duration: duration}
}

// Observe records one upstream call.
func (u *UpstreamMetrics) Observe(operation string, err error, elapsed time.Duration) {
	if u == nil || u.requests == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	u.requests.WithLabelValues(normalizeLabel(operation), outcome).Inc()
	u.duration.WithLabelValues(normalizeLabel(operation)).Observe(elapsed.Seconds())
}
