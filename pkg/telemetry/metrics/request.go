package metrics

import (
	"strconv"
	"strings"
	"time"

	"mercator-hq/jamf/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks API requests.
//
// Metrics:
//   - <ns>_api_requests_total: requests by method, resource and status code
//   - <ns>_api_request_duration_seconds: request duration histogram
//   - <ns>_api_retries_total: retried attempts by resource
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests by outcome",
			},
			[]string{"method", "resource", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests in seconds, including retries",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"method", "resource"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "api",
				Name:      "retries_total",
				Help:      "Total number of retried API request attempts",
			},
			[]string{"resource"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration, rm.retriesTotal)
	return rm
}

// RecordRequest records a finished request. A zero code means the request
// never produced an HTTP response.
func (rm *RequestMetrics) RecordRequest(method, path string, code int, duration time.Duration) {
	if rm == nil {
		return
	}
	resource := Resource(path)
	label := "none"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	rm.requestsTotal.WithLabelValues(method, resource, label).Inc()
	rm.requestDuration.WithLabelValues(method, resource).Observe(duration.Seconds())
}

// RecordRetry records one retried attempt.
func (rm *RequestMetrics) RecordRetry(path string) {
	if rm == nil {
		return
	}
	rm.retriesTotal.WithLabelValues(Resource(path)).Inc()
}

// Resource reduces a request path to its first segment so label cardinality
// stays bounded ("policies/id/12" -> "policies").
func Resource(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "unknown"
	}
	return path
}
