package metrics

import (
	"fmt"

	"mercator-hq/jamf/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry and every metric recorded by the
// toolkit. A nil *Collector is valid and records nothing, so callers never
// need to check whether metrics are enabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	baselineMetrics *BaselineMetrics
}

// NewCollector creates a collector registering its metrics with registry.
// If registry is nil a fresh one is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = prometheus.DefBuckets
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		requestMetrics:  NewRequestMetrics(cfg, registry),
		baselineMetrics: NewBaselineMetrics(cfg, registry),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Requests returns the API request metrics, nil for a nil collector.
func (c *Collector) Requests() *RequestMetrics {
	if c == nil {
		return nil
	}
	return c.requestMetrics
}

// Baseline returns the baseline enforcement metrics, nil for a nil collector.
func (c *Collector) Baseline() *BaselineMetrics {
	if c == nil {
		return nil
	}
	return c.baselineMetrics
}

// WriteTextfile writes every collected metric to path in the Prometheus text
// exposition format, replacing the file atomically.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %q: %w", path, err)
	}
	return nil
}
