package metrics

import (
	"time"

	"mercator-hq/jamf/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BaselineMetrics tracks package baseline enforcement.
//
// Metrics:
//   - <ns>_baseline_runs_total: enforcement runs by result ("ok", "partial", "error")
//   - <ns>_baseline_packages_added_total: packages added to policies
//   - <ns>_baseline_policy_failures_total: policies that could not be enforced
//   - <ns>_baseline_last_run_timestamp_seconds: completion time of the last run
type BaselineMetrics struct {
	runsTotal      *prometheus.CounterVec
	packagesAdded  prometheus.Counter
	policyFailures prometheus.Counter
	lastRunSeconds prometheus.Gauge
}

// NewBaselineMetrics creates and registers baseline metrics with the provided registry.
func NewBaselineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BaselineMetrics {
	bm := &BaselineMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "baseline",
				Name:      "runs_total",
				Help:      "Total number of baseline enforcement runs by result",
			},
			[]string{"result"},
		),
		packagesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "baseline",
			Name:      "packages_added_total",
			Help:      "Total number of packages added to policies",
		}),
		policyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "baseline",
			Name:      "policy_failures_total",
			Help:      "Total number of policies that failed enforcement",
		}),
		lastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "baseline",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last enforcement run completed",
		}),
	}

	registry.MustRegister(bm.runsTotal, bm.packagesAdded, bm.policyFailures, bm.lastRunSeconds)
	return bm
}

// RecordRun records a completed enforcement run.
func (bm *BaselineMetrics) RecordRun(result string, added, failed int, finished time.Time) {
	if bm == nil {
		return
	}
	bm.runsTotal.WithLabelValues(result).Inc()
	bm.packagesAdded.Add(float64(added))
	bm.policyFailures.Add(float64(failed))
	bm.lastRunSeconds.Set(float64(finished.Unix()))
}
