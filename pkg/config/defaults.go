package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultResourcePath = "/JSSResource"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 2
	DefaultRetryBackoff = 500 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsNamespace   = "jamf"
	DefaultTracingServiceName = "jamf"
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0

	// Baseline defaults
	DefaultBaselineSchedule = "0 * * * *"
	DefaultBaselineDebounce = 250 * time.Millisecond

	// Audit defaults
	DefaultAuditDriver = "sqlite"
)

// DefaultRequestDurationBuckets mirrors prometheus.DefBuckets.
var DefaultRequestDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values and is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ResourcePath == "" {
		cfg.Server.ResourcePath = DefaultResourcePath
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = DefaultTimeout
	}
	if cfg.Server.MaxRetries == 0 {
		cfg.Server.MaxRetries = DefaultMaxRetries
	}
	if cfg.Server.RetryBackoff == 0 {
		cfg.Server.RetryBackoff = DefaultRetryBackoff
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}

	if cfg.Baseline.Schedule == "" {
		cfg.Baseline.Schedule = DefaultBaselineSchedule
	}
	if cfg.Baseline.DebounceInterval == 0 {
		cfg.Baseline.DebounceInterval = DefaultBaselineDebounce
	}

	if cfg.Audit.Driver == "" {
		cfg.Audit.Driver = DefaultAuditDriver
	}
}

// Default returns a configuration with every default applied.
// Server.URL is left empty and must be supplied before validation passes.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
