package config

import "time"

// Config is the root configuration structure for the jamf toolkit.
type Config struct {
	// Server describes the device-management API endpoint.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Baseline contains package baseline enforcement configuration.
	Baseline BaselineConfig `yaml:"baseline"`

	// Audit contains the change history configuration.
	Audit AuditConfig `yaml:"audit"`
}

// ServerConfig contains configuration for the API client.
type ServerConfig struct {
	// URL is the base URL of the server, without the resource prefix
	// (e.g., "https://jss.example.com:8443").
	// Required.
	URL string `yaml:"url"`

	// ResourcePath is the path prefix of the classic API resources.
	// Default: "/JSSResource"
	ResourcePath string `yaml:"resource_path"`

	// Timeout is the per-request timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for transport errors and 5xx responses.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the initial backoff between retries; it doubles per attempt.
	// Default: 500ms
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// Username and Password enable HTTP basic authentication when Username
	// is set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Headers are added to every request.
	Headers map[string]string `yaml:"headers"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "jamf"
	Namespace string `yaml:"namespace"`

	// TextfilePath, when set, receives the collected metrics in Prometheus
	// text format when a command finishes (node_exporter textfile collector).
	TextfilePath string `yaml:"textfile_path"`

	// RequestDurationBuckets are the histogram buckets for API request durations.
	// Default: prometheus.DefBuckets
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are created around API calls.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "jamf"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector address (e.g., "localhost:4317").
	// When empty, spans are sampled and propagated but not exported.
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Sampler selects the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}

// BaselineConfig contains package baseline enforcement configuration.
type BaselineConfig struct {
	// Manifest is the path of the baseline manifest file.
	Manifest string `yaml:"manifest"`

	// Schedule is a standard cron expression for periodic enforcement.
	// Default: "0 * * * *" (hourly)
	Schedule string `yaml:"schedule"`

	// Watch reloads the manifest when the file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval delays reloads after a burst of file events.
	// Default: 250ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// AuditConfig contains configuration for the change history.
type AuditConfig struct {
	// Path is the SQLite database recording package changes. History is
	// disabled when empty.
	Path string `yaml:"path"`

	// Driver selects the SQLite driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Retention is how long records are kept; older records are pruned
	// after each baseline run. Zero keeps records forever.
	Retention time.Duration `yaml:"retention"`
}
