package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.ResourcePath != DefaultResourcePath {
		t.Errorf("ResourcePath = %q, want %q", cfg.Server.ResourcePath, DefaultResourcePath)
	}
	if cfg.Server.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Server.Timeout, DefaultTimeout)
	}
	if cfg.Server.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.Server.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}
	if cfg.Telemetry.Tracing.Sampler != "always" || cfg.Telemetry.Tracing.SampleRatio != 1.0 {
		t.Errorf("Tracing = %+v", cfg.Telemetry.Tracing)
	}
	if cfg.Baseline.Schedule != DefaultBaselineSchedule {
		t.Errorf("Schedule = %q", cfg.Baseline.Schedule)
	}
	if cfg.Audit.Driver != DefaultAuditDriver || cfg.Audit.Path != "" {
		t.Errorf("Audit = %+v", cfg.Audit)
	}

	// Defaults are idempotent and keep explicit values.
	cfg.Server.Timeout = 5 * time.Second
	ApplyDefaults(cfg)
	if cfg.Server.Timeout != 5*time.Second {
		t.Errorf("ApplyDefaults overwrote Timeout: %v", cfg.Server.Timeout)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  url: https://jss.example.com:8443
  timeout: 10s
  username: api
  password: secret
  headers:
    X-Tenant: acme
telemetry:
  logging:
    level: debug
    format: json
baseline:
  manifest: /etc/jamf/baseline.yaml
  schedule: "@every 15m"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.URL != "https://jss.example.com:8443" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.Server.Timeout)
	}
	if cfg.Server.ResourcePath != DefaultResourcePath {
		t.Errorf("ResourcePath = %q, want default", cfg.Server.ResourcePath)
	}
	if cfg.Server.Headers["X-Tenant"] != "acme" {
		t.Errorf("Headers = %v", cfg.Server.Headers)
	}
	if cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Format = %q", cfg.Telemetry.Logging.Format)
	}
	if cfg.Baseline.Schedule != "@every 15m" {
		t.Errorf("Schedule = %q", cfg.Baseline.Schedule)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "invalid yaml", content: "server: [", want: "failed to parse"},
		{name: "missing url", content: "server:\n  timeout: 1s\n", want: "server.url"},
		{name: "bad scheme", content: "server:\n  url: ftp://host\n", want: "scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() of a missing file should fail")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  url: https://file.example.com\n")

	t.Setenv("JAMF_URL", "https://env.example.com")
	t.Setenv("JAMF_USER", "api")
	t.Setenv("JAMF_PASSWORD", "secret")
	t.Setenv("JAMF_TIMEOUT", "3s")
	t.Setenv("JAMF_MAX_RETRIES", "4")
	t.Setenv("JAMF_LOG_LEVEL", "DEBUG")
	t.Setenv("JAMF_METRICS_TEXTFILE", "/var/lib/node_exporter/jamf.prom")
	t.Setenv("JAMF_BASELINE_MANIFEST", "/tmp/m.yaml")
	t.Setenv("JAMF_BASELINE_WATCH", "true")
	t.Setenv("JAMF_AUDIT_PATH", "/var/lib/jamf/audit.db")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Server.URL != "https://env.example.com" {
		t.Errorf("URL = %q, want env value", cfg.Server.URL)
	}
	if cfg.Server.Username != "api" || cfg.Server.Password != "secret" {
		t.Errorf("credentials = %q/%q", cfg.Server.Username, cfg.Server.Password)
	}
	if cfg.Server.Timeout != 3*time.Second || cfg.Server.MaxRetries != 4 {
		t.Errorf("Timeout = %v, MaxRetries = %d", cfg.Server.Timeout, cfg.Server.MaxRetries)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.TextfilePath == "" {
		t.Errorf("Metrics = %+v", cfg.Telemetry.Metrics)
	}
	if !cfg.Baseline.Watch || cfg.Baseline.Manifest != "/tmp/m.yaml" {
		t.Errorf("Baseline = %+v", cfg.Baseline)
	}
	if cfg.Audit.Path != "/var/lib/jamf/audit.db" {
		t.Errorf("Audit.Path = %q", cfg.Audit.Path)
	}
}

func TestLoadConfigWithEnvOverridesNoFile(t *testing.T) {
	t.Setenv("JAMF_URL", "http://localhost:8080")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Server.URL != "http://localhost:8080" || cfg.Server.Timeout != DefaultTimeout {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestEnvOverridesMalformed(t *testing.T) {
	t.Setenv("JAMF_URL", "https://env.example.com")
	t.Setenv("JAMF_TIMEOUT", "soon")
	t.Setenv("JAMF_MAX_RETRIES", "many")
	t.Setenv("JAMF_BASELINE_WATCH", "maybe")

	_, err := LoadConfigWithEnvOverrides("")

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	fields := make(map[string]bool)
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"JAMF_TIMEOUT", "JAMF_MAX_RETRIES", "JAMF_BASELINE_WATCH"} {
		if !fields[want] {
			t.Errorf("missing field error for %s in %v", want, verr)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Server.URL = "https://jss.example.com"
		return cfg
	}

	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "url without host", modify: func(c *Config) { c.Server.URL = "https://" }, wantField: "server.url"},
		{name: "relative resource path", modify: func(c *Config) { c.Server.ResourcePath = "JSSResource" }, wantField: "server.resource_path"},
		{name: "negative timeout", modify: func(c *Config) { c.Server.Timeout = -time.Second }, wantField: "server.timeout"},
		{name: "too many retries", modify: func(c *Config) { c.Server.MaxRetries = 11 }, wantField: "server.max_retries"},
		{name: "password without user", modify: func(c *Config) { c.Server.Password = "x" }, wantField: "server.username"},
		{name: "bad header", modify: func(c *Config) { c.Server.Headers = map[string]string{"Bad Header": "x"} }, wantField: "server.headers"},
		{name: "bad level", modify: func(c *Config) { c.Telemetry.Logging.Level = "trace" }, wantField: "telemetry.logging.level"},
		{name: "bad format", modify: func(c *Config) { c.Telemetry.Logging.Format = "xml" }, wantField: "telemetry.logging.format"},
		{name: "buckets not increasing", modify: func(c *Config) { c.Telemetry.Metrics.RequestDurationBuckets = []float64{1, 1} }, wantField: "telemetry.metrics.request_duration_buckets"},
		{name: "bad sampler", modify: func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, wantField: "telemetry.tracing.sampler"},
		{name: "ratio out of range", modify: func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, wantField: "telemetry.tracing.sample_ratio"},
		{name: "bad schedule", modify: func(c *Config) { c.Baseline.Schedule = "every hour" }, wantField: "baseline.schedule"},
		{name: "watch without manifest", modify: func(c *Config) { c.Baseline.Watch = true }, wantField: "baseline.watch"},
		{name: "bad audit driver", modify: func(c *Config) { c.Audit.Driver = "postgres" }, wantField: "audit.driver"},
		{name: "negative retention", modify: func(c *Config) { c.Audit.Retention = -time.Hour }, wantField: "audit.retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if verr.Errors[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Errors[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	one := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := one.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("Error() = %q", got)
	}

	two := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if got := two.Error(); !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse") {
		t.Errorf("Error() = %q", got)
	}
}
