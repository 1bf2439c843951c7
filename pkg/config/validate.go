package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any rule fails. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateBaseline(&cfg.Baseline)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.URL == "" {
		errs = append(errs, FieldError{Field: "server.url", Message: "server url is required"})
	} else if u, err := url.Parse(cfg.URL); err != nil {
		errs = append(errs, FieldError{Field: "server.url", Message: fmt.Sprintf("invalid url: %v", err)})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, FieldError{Field: "server.url", Message: "url scheme must be http or https"})
	} else if u.Host == "" {
		errs = append(errs, FieldError{Field: "server.url", Message: "url must include a host"})
	}

	if cfg.ResourcePath != "" && !strings.HasPrefix(cfg.ResourcePath, "/") {
		errs = append(errs, FieldError{Field: "server.resource_path", Message: "resource path must start with '/'"})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "server.timeout", Message: "timeout must be positive"})
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{Field: "server.max_retries", Message: "max retries must be non-negative"})
	}
	if cfg.MaxRetries > 10 {
		errs = append(errs, FieldError{Field: "server.max_retries", Message: "max retries exceeds reasonable limit (10)"})
	}
	if cfg.RetryBackoff < 0 {
		errs = append(errs, FieldError{Field: "server.retry_backoff", Message: "retry backoff must be positive"})
	}

	if cfg.Password != "" && cfg.Username == "" {
		errs = append(errs, FieldError{Field: "server.username", Message: "username is required when a password is set"})
	}

	for name := range cfg.Headers {
		if name == "" || strings.ContainsAny(name, " \t\r\n:") {
			errs = append(errs, FieldError{Field: "server.headers", Message: fmt.Sprintf("invalid header name %q", name)})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.namespace",
			Message: "metrics namespace is required when metrics are enabled",
		})
	}
	for i := 1; i < len(cfg.Metrics.RequestDurationBuckets); i++ {
		if cfg.Metrics.RequestDurationBuckets[i] <= cfg.Metrics.RequestDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.request_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %g", cfg.Tracing.SampleRatio),
		})
	}

	return errs
}

func validateBaseline(cfg *BaselineConfig) []FieldError {
	var errs []FieldError

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "baseline.schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.Schedule, err),
			})
		}
	}
	if cfg.Watch && cfg.Manifest == "" {
		errs = append(errs, FieldError{
			Field:   "baseline.watch",
			Message: "watching requires baseline.manifest",
		})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "baseline.debounce_interval",
			Message: "debounce interval must be positive",
		})
	}

	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if cfg.Driver != "sqlite" && cfg.Driver != "sqlite3" {
		errs = append(errs, FieldError{
			Field:   "audit.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.Driver),
		})
	}
	if cfg.Retention < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention",
			Message: "retention must be positive",
		})
	}

	return errs
}
