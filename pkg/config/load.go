package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides (JAMF_URL, JAMF_TIMEOUT, ...). Environment
// variables take precedence over the file. An empty path skips the file and
// builds the configuration from defaults and the environment alone.
//
// The loading sequence is:
// 1. Load YAML from file (if any)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = parseFile(path)
		if err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// applyEnvOverrides applies JAMF_* environment variables to the configuration.
// Malformed values are reported as field errors rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []FieldError

	if val := os.Getenv("JAMF_URL"); val != "" {
		cfg.Server.URL = val
	}
	if val := os.Getenv("JAMF_USER"); val != "" {
		cfg.Server.Username = val
	}
	if val := os.Getenv("JAMF_PASSWORD"); val != "" {
		cfg.Server.Password = val
	}
	if val := os.Getenv("JAMF_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			errs = append(errs, FieldError{Field: "JAMF_TIMEOUT", Message: err.Error()})
		} else {
			cfg.Server.Timeout = d
		}
	}
	if val := os.Getenv("JAMF_MAX_RETRIES"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			errs = append(errs, FieldError{Field: "JAMF_MAX_RETRIES", Message: err.Error()})
		} else {
			cfg.Server.MaxRetries = i
		}
	}

	if val := os.Getenv("JAMF_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = strings.ToLower(val)
	}
	if val := os.Getenv("JAMF_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = strings.ToLower(val)
	}
	if val := os.Getenv("JAMF_METRICS_TEXTFILE"); val != "" {
		cfg.Telemetry.Metrics.Enabled = true
		cfg.Telemetry.Metrics.TextfilePath = val
	}

	if val := os.Getenv("JAMF_BASELINE_MANIFEST"); val != "" {
		cfg.Baseline.Manifest = val
	}
	if val := os.Getenv("JAMF_BASELINE_SCHEDULE"); val != "" {
		cfg.Baseline.Schedule = val
	}
	if val := os.Getenv("JAMF_BASELINE_WATCH"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			errs = append(errs, FieldError{Field: "JAMF_BASELINE_WATCH", Message: err.Error()})
		} else {
			cfg.Baseline.Watch = b
		}
	}

	if val := os.Getenv("JAMF_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
