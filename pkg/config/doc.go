// Package config provides configuration management for the jamf toolkit.
//
// Configuration is read from a YAML file, completed with defaults, overridden
// from the environment and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("jamf.yaml")
//
// # Environment Variable Overrides
//
//   - JAMF_URL overrides server.url
//   - JAMF_USER, JAMF_PASSWORD override server.username and server.password
//   - JAMF_TIMEOUT overrides server.timeout
//   - JAMF_MAX_RETRIES overrides server.max_retries
//   - JAMF_LOG_LEVEL, JAMF_LOG_FORMAT override telemetry.logging
//   - JAMF_METRICS_TEXTFILE enables metrics and sets telemetry.metrics.textfile_path
//   - JAMF_BASELINE_MANIFEST, JAMF_BASELINE_SCHEDULE, JAMF_BASELINE_WATCH override baseline
//   - JAMF_AUDIT_PATH overrides audit.path
//
// # Validation
//
// Validation collects every problem before failing:
//
//	configuration validation failed with 2 errors:
//	  - server.url: server url is required
//	  - baseline.schedule: invalid cron schedule "every hour": ...
//
// # Example Configuration
//
//	server:
//	  url: "https://jss.example.com:8443"
//	  timeout: "20s"
//	  headers:
//	    X-Client: "jamf-cli"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
//	baseline:
//	  manifest: "./baseline.yaml"
//	  schedule: "*/30 * * * *"
//	  watch: true
//
//	audit:
//	  path: "/var/lib/jamf/audit.db"
//	  retention: "2160h"
package config
