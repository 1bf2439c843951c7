// Package telemetry groups the observability packages of the jamf client.
//
//   - logging: slog loggers with request IDs and credential redaction
//   - metrics: Prometheus collectors for API calls and baseline runs
//   - tracing: OpenTelemetry spans around API calls
//   - health: liveness and readiness probes for the baseline daemon
package telemetry
