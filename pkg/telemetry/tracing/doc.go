// Package tracing wraps OpenTelemetry tracing for API calls and policy
// operations.
//
// A Tracer created from a disabled configuration is a no-op. When enabled,
// spans are sampled according to the configured strategy, the W3C trace
// context is injected into outgoing requests, and spans are exported over
// OTLP gRPC if an endpoint is configured.
package tracing
