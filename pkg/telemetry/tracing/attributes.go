package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded on spans.
const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPURL        = "http.url"
	AttrHTTPStatusCode = "http.status_code"

	AttrRequestID  = "jamf.request_id"
	AttrResource   = "jamf.resource"
	AttrRetryCount = "jamf.retry_count"
	AttrPolicyID   = "jamf.policy.id"
	AttrPolicyName = "jamf.policy.name"
	AttrPackage    = "jamf.package"
)

// SetRequestAttributes records the outgoing API request on span.
func SetRequestAttributes(span trace.Span, method, url, resource, requestID string) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPURL, url),
		attribute.String(AttrResource, resource),
		attribute.String(AttrRequestID, requestID),
	)
}

// SetResponseAttributes records the outcome of an API request on span.
func SetResponseAttributes(span trace.Span, statusCode, retries int) {
	attrs := []attribute.KeyValue{attribute.Int(AttrRetryCount, retries)}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int(AttrHTTPStatusCode, statusCode))
	}
	span.SetAttributes(attrs...)
}

// SetPolicyAttributes records the policy (and optionally package) an
// operation acts on.
func SetPolicyAttributes(span trace.Span, id, name, pkg string) {
	attrs := []attribute.KeyValue{attribute.String(AttrPolicyID, id)}
	if name != "" {
		attrs = append(attrs, attribute.String(AttrPolicyName, name))
	}
	if pkg != "" {
		attrs = append(attrs, attribute.String(AttrPackage, pkg))
	}
	span.SetAttributes(attrs...)
}
