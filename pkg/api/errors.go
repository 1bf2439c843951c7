package api

import (
	"fmt"
	"time"
)

// StatusError reports a non-2xx response that was not retried, or the last
// server error once retries were exhausted.
type StatusError struct {
	// Method is the HTTP method of the request.
	Method string

	// Path is the resource path relative to the resource prefix.
	Path string

	// StatusCode is the HTTP status code returned by the server.
	StatusCode int

	// Body is the response body, truncated to a readable length.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Temporary reports whether the server error may succeed when retried.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500
}

// TimeoutError reports a request abandoned because its context was
// cancelled or its deadline passed.
type TimeoutError struct {
	// Method is the HTTP method of the request.
	Method string

	// Path is the resource path relative to the resource prefix.
	Path string

	// Timeout is the configured per-request timeout.
	Timeout time.Duration

	// Cause is the context error.
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: request aborted (timeout %s): %v", e.Method, e.Path, e.Timeout, e.Cause)
}

// Unwrap returns the context error so errors.Is(err, context.Canceled) works.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}
