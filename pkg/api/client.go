package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mercator-hq/jamf/pkg/config"
	"mercator-hq/jamf/pkg/convert"
	"mercator-hq/jamf/pkg/telemetry/logging"
	"mercator-hq/jamf/pkg/telemetry/metrics"
	"mercator-hq/jamf/pkg/telemetry/tracing"
	"mercator-hq/jamf/pkg/tree"
)

const (
	contentTypeXML = "application/xml"

	// RequestIDHeader carries the per-request correlation ID.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 512
)

// ClientOptions carries the optional collaborators of a Client.
type ClientOptions struct {
	// HTTPClient overrides the HTTP client. When nil a client with the
	// configured timeout is created.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records request counts and durations. May be nil.
	Metrics *metrics.RequestMetrics

	// Tracer creates a span per request. When nil the global provider is used.
	Tracer *tracing.Tracer
}

// Client is an API implementation speaking XML over HTTP.
// It is safe for concurrent use.
type Client struct {
	config  config.ServerConfig
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	metrics *metrics.RequestMetrics
	tracer  *tracing.Tracer
}

var _ API = (*Client)(nil)

// NewClient creates a Client for the server described by cfg.
func NewClient(cfg config.ServerConfig, opts ClientOptions) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("server url is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: scheme and host are required", cfg.URL)
	}
	if cfg.ResourcePath == "" {
		cfg.ResourcePath = config.DefaultResourcePath
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config:  cfg,
		baseURL: strings.TrimSuffix(cfg.URL, "/") + "/" + strings.Trim(cfg.ResourcePath, "/") + "/",
		client:  httpClient,
		logger:  logger.With("component", "api"),
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}, nil
}

// URL returns the absolute URL of a resource path.
func (c *Client) URL(path string) string {
	return c.baseURL + strings.TrimPrefix(path, "/")
}

// Get implements API.
func (c *Client) Get(ctx context.Context, path string) (*tree.Node, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Put implements API.
func (c *Client) Put(ctx context.Context, path string, body *tree.Node) (*tree.Node, error) {
	var data []byte
	if body != nil {
		var err error
		data, err = convert.TreeToXML(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", path, err)
		}
	}
	return c.do(ctx, http.MethodPut, path, data)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (_ *tree.Node, err error) {
	requestID := logging.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logging.WithRequestID(ctx, requestID)
	}

	target := c.URL(path)
	ctx, span := c.tracer.Start(ctx, "api "+method)
	tracing.SetRequestAttributes(span, method, target, metrics.Resource(path), requestID)
	defer func() { tracing.End(span, err) }()

	start := time.Now()
	data, code, retries, err := c.send(ctx, method, path, target, requestID, body)
	duration := time.Since(start)

	c.metrics.RecordRequest(method, path, code, duration)
	tracing.SetResponseAttributes(span, code, retries)

	if err != nil {
		c.logger.WarnContext(ctx, "request failed",
			"method", method,
			"path", path,
			"status", code,
			"retries", retries,
			"duration", duration,
			"error", err,
		)
		return nil, err
	}

	c.logger.DebugContext(ctx, "request completed",
		"method", method,
		"path", path,
		"status", code,
		"retries", retries,
		"duration", duration,
	)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	node, err := convert.XMLToTree(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return node, nil
}

// send performs the request with retries on transport errors and 5xx
// responses. It returns the body of the first 2xx response, the last status
// code seen and the number of retries made.
func (c *Client) send(ctx context.Context, method, path, target, requestID string, body []byte) ([]byte, int, int, error) {
	var lastErr error
	code := 0

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			c.logger.DebugContext(ctx, "retrying request",
				"method", method,
				"path", path,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)
			c.metrics.RecordRetry(path)

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, code, attempt, c.timeoutError(method, path, ctx.Err())
			case <-timer.C:
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
		if err != nil {
			return nil, 0, attempt, fmt.Errorf("failed to create request: %w", err)
		}
		c.setHeaders(ctx, req, requestID, body != nil)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, code, attempt, c.timeoutError(method, path, ctx.Err())
			}
			lastErr = fmt.Errorf("%s %s: %w", method, path, err)
			c.logger.WarnContext(ctx, "request failed, will retry",
				"method", method,
				"path", path,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		code = resp.StatusCode

		if code >= 200 && code < 300 {
			if readErr != nil {
				return nil, code, attempt, fmt.Errorf("failed to read %s response: %w", path, readErr)
			}
			return data, code, attempt, nil
		}

		statusErr := &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: code,
			Body:       truncate(strings.TrimSpace(string(data)), maxErrorBody),
		}
		if !statusErr.Temporary() {
			return nil, code, attempt, statusErr
		}

		lastErr = statusErr
		c.logger.WarnContext(ctx, "request returned server error, will retry",
			"method", method,
			"path", path,
			"status", code,
			"attempt", attempt+1,
		)
	}

	return nil, code, c.config.MaxRetries, lastErr
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request, requestID string, hasBody bool) {
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Accept", contentTypeXML)
	if hasBody {
		req.Header.Set("Content-Type", contentTypeXML)
	}
	req.Header.Set(RequestIDHeader, requestID)
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
	tracing.Inject(ctx, req.Header)
}

func (c *Client) timeoutError(method, path string, cause error) error {
	return &TimeoutError{
		Method:  method,
		Path:    path,
		Timeout: c.config.Timeout,
		Cause:   cause,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
