package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/jamf/pkg/config"
	"mercator-hq/jamf/pkg/convert"
	"mercator-hq/jamf/pkg/telemetry/metrics"
	"mercator-hq/jamf/pkg/tree"
)

func newTestClient(t *testing.T, srv *httptest.Server, mutate func(*config.ServerConfig)) (*Client, *prometheus.Registry) {
	t.Helper()

	cfg := config.ServerConfig{
		URL:          srv.URL,
		ResourcePath: "/JSSResource",
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Namespace: "test"}, registry)

	client, err := NewClient(cfg, ClientOptions{
		HTTPClient: srv.Client(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:    collector.Requests(),
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, registry
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid", url: "https://jss.example.com:8443"},
		{name: "trailing slash", url: "https://jss.example.com/"},
		{name: "empty", url: "", wantErr: true},
		{name: "no scheme", url: "jss.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(config.ServerConfig{URL: tt.url}, ClientOptions{})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestClient_URL(t *testing.T) {
	client, err := NewClient(config.ServerConfig{URL: "https://jss.example.com/"}, ClientOptions{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	for _, path := range []string{"policies/id/1", "/policies/id/1"} {
		if got, want := client.URL(path), "https://jss.example.com/JSSResource/policies/id/1"; got != want {
			t.Errorf("URL(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/JSSResource/policies/id/1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/xml" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("missing request ID header")
		}
		if r.Header.Get("X-Extra") != "yes" {
			t.Errorf("X-Extra = %q, want static header", r.Header.Get("X-Extra"))
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			t.Errorf("basic auth = %q/%q/%v", user, pass, ok)
		}
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><policy><general><id>1</id><name>Test</name></general></policy>`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, func(cfg *config.ServerConfig) {
		cfg.Username = "admin"
		cfg.Password = "secret"
		cfg.Headers = map[string]string{"X-Extra": "yes"}
	})

	got, err := client.Get(context.Background(), "policies/id/1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	want := tree.New(tree.F("policy", tree.New(tree.F("general", tree.New(
		tree.F("id", "1"),
		tree.F("name", "Test"),
	)))))
	if !got.Equal(want) {
		t.Errorf("Get() = %#v, want %#v", got, want)
	}
}

func TestClient_Put(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/xml" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if want := `<policy><general><id>7</id></general></policy>`; string(body) != want {
			t.Errorf("body = %s, want %s", body, want)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, nil)
	body := tree.New(tree.F("policy", tree.New(tree.F("general", tree.New(tree.F("id", "7"))))))

	got, err := client.Put(context.Background(), "policies/id/7", body)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got != nil {
		t.Errorf("Put() with empty response = %#v, want nil", got)
	}
}

func TestClient_PutUnrepresentableTree(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, nil)
	body := tree.New(tree.F("a", "1"), tree.F("b", "2"))

	_, err := client.Put(context.Background(), "policies/id/1", body)
	if !errors.Is(err, convert.ErrStructure) {
		t.Fatalf("Put() error = %v, want structure error", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server called %d times, want 0", calls.Load())
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	var requestIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDs = append(requestIDs, r.Header.Get(RequestIDHeader))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `<categories><size>0</size></categories>`)
	}))
	defer srv.Close()

	client, registry := newTestClient(t, srv, nil)

	if _, err := client.Get(context.Background(), "policies/id/3"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	for _, id := range requestIDs[1:] {
		if id != requestIDs[0] {
			t.Errorf("request ID changed across retries: %v", requestIDs)
			break
		}
	}

	expected := `
# HELP test_api_retries_total Total number of retried API request attempts
# TYPE test_api_retries_total counter
test_api_retries_total{resource="policies"} 2
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_api_retries_total"); err != nil {
		t.Error(err)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{name: "not found is not retried", status: http.StatusNotFound, wantCalls: 1},
		{name: "conflict is not retried", status: http.StatusConflict, wantCalls: 1},
		{name: "server error exhausts retries", status: http.StatusInternalServerError, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				io.WriteString(w, "<html>error</html>")
			}))
			defer srv.Close()

			client, _ := newTestClient(t, srv, nil)

			_, err := client.Get(context.Background(), "policies/id/1")
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("Get() error = %v, want *StatusError", err)
			}
			if statusErr.StatusCode != tt.status || statusErr.Method != http.MethodGet || statusErr.Path != "policies/id/1" {
				t.Errorf("StatusError = %+v", statusErr)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "categories")
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Get() error = %v, want *TimeoutError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("errors.Is(err, context.Canceled) = false for %v", err)
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<policy><general></policy>")
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, nil)

	_, err := client.Get(context.Background(), "policies/id/1")
	if !errors.Is(err, convert.ErrParse) {
		t.Fatalf("Get() error = %v, want parse error", err)
	}
}
