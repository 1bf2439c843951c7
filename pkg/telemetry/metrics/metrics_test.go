package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/jamf/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		RequestDurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if collector.Requests() == nil || collector.Baseline() == nil {
		t.Error("expected request and baseline metrics")
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	c.Requests().RecordRequest("GET", "policies/id/1", 200, time.Second)
	c.Requests().RecordRetry("policies/id/1")
	c.Baseline().RecordRun("ok", 1, 0, time.Now())
	if err := c.WriteTextfile(filepath.Join(t.TempDir(), "jamf.prom")); err != nil {
		t.Errorf("WriteTextfile() on nil collector error = %v", err)
	}
}

func TestRequestMetrics_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	rm := collector.Requests()

	tests := []struct {
		name   string
		method string
		path   string
		code   int
		label  string
		res    string
	}{
		{name: "success", method: "GET", path: "policies/id/12", code: 200, label: "200", res: "policies"},
		{name: "server error", method: "PUT", path: "/policies/id/12", code: 503, label: "503", res: "policies"},
		{name: "no response", method: "GET", path: "categories", code: 0, label: "none", res: "categories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm.RecordRequest(tt.method, tt.path, tt.code, 250*time.Millisecond)

			got := testutil.ToFloat64(rm.requestsTotal.WithLabelValues(tt.method, tt.res, tt.label))
			if got != 1 {
				t.Errorf("requests_total{%s,%s,%s} = %v, want 1", tt.method, tt.res, tt.label, got)
			}
		})
	}

	if n := testutil.CollectAndCount(rm.requestDuration); n != 3 {
		t.Errorf("duration series = %d, want 3", n)
	}
}

func TestRequestMetrics_RecordRetry(t *testing.T) {
	rm := NewCollector(testConfig(), prometheus.NewRegistry()).Requests()

	rm.RecordRetry("policies/id/1")
	rm.RecordRetry("policies/id/2")

	if got := testutil.ToFloat64(rm.retriesTotal.WithLabelValues("policies")); got != 2 {
		t.Errorf("retries_total = %v, want 2", got)
	}
}

func TestResource(t *testing.T) {
	tests := map[string]string{
		"policies/id/12":            "policies",
		"/categories":               "categories",
		"policies/category/Testing": "policies",
		"":                          "unknown",
	}
	for path, want := range tests {
		if got := Resource(path); got != want {
			t.Errorf("Resource(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestBaselineMetrics_RecordRun(t *testing.T) {
	bm := NewCollector(testConfig(), prometheus.NewRegistry()).Baseline()
	finished := time.Unix(1700000000, 0)

	bm.RecordRun("ok", 3, 0, finished)
	bm.RecordRun("partial", 1, 2, finished)

	if got := testutil.ToFloat64(bm.runsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("runs_total{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(bm.packagesAdded); got != 4 {
		t.Errorf("packages_added_total = %v, want 4", got)
	}
	if got := testutil.ToFloat64(bm.policyFailures); got != 2 {
		t.Errorf("policy_failures_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(bm.lastRunSeconds); got != 1700000000 {
		t.Errorf("last_run_timestamp_seconds = %v, want 1700000000", got)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.Requests().RecordRequest("GET", "categories", 200, time.Millisecond)

	path := filepath.Join(t.TempDir(), "jamf.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `test_api_requests_total{code="200",method="GET",resource="categories"} 1`) {
		t.Errorf("textfile missing request counter:\n%s", data)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.Baseline().RecordRun("ok", 1, 0, time.Now())

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_baseline_runs_total") {
		t.Errorf("response missing baseline runs counter:\n%s", rec.Body.String())
	}
}
