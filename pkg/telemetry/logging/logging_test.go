package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() with invalid level should fail")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New() with invalid format should fail")
	}
}

func TestLoggerJSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-42")
	logger.DebugContext(ctx, "hidden")
	logger.InfoContext(ctx, "fetched policy", "policy", "1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "fetched policy" || entry["policy"] != "1" {
		t.Errorf("entry = %v", entry)
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entry["request_id"])
	}
}

func TestLoggerWithAttrsKeepsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithRequestID(context.Background(), "abc")
	logger.With("component", "api").WithGroup("http").InfoContext(ctx, "request")

	out := buf.String()
	if !strings.Contains(out, "component=api") || !strings.Contains(out, "request_id=abc") {
		t.Errorf("output = %q", out)
	}
}

func TestGetRequestID(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}

func TestRedactor(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Redact: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("request",
		"password", "hunter2",
		"Authorization", "Basic dXNlcjpwYXNz",
		"detail", "sent Bearer abc.def and more",
		"policy", "Install Tools",
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["password"] != Redacted || entry["Authorization"] != Redacted {
		t.Errorf("sensitive keys not redacted: %v", entry)
	}
	if entry["detail"] != "sent Bearer *** and more" {
		t.Errorf("detail = %v", entry["detail"])
	}
	if entry["policy"] != "Install Tools" {
		t.Errorf("policy = %v", entry["policy"])
	}
}

func TestRedactorExtraKeys(t *testing.T) {
	r := NewRedactor("Tenant")
	if got := r.ReplaceAttr(nil, slog.String("x-tenant-id", "acme")); got.Value.String() != Redacted {
		t.Errorf("ReplaceAttr() = %v, want redacted", got)
	}
	if got := r.RedactString("no credentials here"); got != "no credentials here" {
		t.Errorf("RedactString() = %q", got)
	}
}
