package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redacted replaces masked attribute values.
const Redacted = "***"

// Redactor masks sensitive values in log attributes: attributes whose key
// names a credential, and bearer/basic credentials embedded in string values.
type Redactor struct {
	keys     []string
	patterns []*regexp.Regexp
}

// NewRedactor creates a Redactor with the default sensitive keys.
func NewRedactor(extraKeys ...string) *Redactor {
	keys := []string{"authorization", "password", "token", "secret", "cookie"}
	for _, k := range extraKeys {
		keys = append(keys, strings.ToLower(k))
	}
	return &Redactor{
		keys: keys,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(bearer|basic)\s+[A-Za-z0-9._~+/=-]+`),
		},
	}
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if r.sensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	if a.Value.Kind() == slog.KindString {
		if s := r.RedactString(a.Value.String()); s != a.Value.String() {
			return slog.String(a.Key, s)
		}
	}
	return a
}

// RedactString masks embedded credentials in s.
func (r *Redactor) RedactString(s string) string {
	for _, p := range r.patterns {
		s = p.ReplaceAllStringFunc(s, func(m string) string {
			scheme, _, _ := strings.Cut(m, " ")
			return scheme + " " + Redacted
		})
	}
	return s
}

func (r *Redactor) sensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range r.keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
