package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "password"), []byte("s3cret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "open"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_JAMF_TOKEN", "tok")

	r := NewResolver(NewEnvProvider("TEST_"), NewFileProvider(dir))

	tests := []struct {
		name     string
		value    string
		want     string
		wantErr  bool
		notFound bool
	}{
		{name: "literal", value: "plain", want: "plain"},
		{name: "url-like literal", value: "https://jss.example.com", want: "https://jss.example.com"},
		{name: "env", value: "env:jamf-token", want: "tok"},
		{name: "missing env", value: "env:absent", wantErr: true, notFound: true},
		{name: "relative file", value: "file:password", want: "s3cret"},
		{name: "absolute file", value: "file:" + filepath.Join(dir, "password"), want: "s3cret"},
		{name: "missing file", value: "file:nope", wantErr: true, notFound: true},
		{name: "world readable file", value: "file:open", wantErr: true},
		{name: "directory", value: "file:" + dir, wantErr: true},
		{name: "empty reference", value: "env:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.notFound && !errors.Is(err, ErrNotFound) {
				t.Errorf("Resolve(%q) error = %v, want ErrNotFound", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
