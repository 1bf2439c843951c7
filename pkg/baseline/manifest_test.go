package baseline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mercator-hq/jamf/pkg/config"
	"mercator-hq/jamf/pkg/jamf"
)

func TestParseManifest(t *testing.T) {
	data := []byte(`
policies:
  - name: Install Tools
    packages:
      - name: tools-1.2.pkg
      - name: cleanup.pkg
        action: Uninstall
  - id: "42"
    packages:
      - name: agent.pkg
        action: Cache
`)

	m, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}

	want := &Manifest{Policies: []PolicyBaseline{
		{Name: "Install Tools", Packages: []PackageSpec{
			{Name: "tools-1.2.pkg", Action: jamf.DefaultAction},
			{Name: "cleanup.pkg", Action: "Uninstall"},
		}},
		{ID: "42", Packages: []PackageSpec{{Name: "agent.pkg", Action: "Cache"}}},
	}}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("ParseManifest() mismatch (-want +got):\n%s", diff)
	}

	if got := m.Policies[1].Selector(); got != jamf.ByID("42") {
		t.Errorf("Selector() = %v, want id 42", got)
	}
	if got := m.Policies[1].Label(); got != "id 42" {
		t.Errorf("Label() = %q, want %q", got, "id 42")
	}
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantField string
	}{
		{
			name:      "policy without selector",
			data:      "policies:\n  - packages:\n      - name: a.pkg\n",
			wantField: "policies[0]",
		},
		{
			name:      "package without name",
			data:      "policies:\n  - id: \"1\"\n    packages:\n      - action: Cache\n",
			wantField: "policies[0].packages[0]",
		},
		{
			name:      "duplicate package",
			data:      "policies:\n  - id: \"1\"\n    packages:\n      - name: a.pkg\n      - name: a.pkg\n        action: Install\n",
			wantField: "policies[0].packages[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data))
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ParseManifest() error = %v, want ValidationError", err)
			}
			if verr.Errors[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Errors[0].Field, tt.wantField)
			}
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		if _, err := ParseManifest([]byte("policies:\n  - id: \"1\"\n    pkgs: []\n")); err == nil {
			t.Error("expected error for unknown field")
		}
	})
}

func TestParseManifest_Empty(t *testing.T) {
	m, err := ParseManifest(nil)
	if err != nil {
		t.Fatalf("ParseManifest(nil) error = %v", err)
	}
	if len(m.Policies) != 0 {
		t.Errorf("policies = %d, want 0", len(m.Policies))
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.yaml")
	if err := os.WriteFile(path, []byte("policies:\n  - id: \"1\"\n    packages:\n      - name: a.pkg\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if len(m.Policies) != 1 || m.Policies[0].Packages[0].Action != jamf.DefaultAction {
		t.Errorf("LoadManifest() = %+v", m)
	}

	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadManifest(missing) error = %v, want os.ErrNotExist", err)
	}
}
