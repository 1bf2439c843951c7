package baseline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"mercator-hq/jamf/pkg/config"
	"mercator-hq/jamf/pkg/jamf"
)

// Manifest lists the packages every policy must contain.
//
//	policies:
//	  - name: Install Tools
//	    packages:
//	      - name: tools-1.2.pkg
//	      - name: cleanup.pkg
//	        action: Uninstall
type Manifest struct {
	Policies []PolicyBaseline `yaml:"policies"`
}

// PolicyBaseline is the required package set of one policy, selected by ID
// or by name.
type PolicyBaseline struct {
	ID       string        `yaml:"id,omitempty"`
	Name     string        `yaml:"name,omitempty"`
	Packages []PackageSpec `yaml:"packages"`
}

// PackageSpec is a required package entry. An empty action means
// jamf.DefaultAction.
type PackageSpec struct {
	Name   string `json:"name" yaml:"name"`
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
}

// Selector returns the policy selector of the entry; ID wins over name.
func (p PolicyBaseline) Selector() jamf.Selector {
	if p.ID != "" {
		return jamf.ByID(p.ID)
	}
	return jamf.ByName(p.Name)
}

// Label returns a readable identifier for logs and reports.
func (p PolicyBaseline) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return "id " + p.ID
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes and validates a manifest. Unknown fields are
// rejected and empty actions are set to jamf.DefaultAction.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	for i := range m.Policies {
		for j := range m.Policies[i].Packages {
			if m.Policies[i].Packages[j].Action == "" {
				m.Policies[i].Packages[j].Action = jamf.DefaultAction
			}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every policy is selectable and every package named.
func (m *Manifest) Validate() error {
	var errs []config.FieldError

	for i, p := range m.Policies {
		field := fmt.Sprintf("policies[%d]", i)
		if p.ID == "" && p.Name == "" {
			errs = append(errs, config.FieldError{Field: field, Message: "id or name is required"})
		}
		seen := make(map[PackageSpec]bool, len(p.Packages))
		for j, pkg := range p.Packages {
			pkgField := fmt.Sprintf("%s.packages[%d]", field, j)
			if pkg.Name == "" {
				errs = append(errs, config.FieldError{Field: pkgField, Message: "package name is required"})
				continue
			}
			if seen[pkg] {
				errs = append(errs, config.FieldError{
					Field:   pkgField,
					Message: fmt.Sprintf("duplicate package %q with action %q", pkg.Name, pkg.Action),
				})
			}
			seen[pkg] = true
		}
	}

	if len(errs) > 0 {
		return config.ValidationError{Errors: errs}
	}
	return nil
}
