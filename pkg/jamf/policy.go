package jamf

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"go.opentelemetry.io/otel"

	"mercator-hq/jamf/pkg/api"
	"mercator-hq/jamf/pkg/collection"
	"mercator-hq/jamf/pkg/telemetry/tracing"
	"mercator-hq/jamf/pkg/tree"
)

// DefaultAction is the package action used when none is given.
const DefaultAction = "Install"

var tracer = otel.Tracer("mercator-hq/jamf/pkg/jamf")

// Selector identifies a policy by ID or by name.
type Selector struct {
	id   string
	name string
}

// ByID selects the policy with the given ID.
func ByID(id string) Selector { return Selector{id: id} }

// ByName selects the policy with the given name.
func ByName(name string) Selector { return Selector{name: name} }

// String returns a readable form of the selector.
func (s Selector) String() string {
	switch {
	case s.id != "":
		return "id " + s.id
	case s.name != "":
		return "name " + s.name
	default:
		return "<none>"
	}
}

// Policy is a fetched policy document with package operations that write
// the whole document back to the server.
//
// Packages are bound lazily; every later call works on the same collection,
// so edits made through it are part of the next write. A Policy is not safe
// for concurrent use.
type Policy struct {
	api    api.API
	id     string
	data   *tree.Node
	logger *slog.Logger

	packages *collection.Collection
}

// GetPolicy fetches a policy. Name lookups resolve the policy's ID and
// re-fetch it by ID.
func GetPolicy(ctx context.Context, a api.API, sel Selector) (*Policy, error) {
	if sel.id == "" && sel.name == "" {
		return nil, &DomainError{Op: "get policy", Err: ErrNoSelector}
	}

	id := sel.id
	if id == "" {
		data, err := fetchPolicy(ctx, a, "policies/name/"+url.PathEscape(sel.name))
		if err != nil {
			return nil, &DomainError{Op: "get policy", Policy: sel.String(), Err: err}
		}
		id = generalID(data)
		if id == "" {
			return nil, &DomainError{Op: "get policy", Policy: sel.String(), Err: fmt.Errorf("%w: policy has no general.id", ErrMalformedDocument)}
		}
	}

	data, err := fetchPolicy(ctx, a, "policies/id/"+url.PathEscape(id))
	if err != nil {
		return nil, &DomainError{Op: "get policy", Policy: sel.String(), Err: err}
	}
	if gid := generalID(data); gid != "" {
		id = gid
	}

	return &Policy{
		api:    a,
		id:     id,
		data:   data,
		logger: slog.Default().With("component", "policy", "policy_id", id),
	}, nil
}

func fetchPolicy(ctx context.Context, a api.API, path string) (*tree.Node, error) {
	doc, err := a.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	data := doc.Node("policy")
	if data == nil {
		return nil, fmt.Errorf("%w: %s has no policy element", ErrMalformedDocument, path)
	}
	return data, nil
}

func generalID(data *tree.Node) string {
	v, _ := data.Lookup("general.id")
	s, _ := v.(string)
	return s
}

// ID returns the policy ID.
func (p *Policy) ID() string { return p.id }

// Name returns general.name, or "" if absent.
func (p *Policy) Name() string {
	v, _ := p.data.Lookup("general.name")
	s, _ := v.(string)
	return s
}

// Data returns the policy element. Changes to it are sent with the next write.
func (p *Policy) Data() *tree.Node { return p.data }

// Document returns the full document written to the server: {"policy": data}.
func (p *Policy) Document() *tree.Node {
	return tree.New(tree.F("policy", p.data))
}

// Endpoint returns the resource path of the policy.
func (p *Policy) Endpoint() string {
	return "policies/id/" + url.PathEscape(p.id)
}

// Packages returns the package collection of the policy, binding it on
// first use over package_configuration.packages.
func (p *Policy) Packages() (*collection.Collection, error) {
	if p.packages != nil {
		return p.packages, nil
	}

	cfg := p.data.Node("package_configuration")
	if cfg == nil {
		cfg = tree.New()
		p.data.Set("package_configuration", cfg)
	}
	pkgs, err := collection.Bind(cfg, "packages", "package")
	if err != nil {
		return nil, &DomainError{Op: "read packages", Policy: p.id, Err: err}
	}
	p.packages = pkgs
	return pkgs, nil
}

// SetPackages replaces the package entries locally. Nothing is sent to the
// server until the next write.
func (p *Policy) SetPackages(e collection.Elements) error {
	pkgs, err := p.Packages()
	if err != nil {
		return err
	}
	pkgs.Replace(e)
	return nil
}

// AddPackage appends a {name, action} entry and writes the policy. An empty
// action means DefaultAction. The same package may be added with different
// actions, but not twice with the same one.
func (p *Policy) AddPackage(ctx context.Context, name, action string) (_ *tree.Node, err error) {
	if action == "" {
		action = DefaultAction
	}
	ctx, span := tracer.Start(ctx, "policy.AddPackage")
	tracing.SetPolicyAttributes(span, p.id, p.Name(), name)
	defer func() { tracing.End(span, err) }()

	if name == "" {
		return nil, &DomainError{Op: "add package", Policy: p.id, Err: ErrInvalidName}
	}
	pkgs, err := p.Packages()
	if err != nil {
		return nil, err
	}
	for _, v := range pkgs.Items() {
		if packageField(v, "name") == name && packageField(v, "action") == action {
			return nil, &DomainError{Op: "add package", Policy: p.id, Package: name, Err: ErrDuplicatePackage}
		}
	}

	prev := pkgs.Items()
	pkgs.Append(tree.New(tree.F("name", name), tree.F("action", action)))

	result, err := p.write(ctx)
	if err != nil {
		pkgs.Replace(collection.Many(prev...))
		return nil, &DomainError{Op: "add package", Policy: p.id, Package: name, Err: err}
	}
	p.logger.InfoContext(ctx, "added package", "package", name, "action", action)
	return result, nil
}

// RemovePackage drops every entry named name and writes the policy.
func (p *Policy) RemovePackage(ctx context.Context, name string) (err error) {
	ctx, span := tracer.Start(ctx, "policy.RemovePackage")
	tracing.SetPolicyAttributes(span, p.id, p.Name(), name)
	defer func() { tracing.End(span, err) }()

	if name == "" {
		return &DomainError{Op: "remove package", Policy: p.id, Err: ErrInvalidName}
	}
	pkgs, err := p.Packages()
	if err != nil {
		return err
	}

	prev := pkgs.Items()
	kept := pkgs.RemoveWhere(func(v tree.Value) bool {
		return packageField(v, "name") == name
	})
	if len(kept) == len(prev) {
		return &DomainError{Op: "remove package", Policy: p.id, Package: name, Err: ErrPackageNotFound}
	}

	if _, err := p.write(ctx); err != nil {
		pkgs.Replace(collection.Many(prev...))
		return &DomainError{Op: "remove package", Policy: p.id, Package: name, Err: err}
	}
	p.logger.InfoContext(ctx, "removed package", "package", name)
	return nil
}

// RemoveAllPackages clears the package entries and writes the policy.
func (p *Policy) RemoveAllPackages(ctx context.Context) (_ *tree.Node, err error) {
	ctx, span := tracer.Start(ctx, "policy.RemoveAllPackages")
	tracing.SetPolicyAttributes(span, p.id, p.Name(), "")
	defer func() { tracing.End(span, err) }()

	pkgs, err := p.Packages()
	if err != nil {
		return nil, err
	}

	prev := pkgs.Items()
	pkgs.Clear()

	result, err := p.write(ctx)
	if err != nil {
		pkgs.Replace(collection.Many(prev...))
		return nil, &DomainError{Op: "remove all packages", Policy: p.id, Err: err}
	}
	p.logger.InfoContext(ctx, "removed all packages", "removed", len(prev))
	return result, nil
}

func (p *Policy) write(ctx context.Context) (*tree.Node, error) {
	return p.api.Put(ctx, p.Endpoint(), p.Document())
}

func packageField(v tree.Value, key string) string {
	n, ok := v.(*tree.Node)
	if !ok {
		return ""
	}
	s, _ := n.Text(key)
	return s
}

// PolicySummary is a policy reference as listed by category.
type PolicySummary struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// PoliciesInCategories lists the policies of every named category, in the
// order the categories are given.
func PoliciesInCategories(ctx context.Context, a api.API, names ...string) ([]PolicySummary, error) {
	slog.Default().DebugContext(ctx, "listing policies", "component", "policy", "categories", names)

	var out []PolicySummary
	for _, name := range names {
		doc, err := a.Get(ctx, "policies/category/"+url.PathEscape(name))
		if err != nil {
			return nil, &DomainError{Op: "list policies in category " + name, Err: err}
		}
		items, err := collection.Items(doc, "policies", "policy")
		if err != nil {
			return nil, &DomainError{Op: "list policies in category " + name, Err: err}
		}
		for _, item := range items {
			n, ok := item.(*tree.Node)
			if !ok {
				return nil, &DomainError{
					Op:  "list policies in category " + name,
					Err: fmt.Errorf("%w: policy is %s, not an element", ErrMalformedDocument, tree.Kind(item)),
				}
			}
			id, _ := n.Text("id")
			pname, _ := n.Text("name")
			out = append(out, PolicySummary{ID: id, Name: pname})
		}
	}
	return out, nil
}
