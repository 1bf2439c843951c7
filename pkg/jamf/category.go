package jamf

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"mercator-hq/jamf/pkg/api"
	"mercator-hq/jamf/pkg/collection"
	"mercator-hq/jamf/pkg/tree"
)

// Category is a category record.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Categories lists the categories whose name contains name and is not
// listed in exclude. An empty name matches every category. Server order is
// kept.
func Categories(ctx context.Context, a api.API, name string, exclude ...string) ([]Category, error) {
	doc, err := a.Get(ctx, "categories")
	if err != nil {
		return nil, &DomainError{Op: "list categories", Err: err}
	}
	if !doc.Has("categories") {
		return nil, &DomainError{Op: "list categories", Err: fmt.Errorf("%w: no categories element", ErrMalformedDocument)}
	}

	items, err := collection.Items(doc, "categories", "category")
	if err != nil {
		return nil, &DomainError{Op: "list categories", Err: err}
	}

	var out []Category
	for _, item := range items {
		c, err := categoryFrom(item)
		if err != nil {
			return nil, &DomainError{Op: "list categories", Err: err}
		}
		if slices.Contains(exclude, c.Name) || !strings.Contains(c.Name, name) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func categoryFrom(v tree.Value) (Category, error) {
	n, ok := v.(*tree.Node)
	if !ok || n == nil {
		return Category{}, fmt.Errorf("%w: category is %s, not an element", ErrMalformedDocument, tree.Kind(v))
	}
	name, ok := n.Text("name")
	if !ok {
		return Category{}, fmt.Errorf("%w: category without name", ErrMalformedDocument)
	}
	id, _ := n.Text("id")
	return Category{ID: id, Name: name}, nil
}
