package jamf

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mercator-hq/jamf/pkg/api"
	"mercator-hq/jamf/pkg/tree"
)

func category(id, name string) *tree.Node {
	return tree.New(tree.F("id", id), tree.F("name", name))
}

func categoriesAPI(items tree.Value) *mockAPI {
	return &mockAPI{docs: map[string]*tree.Node{
		"categories": tree.New(tree.F("categories", tree.New(tree.F("category", items)))),
	}}
}

func TestCategories(t *testing.T) {
	a := categoriesAPI(tree.List{
		category("1", "name-1"),
		category("2", "name-2"),
		category("3", "Name-1"),
		category("4", "different"),
	})

	tests := []struct {
		name    string
		match   string
		exclude []string
		want    []Category
	}{
		{
			name: "all categories",
			want: []Category{{"1", "name-1"}, {"2", "name-2"}, {"3", "Name-1"}, {"4", "different"}},
		},
		{
			name:  "matching name is case sensitive",
			match: "name",
			want:  []Category{{"1", "name-1"}, {"2", "name-2"}},
		},
		{
			name:    "exclude by full name",
			match:   "name",
			exclude: []string{"name-1"},
			want:    []Category{{"2", "name-2"}},
		},
		{
			name:    "same name and exclude",
			match:   "name-2",
			exclude: []string{"name-2"},
			want:    nil,
		},
		{
			name:    "exclude is not a substring match",
			exclude: []string{"name"},
			want:    []Category{{"1", "name-1"}, {"2", "name-2"}, {"3", "Name-1"}, {"4", "different"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Categories(context.Background(), a, tt.match, tt.exclude...)
			if err != nil {
				t.Fatalf("Categories() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCategories_Shapes(t *testing.T) {
	tests := []struct {
		name string
		doc  *tree.Node
		want []Category
	}{
		{
			name: "single category is a bare element",
			doc: tree.New(tree.F("categories", tree.New(
				tree.F("size", "1"),
				tree.F("category", category("9", "Only")),
			))),
			want: []Category{{"9", "Only"}},
		},
		{
			name: "no categories",
			doc:  tree.New(tree.F("categories", tree.New(tree.F("size", "0")))),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &mockAPI{docs: map[string]*tree.Node{"categories": tt.doc}}
			got, err := Categories(context.Background(), a, "")
			if err != nil {
				t.Fatalf("Categories() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCategories_Errors(t *testing.T) {
	t.Run("api failure", func(t *testing.T) {
		_, err := Categories(context.Background(), &mockAPI{}, "")
		var statusErr *api.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("Categories() error = %v, want *api.StatusError", err)
		}
	})

	t.Run("missing root element", func(t *testing.T) {
		a := &mockAPI{docs: map[string]*tree.Node{"categories": tree.New(tree.F("other", ""))}}
		_, err := Categories(context.Background(), a, "")
		if !errors.Is(err, ErrMalformedDocument) {
			t.Fatalf("Categories() error = %v, want ErrMalformedDocument", err)
		}
	})
}
