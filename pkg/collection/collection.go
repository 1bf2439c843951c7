package collection

import (
	"fmt"
	"iter"
	"strconv"

	"mercator-hq/jamf/pkg/tree"
)

// SizeKey is the wire field carrying the element count of a collection.
const SizeKey = "size"

// Shape is the wire encoding a collection field was read in.
type Shape int

const (
	// ShapeAbsent means the field was missing, null, empty or had size 0.
	ShapeAbsent Shape = iota
	// ShapeSingle means one element written as a bare value.
	ShapeSingle
	// ShapeMany means a list of elements.
	ShapeMany
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeAbsent:
		return "absent"
	case ShapeSingle:
		return "single"
	case ShapeMany:
		return "many"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Collection is an ordered view over a collection field of a tree.
//
// A Collection owns the container node bound into its owner at field; every
// mutation rewrites that container so the owning tree can be serialized
// directly. Collections are not safe for concurrent use.
type Collection struct {
	owner *tree.Node
	field string
	item  string
	shape Shape

	container *tree.Node
	items     []tree.Value
}

// Bind reads owner[field] as a collection of item elements and rebinds a
// normalized container in its place.
//
// The field may be absent, hold a bare item (one element), or hold a list of
// items, each optionally accompanied by a size count. All three read as one
// logical sequence. The original field value is left untouched; owner[field]
// is replaced by a fresh container in list shape.
func Bind(owner *tree.Node, field, item string) (*Collection, error) {
	if owner == nil {
		return nil, &ShapeError{Field: field, Reason: "owner node is nil"}
	}

	raw, _ := owner.Get(field)
	items, shape, err := read(raw, field, item)
	if err != nil {
		return nil, err
	}

	c := &Collection{
		owner: owner,
		field: field,
		item:  item,
		shape: shape,
	}
	c.container = c.newContainer(raw)
	c.write(items)
	owner.Set(field, c.container)
	return c, nil
}

// Items reads a collection field without binding it. The owner is not modified.
func Items(owner *tree.Node, field, item string) ([]tree.Value, error) {
	raw, _ := owner.Get(field)
	items, _, err := read(raw, field, item)
	return items, err
}

// Field returns the name of the owning field.
func (c *Collection) Field() string { return c.field }

// Shape returns the wire shape the collection was read in.
func (c *Collection) Shape() Shape { return c.shape }

// Container returns the node bound into the owner at Field. It is the same
// node for the lifetime of the collection.
func (c *Collection) Container() *tree.Node { return c.container }

// Len returns the number of elements.
func (c *Collection) Len() int { return len(c.items) }

// Items returns the elements in order. The returned slice is a copy; the
// elements themselves are shared with the tree.
func (c *Collection) Items() []tree.Value {
	out := make([]tree.Value, len(c.items))
	copy(out, c.items)
	return out
}

// All iterates over the elements in order.
func (c *Collection) All() iter.Seq2[int, tree.Value] {
	return func(yield func(int, tree.Value) bool) {
		for i, v := range c.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Append adds v at the end. Duplicates are allowed.
func (c *Collection) Append(v tree.Value) {
	next := make([]tree.Value, len(c.items), len(c.items)+1)
	copy(next, c.items)
	c.write(append(next, v))
}

// Replace sets the elements to those described by e.
func (c *Collection) Replace(e Elements) {
	c.write(e.values())
}

// RemoveWhere drops every element for which pred returns true and returns
// the remaining elements in their original order. Removing nothing is not an
// error; compare lengths to detect it.
func (c *Collection) RemoveWhere(pred func(tree.Value) bool) []tree.Value {
	kept := make([]tree.Value, 0, len(c.items))
	for _, v := range c.items {
		if !pred(v) {
			kept = append(kept, v)
		}
	}
	c.write(kept)
	return c.Items()
}

// Clear removes every element.
func (c *Collection) Clear() {
	c.write(nil)
}

// write stores items and rewrites the container in list shape.
func (c *Collection) write(items []tree.Value) {
	c.items = items
	c.container.Set(SizeKey, strconv.Itoa(len(items)))
	if len(items) == 0 {
		c.container.Delete(c.item)
		return
	}
	list := make(tree.List, len(items))
	copy(list, items)
	c.container.Set(c.item, list)
}

// newContainer copies the fields of the original node other than the item
// key so extra wire fields survive normalization.
func (c *Collection) newContainer(raw tree.Value) *tree.Node {
	out := tree.New(tree.F(SizeKey, "0"))
	if orig, ok := raw.(*tree.Node); ok && orig != nil {
		orig.Each(func(k string, v tree.Value) bool {
			if k != c.item && k != SizeKey {
				out.Set(k, v)
			}
			return true
		})
	}
	return out
}

func read(raw tree.Value, field, item string) ([]tree.Value, Shape, error) {
	switch rv := raw.(type) {
	case nil:
		return nil, ShapeAbsent, nil
	case string:
		if rv == "" {
			return nil, ShapeAbsent, nil
		}
		return nil, ShapeAbsent, &ShapeError{Field: field, Reason: fmt.Sprintf("expected a collection, got text %q", rv)}
	case *tree.Node:
		if rv == nil {
			return nil, ShapeAbsent, nil
		}
	default:
		return nil, ShapeAbsent, &ShapeError{Field: field, Reason: fmt.Sprintf("expected a collection, got %s", tree.Kind(raw))}
	}

	node := raw.(*tree.Node)
	var items []tree.Value
	shape := ShapeAbsent
	if v, ok := node.Get(item); ok {
		if list, isList := v.(tree.List); isList {
			items = append(items, list...)
			shape = ShapeMany
		} else {
			items = []tree.Value{v}
			shape = ShapeSingle
		}
	}

	sizeText, hasSize := node.Text(SizeKey)
	if !hasSize {
		if node.Has(SizeKey) {
			return nil, ShapeAbsent, &ShapeError{Field: field, Reason: "size is not text"}
		}
		return items, shape, nil
	}

	size, err := strconv.Atoi(sizeText)
	if err != nil || size < 0 {
		return nil, ShapeAbsent, &ShapeError{Field: field, Reason: fmt.Sprintf("invalid size %q", sizeText)}
	}
	if size != len(items) {
		return nil, ShapeAbsent, &ShapeError{
			Field:  field,
			Reason: fmt.Sprintf("size %d does not match %d %s element(s)", size, len(items), item),
		}
	}
	return items, shape, nil
}
