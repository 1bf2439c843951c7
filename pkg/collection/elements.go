package collection

import (
	"iter"

	"mercator-hq/jamf/pkg/tree"
)

// Elements describes the replacement contents of a collection. Build one
// with One, Many or Seq; all three normalize to the same ordered list.
type Elements struct {
	one   tree.Value
	many  []tree.Value
	isOne bool
}

// One describes a collection holding the single element v.
func One(v tree.Value) Elements {
	return Elements{one: v, isOne: true}
}

// Many describes a collection holding vs in order. Many() is empty.
func Many(vs ...tree.Value) Elements {
	out := make([]tree.Value, len(vs))
	copy(out, vs)
	return Elements{many: out}
}

// Seq describes a collection holding every element yielded by seq, in order.
// The sequence is consumed immediately.
func Seq(seq iter.Seq[tree.Value]) Elements {
	var out []tree.Value
	for v := range seq {
		out = append(out, v)
	}
	return Elements{many: out}
}

// Len returns the number of described elements.
func (e Elements) Len() int {
	if e.isOne {
		return 1
	}
	return len(e.many)
}

func (e Elements) values() []tree.Value {
	if e.isOne {
		return []tree.Value{e.one}
	}
	out := make([]tree.Value, len(e.many))
	copy(out, e.many)
	return out
}
