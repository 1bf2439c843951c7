package tree

import (
	"fmt"
	"strings"
)

// Value is a tree value. It holds exactly one of:
//   - nil, the null scalar (a self-closing element)
//   - string, a text scalar
//   - *Node, an ordered mapping of tag names to values
//   - List, repeated sibling values sharing one tag
type Value any

// List holds the values of repeated sibling elements in document order.
type List []Value

// Field is a single key/value pair used to build a Node.
type Field struct {
	Key   string
	Value Value
}

// F is shorthand for constructing a Field.
func F(key string, value Value) Field {
	return Field{Key: key, Value: value}
}

// Node is an ordered mapping from tag name to value.
// The zero value is an empty node ready to use.
type Node struct {
	keys   []string
	values map[string]Value
}

// New creates a node from the given fields in order.
// A repeated key overwrites the earlier value but keeps its position.
func New(fields ...Field) *Node {
	n := &Node{values: make(map[string]Value, len(fields))}
	for _, f := range fields {
		n.Set(f.Key, f.Value)
	}
	return n
}

// Len returns the number of keys in the node.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// Keys returns the keys in insertion order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Get returns the value stored under key.
func (n *Node) Get(key string) (Value, bool) {
	if n == nil {
		return nil, false
	}
	v, ok := n.values[key]
	return v, ok
}

// Has reports whether key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Set stores value under key. Existing keys keep their position.
func (n *Node) Set(key string, value Value) {
	if n.values == nil {
		n.values = make(map[string]Value)
	}
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.values[key] = value
}

// Delete removes key from the node. It is a no-op if key is absent.
func (n *Node) Delete(key string) {
	if n == nil {
		return
	}
	if _, ok := n.values[key]; !ok {
		return
	}
	delete(n.values, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
}

// Each calls fn for every key in order. Iteration stops when fn returns false.
func (n *Node) Each(fn func(key string, value Value) bool) {
	if n == nil {
		return
	}
	for _, k := range n.keys {
		if !fn(k, n.values[k]) {
			return
		}
	}
}

// Node returns the child node stored under key, or nil if the key is
// absent or holds something other than a node.
func (n *Node) Node(key string) *Node {
	v, _ := n.Get(key)
	child, _ := v.(*Node)
	return child
}

// Text returns the text scalar stored under key. The second result is
// false if the key is absent or does not hold a string.
func (n *Node) Text(key string) (string, bool) {
	v, _ := n.Get(key)
	s, ok := v.(string)
	return s, ok
}

// Lookup walks a dotted path of keys ("general.id") through nested nodes.
func (n *Node) Lookup(path string) (Value, bool) {
	cur := n
	parts := strings.Split(path, ".")
	for i, p := range parts {
		v, ok := cur.Get(p)
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.(*Node)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Equal reports whether n and other are structurally equal.
// Key order is not significant; list order is.
func (n *Node) Equal(other *Node) bool {
	if n.Len() != other.Len() {
		return false
	}
	equal := true
	n.Each(func(k string, v Value) bool {
		ov, ok := other.Get(k)
		if !ok || !Equal(v, ov) {
			equal = false
		}
		return equal
	})
	return equal
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		keys:   make([]string, len(n.keys)),
		values: make(map[string]Value, len(n.values)),
	}
	copy(out.keys, n.keys)
	for k, v := range n.values {
		out.values[k] = Clone(v)
	}
	return out
}

// GoString renders the node for test failure output.
func (n *Node) GoString() string {
	var sb strings.Builder
	writeGo(&sb, n)
	return sb.String()
}

// Equal reports whether two tree values are structurally equal.
// A nil *Node is the same value as nil.
func Equal(a, b Value) bool {
	a, b = normalizeNil(a), normalizeNil(b)
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case *Node:
		bv, ok := b.(*Node)
		return ok && av.Equal(bv)
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func normalizeNil(v Value) Value {
	if n, ok := v.(*Node); ok && n == nil {
		return nil
	}
	return v
}

// Clone returns a deep copy of a tree value.
func Clone(v Value) Value {
	switch tv := v.(type) {
	case *Node:
		return tv.Clone()
	case List:
		out := make(List, len(tv))
		for i, item := range tv {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// Kind names the shape of a value for error messages.
func Kind(v Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case *Node:
		return "node"
	case List:
		return "list"
	default:
		return fmt.Sprintf("unsupported %T", v)
	}
}

func writeGo(sb *strings.Builder, v Value) {
	switch tv := v.(type) {
	case nil:
		sb.WriteString("nil")
	case string:
		fmt.Fprintf(sb, "%q", tv)
	case *Node:
		if tv == nil {
			sb.WriteString("nil")
			return
		}
		sb.WriteString("{")
		for i, k := range tv.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q: ", k)
			writeGo(sb, tv.values[k])
		}
		sb.WriteString("}")
	case List:
		sb.WriteString("[")
		for i, item := range tv {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeGo(sb, item)
		}
		sb.WriteString("]")
	default:
		fmt.Fprintf(sb, "%#v", tv)
	}
}
