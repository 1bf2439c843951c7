// Package tree defines the generic in-memory value exchanged with the
// device-management API.
//
// A tree is the element-only counterpart of an XML document: every element
// becomes a key in an ordered Node, leaf elements become string scalars (or
// nil when self-closing), and repeated sibling elements collapse into a List
// under a single key.
//
//	root := tree.New(
//	    tree.F("policy", tree.New(
//	        tree.F("general", tree.New(tree.F("id", "1"))),
//	    )),
//	)
//
// Nodes keep insertion order so that serializing a parsed document emits the
// elements in their original order. Equality ignores key order.
package tree
