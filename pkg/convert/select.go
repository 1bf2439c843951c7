package convert

import (
	"bytes"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"mercator-hq/jamf/pkg/tree"
)

// Select evaluates an XPath expression against an XML document and returns
// the tree value of every match in document order.
//
// Element matches resolve to the value XMLToTree gives that element in the
// whole document, so <a></a> selects "" and <a/> selects nil. Text and
// attribute matches convert to their string content.
func Select(data []byte, expr string) ([]tree.Value, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}

	root, err := XMLToTree(data)
	if err != nil {
		return nil, err
	}

	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Cause: err}
	}

	matches := xmlquery.QuerySelectorAll(doc, compiled)
	out := make([]tree.Value, 0, len(matches))
	for _, m := range matches {
		if m.Type != xmlquery.ElementNode {
			out = append(out, m.InnerText())
			continue
		}
		v, ok := lookup(root, elementPath(m))
		if !ok {
			return nil, &StructureError{Path: m.Data, Reason: "matched element has no tree value"}
		}
		out = append(out, v)
	}
	return out, nil
}

// step locates an element among its parent's children: the idx-th child
// element named name.
type step struct {
	name string
	idx  int
}

// elementPath returns the steps from the document element down to n.
func elementPath(n *xmlquery.Node) []step {
	var path []step
	for ; n != nil && n.Type == xmlquery.ElementNode; n = n.Parent {
		idx := 0
		for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if sib.Type == xmlquery.ElementNode && sib.Data == n.Data {
				idx++
			}
		}
		path = append(path, step{name: n.Data, idx: idx})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// lookup follows path through the tree. Repeated siblings are merged into a
// list in document order, so a step's index is its position in that list.
func lookup(root *tree.Node, path []step) (tree.Value, bool) {
	var cur tree.Value = root
	for _, s := range path {
		n, ok := cur.(*tree.Node)
		if !ok || n == nil {
			return nil, false
		}
		v, ok := n.Get(s.name)
		if !ok {
			return nil, false
		}
		if list, isList := v.(tree.List); isList {
			if s.idx >= len(list) {
				return nil, false
			}
			v = list[s.idx]
		} else if s.idx != 0 {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
