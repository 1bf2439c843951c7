package convert

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"mercator-hq/jamf/pkg/tree"
)

// element is an open element on the decode stack.
type element struct {
	name        string
	children    *tree.Node
	text        strings.Builder
	selfClosing bool
	line        int
}

// XMLToTree parses an element-only XML document into a tree.
//
// The result has exactly one key, the root element's tag. Sibling elements
// sharing a tag are merged into a tree.List in document order, even when other
// tags appear between them; a tag seen once stays a bare value. Leaf elements
// become their trimmed text, or nil when written self-closing.
//
// Attributes are ignored. The XML declaration, comments, processing
// instructions and directives are skipped.
func XMLToTree(data []byte) (*tree.Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	// No entity expansion beyond the predefined XML entities.
	dec.Entity = map[string]string{}

	var (
		stack []*element
		root  *tree.Node
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newParseError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			if root != nil {
				return nil, &ParseError{Line: line, Message: "multiple root elements"}
			}
			off := dec.InputOffset()
			stack = append(stack, &element{
				name:        t.Name.Local,
				selfClosing: off >= 2 && data[off-2] == '/' && data[off-1] == '>',
				line:        line,
			})

		case xml.EndElement:
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			v, err := el.value()
			if err != nil {
				return nil, err
			}
			if len(stack) == 0 {
				root = tree.New(tree.F(el.name, v))
				continue
			}
			stack[len(stack)-1].add(el.name, v)

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					line, _ := dec.InputPos()
					return nil, &ParseError{Line: line, Message: "text outside the root element"}
				}
				continue
			}
			stack[len(stack)-1].text.Write(t)
		}
	}

	if len(stack) > 0 {
		return nil, &ParseError{Line: stack[0].line, Message: "unexpected end of input"}
	}
	if root == nil {
		return nil, &ParseError{Message: "no root element"}
	}
	return root, nil
}

// add binds a closed child to this element, merging repeated tags.
func (e *element) add(name string, v tree.Value) {
	if e.children == nil {
		e.children = tree.New()
	}
	existing, ok := e.children.Get(name)
	switch {
	case !ok:
		e.children.Set(name, v)
	case isList(existing):
		e.children.Set(name, append(existing.(tree.List), v))
	default:
		e.children.Set(name, tree.List{existing, v})
	}
}

// value resolves a closed element to its tree value.
func (e *element) value() (tree.Value, error) {
	text := strings.TrimSpace(e.text.String())
	if e.children != nil {
		if text != "" {
			return nil, &ParseError{Line: e.line, Message: "mixed content in <" + e.name + ">"}
		}
		return e.children, nil
	}
	if e.selfClosing {
		return nil, nil
	}
	return text, nil
}

func isList(v tree.Value) bool {
	_, ok := v.(tree.List)
	return ok
}

func newParseError(err error) *ParseError {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Line: syntaxErr.Line, Cause: err}
	}
	return &ParseError{Cause: err}
}
