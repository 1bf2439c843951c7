package convert

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"mercator-hq/jamf/pkg/tree"
)

// TreeToXML serializes a tree into compact XML text.
//
// The root node must hold exactly one key. A nil value becomes a self-closing
// element, a string becomes element text, a node becomes nested elements in
// key order and a list becomes repeated sibling elements. A one-element list is
// written as a single element and so reads back as its bare item, the same
// shape the size-1 collection form uses.
//
// Text is escaped so that carriage returns, tabs and inner newlines survive a
// parse. Shapes and text that XMLToTree could not reproduce are rejected with
// a StructureError: lists at the root or nested in lists, empty lists, empty
// nodes, invalid UTF-8, characters XML forbids, and text with leading or
// trailing whitespace (including whitespace-only text), which parsing trims.
func TreeToXML(root *tree.Node) ([]byte, error) {
	switch root.Len() {
	case 0:
		return nil, &StructureError{Reason: "no root element"}
	case 1:
	default:
		return nil, &StructureError{Reason: fmt.Sprintf("multiple roots: %s", strings.Join(root.Keys(), ", "))}
	}

	name := root.Keys()[0]
	v, _ := root.Get(name)
	if isList(v) {
		return nil, &StructureError{Path: name, Reason: "list cannot be the document root"}
	}

	var buf bytes.Buffer
	if err := writeElement(&buf, name, v, name); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeElement(buf *bytes.Buffer, name string, v tree.Value, path string) error {
	if !validName(name) {
		return &StructureError{Path: path, Reason: fmt.Sprintf("invalid element name %q", name)}
	}

	switch tv := v.(type) {
	case nil:
		writeEmpty(buf, name)

	case string:
		if reason := checkText(tv); reason != "" {
			return &StructureError{Path: path, Reason: reason}
		}
		buf.WriteByte('<')
		buf.WriteString(name)
		buf.WriteByte('>')
		_ = xml.EscapeText(buf, []byte(tv)) // bytes.Buffer writes do not fail
		writeClose(buf, name)

	case *tree.Node:
		if tv == nil {
			writeEmpty(buf, name)
			return nil
		}
		if tv.Len() == 0 {
			return &StructureError{Path: path, Reason: "empty node has no XML form"}
		}
		buf.WriteByte('<')
		buf.WriteString(name)
		buf.WriteByte('>')
		var err error
		tv.Each(func(key string, child tree.Value) bool {
			err = writeChild(buf, key, child, path+"."+key)
			return err == nil
		})
		if err != nil {
			return err
		}
		writeClose(buf, name)

	case tree.List:
		return &StructureError{Path: path, Reason: "list nested directly in a list"}

	default:
		return &StructureError{Path: path, Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
	return nil
}

// writeChild emits a node member, expanding lists into repeated siblings.
func writeChild(buf *bytes.Buffer, name string, v tree.Value, path string) error {
	list, ok := v.(tree.List)
	if !ok {
		return writeElement(buf, name, v, path)
	}
	if len(list) == 0 {
		return &StructureError{Path: path, Reason: "empty list has no XML form"}
	}
	for i, item := range list {
		if err := writeElement(buf, name, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func writeEmpty(buf *bytes.Buffer, name string) {
	buf.WriteByte('<')
	buf.WriteString(name)
	buf.WriteString("/>")
}

func writeClose(buf *bytes.Buffer, name string) {
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}

// checkText reports why s cannot be written as element text, or "" if it can.
func checkText(s string) string {
	if !utf8.ValidString(s) {
		return "text is not valid UTF-8"
	}
	for _, r := range s {
		if !isXMLChar(r) {
			return fmt.Sprintf("text contains character %U not allowed in XML", r)
		}
	}
	if strings.TrimSpace(s) != s {
		return "text has leading or trailing whitespace"
	}
	return ""
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// validName accepts the element names this converter can emit: a letter or
// underscore followed by letters, digits, '_', '-' or '.'.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
