package convert

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"mercator-hq/jamf/pkg/tree"
)

// TreeToYAML renders a tree as a YAML mapping, keeping key order.
// Null scalars render as null and every other scalar as a string.
func TreeToYAML(root *tree.Node) ([]byte, error) {
	n, err := toYAML(root, "")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// YAMLToTree reads a YAML mapping into a tree. Every non-null scalar becomes
// a string; sequences become lists and mappings become nodes.
func YAMLToTree(data []byte) (*tree.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &StructureError{Reason: "no root element"}
	}

	v, err := fromYAML(doc.Content[0], "")
	if err != nil {
		return nil, err
	}
	root, ok := v.(*tree.Node)
	if !ok {
		return nil, &StructureError{Reason: fmt.Sprintf("yaml document must be a mapping, got %s", tree.Kind(v))}
	}
	return root, nil
}

func toYAML(v tree.Value, path string) (*yaml.Node, error) {
	switch tv := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tv}, nil

	case *tree.Node:
		if tv == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
		}
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		tv.Each(func(key string, child tree.Value) bool {
			var cn *yaml.Node
			cn, err = toYAML(child, joinPath(path, key))
			if err != nil {
				return false
			}
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, cn)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil

	case tree.List:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range tv {
			cn, err := toYAML(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, cn)
		}
		return out, nil

	default:
		return nil, &StructureError{Path: path, Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
}

func fromYAML(n *yaml.Node, path string) (tree.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAML(n.Alias, path)

	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		return n.Value, nil

	case yaml.MappingNode:
		out := tree.New()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, &StructureError{Path: path, Reason: fmt.Sprintf("mapping key on line %d is not a scalar", k.Line)}
			}
			if out.Has(k.Value) {
				return nil, &StructureError{Path: joinPath(path, k.Value), Reason: "duplicate key"}
			}
			v, err := fromYAML(vn, joinPath(path, k.Value))
			if err != nil {
				return nil, err
			}
			out.Set(k.Value, v)
		}
		return out, nil

	case yaml.SequenceNode:
		out := make(tree.List, 0, len(n.Content))
		for i, item := range n.Content {
			v, err := fromYAML(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	default:
		return nil, &StructureError{Path: path, Reason: fmt.Sprintf("unsupported yaml node kind %d", n.Kind)}
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
