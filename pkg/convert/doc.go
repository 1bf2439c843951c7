// Package convert translates between XML text and tree values.
//
// XMLToTree and TreeToXML are inverses for element-only documents:
//
//	<list><item>one</item><item>two</item></list>
//
// converts to
//
//	{"list": {"item": ["one", "two"]}}
//
// and back. XML has no list marker, so cardinality is inferred from structure:
// a tag that occurs once among its siblings yields a bare value, a tag that
// occurs more than once yields a tree.List. Readers of collection fields must
// therefore accept either shape (see package collection).
//
// Only element names and text are converted. Attributes, comments and
// processing instructions are not represented in the tree.
//
// Select runs XPath queries over raw documents and YAMLToTree/TreeToYAML
// provide an order-preserving YAML view of the same trees.
package convert
