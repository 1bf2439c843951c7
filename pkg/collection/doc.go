// Package collection reconciles the ambiguous wire shapes of collection
// fields into a single ordered sequence.
//
// The converter collapses a one-element list into a bare value, so the same
// field can arrive three ways:
//
//	{"packages": {"size": "0"}}                                  // absent
//	{"packages": {"size": "1", "package": {...}}}                // single
//	{"packages": {"size": "2", "package": [{...}, {...}]}}       // many
//
// Bind reads any of them and replaces the field with a container it owns.
// Reads tolerate every shape; writes always use the list shape and keep the
// size field in step with the element count.
//
//	pkgs, err := collection.Bind(cfg, "packages", "package")
//	if err != nil {
//	    return err
//	}
//	pkgs.Append(tree.New(tree.F("name", "tool.pkg")))
package collection
