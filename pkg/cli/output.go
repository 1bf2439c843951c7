package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"mercator-hq/jamf/pkg/convert"
	"mercator-hq/jamf/pkg/tree"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is human-readable output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatYAML is YAML output.
	FormatYAML OutputFormat = "yaml"
	// FormatXML is XML output; only documents can be rendered as XML.
	FormatXML OutputFormat = "xml"
)

// ParseOutputFormat validates a format name. An empty name means FormatText.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML, FormatXML:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("invalid output format %q: must be text, json, yaml or xml", s)
	}
}

// TextRenderer is implemented by results with a dedicated text rendering.
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// Formatter formats command output.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// TextFormatter renders TextRenderer values with their own rendering,
// documents as YAML and anything else with fmt.
type TextFormatter struct{}

// FormatTo writes data to w in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	switch v := data.(type) {
	case TextRenderer:
		return v.RenderText(w)
	case *tree.Node:
		return (&YAMLFormatter{}).FormatTo(w, v)
	default:
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to w in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML. Documents keep their key order.
type YAMLFormatter struct{}

// FormatTo writes data to w in YAML format.
func (f *YAMLFormatter) FormatTo(w io.Writer, data any) error {
	if n, ok := data.(*tree.Node); ok {
		out, err := convert.TreeToYAML(n)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// XMLFormatter renders documents as compact XML.
type XMLFormatter struct{}

// FormatTo writes data to w in XML format.
func (f *XMLFormatter) FormatTo(w io.Writer, data any) error {
	n, ok := data.(*tree.Node)
	if !ok {
		return fmt.Errorf("xml output is only available for documents, not %T", data)
	}
	out, err := convert.TreeToXML(n)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatXML:
		return &XMLFormatter{}
	default:
		return &TextFormatter{}
	}
}
