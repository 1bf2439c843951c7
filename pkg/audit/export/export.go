package export

import (
	"fmt"

	"mercator-hq/jamf/pkg/audit"
)

// New returns the exporter for format: "json", "jsonl" or "csv".
func New(format string) (audit.Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{Pretty: true}, nil
	case "jsonl":
		return &JSONExporter{Lines: true}, nil
	case "csv":
		return &CSVExporter{IncludeHeader: true}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want json, jsonl or csv)", format)
	}
}
