package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/jamf/pkg/audit"
)

// JSONExporter writes records as a JSON array, or as one object per line
// when Lines is set.
type JSONExporter struct {
	Pretty bool
	Lines  bool
}

// Export writes records to w.
func (e *JSONExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	if e.Pretty && !e.Lines {
		enc.SetIndent("", "  ")
	}

	if !e.Lines {
		if records == nil {
			records = []*audit.Record{}
		}
		if err := enc.Encode(records); err != nil {
			return audit.NewExportError("json", len(records), err)
		}
		return nil
	}

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(r); err != nil {
			return audit.NewExportError("jsonl", len(records), err)
		}
	}
	return nil
}
