package export

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"mercator-hq/jamf/pkg/audit"
)

var csvHeader = []string{"id", "timestamp", "source", "policy_id", "policy_name", "operation", "package", "action", "request_id"}

// CSVExporter writes records as CSV with RFC 3339 timestamps.
type CSVExporter struct {
	IncludeHeader bool
}

// Export writes records to w.
func (e *CSVExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	cw := csv.NewWriter(w)
	if e.IncludeHeader {
		if err := cw.Write(csvHeader); err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
	}
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := []string{
			r.ID,
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.Source,
			r.PolicyID,
			r.PolicyName,
			string(r.Operation),
			r.Package,
			r.Action,
			r.RequestID,
		}
		if err := cw.Write(row); err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return audit.NewExportError("csv", len(records), err)
	}
	return nil
}
