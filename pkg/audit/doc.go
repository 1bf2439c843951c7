// Package audit records the package changes written to policies.
//
// Every successful edit, whether made from the command line or by baseline
// enforcement, becomes a Record. Records are kept in a Storage backend
// (storage.Memory or storage.SQLite), queried with a Query and exported
// with the exporters in package export.
//
//	rec := audit.NewRecorder(store, audit.SourceCLI, logger)
//	rec.Record(ctx, &audit.Record{
//	    PolicyID:  "12",
//	    Operation: audit.OpAdd,
//	    Package:   "tools.pkg",
//	    Action:    "Install",
//	})
package audit
