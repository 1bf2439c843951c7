package audit

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is returned for records missing required fields.
var ErrInvalidRecord = errors.New("invalid audit record")

// StorageError wraps a failure of a storage backend.
type StorageError struct {
	Backend   string
	Operation string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s failed: %v", e.Backend, e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, err error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Err: err}
}

// ExportError wraps a failure while exporting records.
type ExportError struct {
	Format string
	Count  int
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export %d records as %s: %v", e.Count, e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// NewExportError creates an ExportError.
func NewExportError(format string, count int, err error) *ExportError {
	return &ExportError{Format: format, Count: count, Err: err}
}
