package collection

import "fmt"

// ShapeError reports a collection field whose wire shape cannot be read as
// a sequence.
type ShapeError struct {
	// Field is the collection field name.
	Field string

	// Reason describes the mismatch.
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("collection %q: %s", e.Field, e.Reason)
}
