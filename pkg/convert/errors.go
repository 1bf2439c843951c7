package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every ParseError.
	ErrParse = errors.New("xml parse error")

	// ErrStructure is matched by every StructureError.
	ErrStructure = errors.New("tree structure error")
)

// ParseError reports XML input that is not a well-formed, element-only
// document. No partial tree accompanies it.
type ParseError struct {
	// Line is the 1-based input line of the failure, 0 if unknown.
	Line int

	// Message describes the failure when there is no underlying cause.
	Message string

	// Cause is the decoder error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("xml parse error: %v", e.Cause)
	}
	if e.Line > 0 {
		return fmt.Sprintf("xml parse error on line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("xml parse error: %s", e.Message)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrParse) succeed.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// StructureError reports a tree that cannot be serialized to XML and
// recovered unchanged. No partial output accompanies it.
type StructureError struct {
	// Path is the dotted key path of the offending value ("" for the root).
	Path string

	// Reason describes the violated precondition.
	Reason string
}

// Error implements the error interface.
func (e *StructureError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tree structure error: %s", e.Reason)
	}
	return fmt.Sprintf("tree structure error at %q: %s", e.Path, e.Reason)
}

// Is makes errors.Is(err, ErrStructure) succeed.
func (e *StructureError) Is(target error) bool {
	return target == ErrStructure
}
