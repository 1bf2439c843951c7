package jamf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidName is returned when a package name is empty.
	ErrInvalidName = errors.New("invalid package name")

	// ErrDuplicatePackage is returned when a policy already holds an entry
	// with the same package name and action.
	ErrDuplicatePackage = errors.New("policy already contains package")

	// ErrPackageNotFound is returned when removing a package the policy
	// does not hold.
	ErrPackageNotFound = errors.New("policy missing package")

	// ErrNoSelector is returned when a policy is requested without an ID
	// or a name.
	ErrNoSelector = errors.New("must specify name or policy ID")

	// ErrMalformedDocument is returned when a server document lacks an
	// element the operation depends on.
	ErrMalformedDocument = errors.New("malformed document")
)

// DomainError describes a failed policy or category operation.
type DomainError struct {
	// Op is the operation, e.g. "add package".
	Op string

	// Policy identifies the policy (ID or name), if any.
	Policy string

	// Package is the package name, if any.
	Package string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Package != "" {
		fmt.Fprintf(&sb, " %q", e.Package)
	}
	if e.Policy != "" {
		fmt.Fprintf(&sb, " (policy %s)", e.Policy)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *DomainError) Unwrap() error {
	return e.Err
}
