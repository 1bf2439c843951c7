package audit

import (
	"context"
	"io"
	"time"
)

// Operation is the kind of change applied to a policy package list.
type Operation string

const (
	OpAdd    Operation = "add"
	OpRemove Operation = "remove"
	OpClear  Operation = "clear"
)

// Sources of a change.
const (
	SourceCLI      = "cli"
	SourceBaseline = "baseline"
)

// Record is one change written to a policy.
type Record struct {
	ID         string    `json:"id" yaml:"id"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Source     string    `json:"source" yaml:"source"`
	PolicyID   string    `json:"policy_id" yaml:"policy_id"`
	PolicyName string    `json:"policy_name,omitempty" yaml:"policy_name,omitempty"`
	Operation  Operation `json:"operation" yaml:"operation"`
	Package    string    `json:"package,omitempty" yaml:"package,omitempty"`
	Action     string    `json:"action,omitempty" yaml:"action,omitempty"`
	RequestID  string    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// Query filters records. Zero fields do not filter.
type Query struct {
	PolicyID  string
	Package   string
	Source    string
	Operation Operation

	// Since and Until bound Timestamp; Since is inclusive, Until exclusive.
	Since time.Time
	Until time.Time

	// Limit caps the number of records returned. Default: 100.
	Limit int

	// Ascending returns the oldest records first.
	Ascending bool
}

// DefaultLimit is the number of records a Query returns when Limit is 0.
const DefaultLimit = 100

// Matches reports whether r passes every filter of q.
func (q *Query) Matches(r *Record) bool {
	switch {
	case q.PolicyID != "" && r.PolicyID != q.PolicyID:
		return false
	case q.Package != "" && r.Package != q.Package:
		return false
	case q.Source != "" && r.Source != q.Source:
		return false
	case q.Operation != "" && r.Operation != q.Operation:
		return false
	case !q.Since.IsZero() && r.Timestamp.Before(q.Since):
		return false
	case !q.Until.IsZero() && !r.Timestamp.Before(q.Until):
		return false
	}
	return true
}

// Storage persists records. Implementations are safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, r *Record) error

	// Query returns the records matching q, newest first unless
	// q.Ascending is set.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// Count returns the number of records matching q, ignoring its limit.
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete removes the records matching q, ignoring its limit, and
	// returns how many were removed.
	Delete(ctx context.Context, q *Query) (int64, error)

	// Close releases the backend.
	Close() error
}

// Exporter writes records in a file format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
