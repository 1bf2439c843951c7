package storage

import (
	"context"
	"errors"
	"slices"
	"sync"

	"mercator-hq/jamf/pkg/audit"
)

var errClosed = errors.New("storage is closed")

// Memory keeps records in memory. The zero value is not usable; use NewMemory.
type Memory struct {
	mu      sync.RWMutex
	records []*audit.Record
	closed  bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Store appends a copy of r.
func (m *Memory) Store(ctx context.Context, r *audit.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return audit.NewStorageError("memory", "store", errClosed)
	}
	cp := *r
	m.records = append(m.records, &cp)
	return nil
}

// Query returns copies of the matching records.
func (m *Memory) Query(ctx context.Context, q *audit.Query) ([]*audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, audit.NewStorageError("memory", "query", errClosed)
	}

	var out []*audit.Record
	for _, r := range m.records {
		if q.Matches(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	// records are in insertion order; a stable sort keeps it for equal timestamps
	slices.SortStableFunc(out, func(a, b *audit.Record) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	if !q.Ascending {
		slices.Reverse(out)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = audit.DefaultLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of matching records.
func (m *Memory) Count(ctx context.Context, q *audit.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, audit.NewStorageError("memory", "count", errClosed)
	}
	var n int64
	for _, r := range m.records {
		if q.Matches(r) {
			n++
		}
	}
	return n, nil
}

// Delete removes the matching records.
func (m *Memory) Delete(ctx context.Context, q *audit.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, audit.NewStorageError("memory", "delete", errClosed)
	}
	before := len(m.records)
	m.records = slices.DeleteFunc(m.records, q.Matches)
	return int64(before - len(m.records)), nil
}

// Close drops every record. Further calls fail.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}
