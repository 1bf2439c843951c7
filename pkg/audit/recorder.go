package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/jamf/pkg/telemetry/logging"
)

// Recorder stamps records and writes them to a Storage. A nil *Recorder
// records nothing.
type Recorder struct {
	storage Storage
	source  string
	logger  *slog.Logger
	now     func() time.Time
}

// NewRecorder creates a Recorder writing records of source to s.
func NewRecorder(s Storage, source string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		storage: s,
		source:  source,
		logger:  logger.With("component", "audit"),
		now:     time.Now,
	}
}

// WithSource returns a Recorder sharing the storage of r but recording
// changes of source.
func (r *Recorder) WithSource(source string) *Recorder {
	if r == nil {
		return nil
	}
	cp := *r
	cp.source = source
	return &cp
}

// Record fills in the ID, timestamp, source and request ID of rec when
// unset and stores it.
func (r *Recorder) Record(ctx context.Context, rec *Record) error {
	if r == nil {
		return nil
	}
	if rec.PolicyID == "" || rec.Operation == "" {
		return fmt.Errorf("%w: policy id and operation are required", ErrInvalidRecord)
	}
	if rec.Operation != OpClear && rec.Package == "" {
		return fmt.Errorf("%w: %s requires a package", ErrInvalidRecord, rec.Operation)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now().UTC()
	}
	if rec.Source == "" {
		rec.Source = r.source
	}
	if rec.RequestID == "" {
		rec.RequestID = logging.GetRequestID(ctx)
	}

	if err := r.storage.Store(ctx, rec); err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "change recorded",
		"id", rec.ID,
		"policy_id", rec.PolicyID,
		"operation", rec.Operation,
		"package", rec.Package,
	)
	return nil
}

// Prune deletes records older than maxAge and returns how many were removed.
func (r *Recorder) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	if r == nil || maxAge <= 0 {
		return 0, nil
	}
	cutoff := r.now().UTC().Add(-maxAge)
	n, err := r.storage.Delete(ctx, &Query{Until: cutoff})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.InfoContext(ctx, "pruned audit records", "deleted", n, "cutoff", cutoff)
	}
	return n, nil
}
