package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)

	"mercator-hq/jamf/pkg/audit"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file, or ":memory:".
	Path string

	// Driver selects the database/sql driver: DriverModernc or DriverCgo.
	// Default: DriverModernc
	Driver string

	// BusyTimeout is how long a writer waits for a locked database.
	// Default: 5s
	BusyTimeout time.Duration

	// WALMode enables write-ahead logging for file databases.
	WALMode bool
}

// SQLite stores records in a SQLite database.
type SQLite struct {
	db     *sql.DB
	config SQLiteConfig
	logger *slog.Logger
}

// NewSQLite opens the database at cfg.Path and creates the schema.
func NewSQLite(cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, audit.NewStorageError("sqlite", "open", fmt.Errorf("database path is required"))
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}
	if cfg.Driver != DriverModernc && cfg.Driver != DriverCgo {
		return nil, audit.NewStorageError("sqlite", "open", fmt.Errorf("unknown driver %q", cfg.Driver))
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	s := &SQLite{
		db:     db,
		config: cfg,
		logger: slog.Default().With("component", "audit.storage.sqlite"),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Debug("sqlite storage initialized", "path", cfg.Path, "driver", cfg.Driver)
	return s, nil
}

func (s *SQLite) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store inserts r.
func (s *SQLite) Store(ctx context.Context, r *audit.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO changes (
			id, timestamp, source, policy_id, policy_name,
			operation, package, action, request_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Timestamp.UnixNano(), r.Source, r.PolicyID, nullable(r.PolicyName),
		string(r.Operation), nullable(r.Package), nullable(r.Action), nullable(r.RequestID),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns the matching records.
func (s *SQLite) Query(ctx context.Context, q *audit.Query) ([]*audit.Record, error) {
	where, args := buildWhere(q)
	order := "DESC"
	if q.Ascending {
		order = "ASC"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = audit.DefaultLimit
	}

	stmt := `SELECT id, timestamp, source, policy_id, policy_name, operation, package, action, request_id FROM changes` +
		where + fmt.Sprintf(" ORDER BY timestamp %s, rowid %s LIMIT %d", order, order, limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*audit.Record{}
	for rows.Next() {
		var (
			r                                  audit.Record
			ts                                 int64
			op                                 string
			policyName, pkg, action, requestID sql.NullString
		)
		if err := rows.Scan(&r.ID, &ts, &r.Source, &r.PolicyID, &policyName, &op, &pkg, &action, &requestID); err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		r.Operation = audit.Operation(op)
		r.PolicyName = policyName.String
		r.Package = pkg.String
		r.Action = action.String
		r.RequestID = requestID.String
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLite) Count(ctx context.Context, q *audit.Query) (int64, error) {
	where, args := buildWhere(q)
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM changes"+where, args...).Scan(&n); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// Delete removes the matching records.
func (s *SQLite) Delete(ctx context.Context, q *audit.Query) (int64, error) {
	where, args := buildWhere(q)
	res, err := s.db.ExecContext(ctx, "DELETE FROM changes"+where, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	return nil
}

func buildWhere(q *audit.Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}
	if q.PolicyID != "" {
		add("policy_id = ?", q.PolicyID)
	}
	if q.Package != "" {
		add("package = ?", q.Package)
	}
	if q.Source != "" {
		add("source = ?", q.Source)
	}
	if q.Operation != "" {
		add("operation = ?", string(q.Operation))
	}
	if !q.Since.IsZero() {
		add("timestamp >= ?", q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		add("timestamp < ?", q.Until.UnixNano())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
