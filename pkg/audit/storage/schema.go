package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the audit tables. Timestamps are Unix nanoseconds so both
// drivers store them identically.
const Schema = `
CREATE TABLE IF NOT EXISTS changes (
    id TEXT PRIMARY KEY,
    timestamp INTEGER NOT NULL,
    source TEXT NOT NULL,
    policy_id TEXT NOT NULL,
    policy_name TEXT,
    operation TEXT NOT NULL,
    package TEXT,
    action TEXT,
    request_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_changes_timestamp ON changes(timestamp);
CREATE INDEX IF NOT EXISTS idx_changes_policy ON changes(policy_id, timestamp);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

const (
	insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`
	getSchemaVersion    = `SELECT MAX(version) FROM schema_version`
)
