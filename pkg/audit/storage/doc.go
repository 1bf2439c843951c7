// Package storage provides the audit record backends: an in-memory store
// for tests and one-shot commands, and a SQLite store for persistent
// history.
package storage
