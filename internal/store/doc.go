// Package store opens and wraps the database handles used by the DAO layer.
//
// Three drivers are supported:
//   - sqlite3: github.com/mattn/go-sqlite3 (cgo), the default
//   - sqlite: modernc.org/sqlite (pure Go)
//   - postgres: github.com/jackc/pgx/v5 through its database/sql adapter
//
// SQLite handles are configured for a single writer:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// A Store never owns schema. Tables are created by callers (fixtures, the
// harness) through Exec.
package store
