package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// TimeLayout is the text form of DATETIME columns written by callers.
const TimeLayout = "2006-01-02 15:04:05.000"

// DB wraps a sql.DB holding the notification tables.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at path in WAL mode and brings
// its schema up to date.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	return open(dsn, path, 0)
}

// OpenMemory creates an in-memory database for tests. Every pooled
// connection would see its own empty database, so the pool is pinned to
// a single connection.
func OpenMemory() (*DB, error) {
	return open(":memory:?_pragma=foreign_keys(1)", ":memory:", 1)
}

func open(dsn, path string, maxConns int) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return d, nil
}

// Path returns the file the database was opened from, or ":memory:".
func (d *DB) Path() string { return d.path }

// Version is the number of migrations applied, kept in PRAGMA user_version.
func (d *DB) Version() (int, error) {
	var v int
	if err := d.QueryRow(`PRAGMA user_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// migrate applies the migrations the database has not seen yet, each in
// its own transaction.
func (d *DB) migrate() error {
	current, err := d.Version()
	if err != nil {
		return err
	}

	ctx := context.Background()
	for i := current; i < len(migrations); i++ {
		tx, err := d.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}
	return nil
}

// migrations are applied in order and never edited once released; append
// new ones at the end.
var migrations = []string{
	// 1: alerts raised by triage conversations.
	`
CREATE TABLE notifications (
    id TEXT PRIMARY KEY,
    severity TEXT NOT NULL DEFAULT 'info' CHECK(severity IN ('success','info','warning','error')),
    title TEXT NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    session_id TEXT NOT NULL DEFAULT '',
    tier TEXT NOT NULL DEFAULT '',
    delivered INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
);
CREATE INDEX idx_notifications_delivered ON notifications(delivered);
CREATE INDEX idx_notifications_created ON notifications(created_at);
CREATE INDEX idx_notifications_session ON notifications(session_id);
`,
	// 2: webhooks registered through the API.
	`
CREATE TABLE notification_webhooks (
    id TEXT PRIMARY KEY,
    url TEXT NOT NULL UNIQUE,
    severity_filter TEXT NOT NULL DEFAULT 'info' CHECK(severity_filter IN ('success','info','warning','error')),
    created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
);
`,
}
