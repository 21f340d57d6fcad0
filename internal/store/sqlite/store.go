package sqlite

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"
)

// Store is the system of record for catalog snapshots, personal records,
// groups and per-user sync state.
type Store struct {
	db *sql.DB
}

// New opens the database, applies the schema and returns the store.
// The pool is restricted to a single connection: sqlite allows one writer
// at a time and the sync engine relies on serialized transactions.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS catalog_snapshots (
		version INTEGER PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'draft',
		entries JSON NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_status ON catalog_snapshots(status);

	CREATE TABLE IF NOT EXISTS groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE(user_id, name)
	);

	CREATE TABLE IF NOT EXISTS personal_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		group_id INTEGER,
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_system_link INTEGER NOT NULL DEFAULT 0,
		is_deletable INTEGER NOT NULL DEFAULT 1,
		active INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY(group_id) REFERENCES groups(id)
	);
	CREATE INDEX IF NOT EXISTS idx_records_user_name ON personal_records(user_id, name, is_system_link, active);

	CREATE TABLE IF NOT EXISTS sync_states (
		user_id TEXT PRIMARY KEY,
		synced_version INTEGER NOT NULL,
		refreshed_at DATETIME NOT NULL
	);
	`
	_, err := db.Exec(query)
	return err
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
