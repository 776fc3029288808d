// Package sqlite stores users, events and registrations in an embedded SQLite database.
// It backs single-node deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Open connects to the SQLite database at path and enables foreign keys.
// Writes are serialized over a single connection to avoid "database is locked" errors.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		image_url     TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ORGANIZER', 'ADMIN')),
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL,
		date         DATETIME NOT NULL,
		time         TEXT NOT NULL,
		location     TEXT NOT NULL,
		price        TEXT NOT NULL,
		image_url    TEXT NOT NULL DEFAULT '',
		slug         TEXT NOT NULL UNIQUE,
		organizer_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status       TEXT NOT NULL DEFAULT 'UPCOMING' CHECK (status IN ('UPCOMING', 'COMPLETED', 'CANCELLED')),
		benefits     TEXT NOT NULL DEFAULT '[]',
		created_at   DATETIME NOT NULL,
		updated_at   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS events_organizer_id_idx ON events (organizer_id);
	CREATE INDEX IF NOT EXISTS events_status_date_idx ON events (status, date);

	CREATE TABLE IF NOT EXISTS registrations (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id      TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		registered_at DATETIME NOT NULL,
		UNIQUE (user_id, event_id)
	);
	CREATE INDEX IF NOT EXISTS registrations_event_id_idx ON registrations (event_id);
`

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
