package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the tables used by the repositories. They are idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		image_url     TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ORGANIZER', 'ADMIN')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title        TEXT NOT NULL,
		description  TEXT NOT NULL,
		date         DATE NOT NULL,
		time         TEXT NOT NULL,
		location     TEXT NOT NULL,
		price        TEXT NOT NULL,
		image_url    TEXT NOT NULL DEFAULT '',
		slug         TEXT NOT NULL UNIQUE,
		organizer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status       TEXT NOT NULL DEFAULT 'UPCOMING' CHECK (status IN ('UPCOMING', 'COMPLETED', 'CANCELLED')),
		benefits     TEXT[] NOT NULL DEFAULT '{}',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS events_organizer_id_idx ON events (organizer_id)`,
	`CREATE INDEX IF NOT EXISTS events_status_date_idx ON events (status, date)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id      UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS registrations_event_id_idx ON registrations (event_id)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
