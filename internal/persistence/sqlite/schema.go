package sqlite

import (
	"context"
	"fmt"
)

// schema holds the DDL applied by Migrate. Statements are idempotent so the
// service can run them on every boot.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS attendees (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		salt TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		badge_code TEXT UNIQUE,
		signed_in INTEGER NOT NULL DEFAULT 0 CHECK (signed_in IN (0, 1)),
		signed_in_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK ((signed_in = 1) = (signed_in_at IS NOT NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS skills (
		attendee_id TEXT NOT NULL REFERENCES attendees(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		rating INTEGER NOT NULL,
		PRIMARY KEY (attendee_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS scans (
		attendee_id TEXT NOT NULL REFERENCES attendees(id) ON DELETE CASCADE,
		activity_name TEXT NOT NULL,
		activity_category TEXT NOT NULL,
		scanned_at TEXT NOT NULL,
		PRIMARY KEY (attendee_id, activity_name, scanned_at)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		token TEXT NOT NULL REFERENCES attendees(token),
		event TEXT NOT NULL REFERENCES events(name),
		PRIMARY KEY (token, event)
	)`,
	`CREATE TABLE IF NOT EXISTS staff (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL REFERENCES staff(id),
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_activity ON scans(activity_name, activity_category)`,
	`CREATE INDEX IF NOT EXISTS idx_attendees_signed_in_at ON attendees(signed_in_at)`,
}

// Migrate applies the schema. Safe to call repeatedly.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
