package sqlite

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	language   TEXT NOT NULL,
	avatar_url TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id                TEXT PRIMARY KEY,
	room_id           TEXT NOT NULL,
	sender_id         TEXT NOT NULL,
	sender_name       TEXT NOT NULL DEFAULT '',
	original_language TEXT NOT NULL,
	original_text     TEXT NOT NULL,
	created_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, created_at DESC);
`

// Migrate creates the schema if it does not exist yet.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
