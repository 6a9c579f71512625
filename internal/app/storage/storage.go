// Package storage provides the sqlite backed store for the player's
// user data: recent files and the play history.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when an object was not found.
var ErrNotFound = errors.New("object not found")

const schema = `
CREATE TABLE IF NOT EXISTS recent_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	kind TEXT NOT NULL,
	play_count INTEGER NOT NULL DEFAULT 0,
	first_played_at DATETIME NOT NULL,
	last_played_at DATETIME NOT NULL,
	UNIQUE (path, kind)
);
CREATE INDEX IF NOT EXISTS idx_recent_files_kind ON recent_files (kind, last_played_at);

CREATE TABLE IF NOT EXISTS play_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	midi_path TEXT NOT NULL,
	soundfont_path TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	duration_seconds REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_play_history_started_at ON play_history (started_at);
`

// Storage provides access to the sqlite database.
type Storage struct {
	db *sql.DB
}

// New returns a new storage instance for an initialized database.
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// ConnectDB initializes the database and returns it.
func ConnectDB(dataSourceName string, create bool) (*sql.DB, error) {
	v := url.Values{}
	v.Add("_fk", "on")
	v.Add("_journal_mode", "WAL")
	v.Add("_synchronous", "normal")
	dsn := fmt.Sprintf("%s?%s", dataSourceName, v.Encode())
	slog.Debug("Connecting to sqlite", "dsn", dsn)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	slog.Info("Connected to database")
	if create {
		if err := ApplySchema(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// ApplySchema creates all tables unless they exist.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
