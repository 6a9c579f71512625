// Package testutil contains utilities for writing tests.
package testutil

import (
	"database/sql"

	"github.com/mkalinski/sona/internal/app/storage"
)

// NewDBInMemory creates and returns a database in memory for tests.
// Important: This variant is not suitable for DB code that runs in goroutines.
func NewDBInMemory() (*sql.DB, *storage.Storage, Factory) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		panic(err)
	}
	if err := storage.ApplySchema(db); err != nil {
		panic(err)
	}
	st := storage.New(db)
	return db, st, NewFactory(st)
}

// MustTruncateTables is like [TruncateTables] but will panic on any error.
func MustTruncateTables(db *sql.DB) {
	if err := TruncateTables(db); err != nil {
		panic(err)
	}
}

// TruncateTables purges data from all data tables. This is meant for tests.
func TruncateTables(db *sql.DB) error {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = "table" AND name NOT LIKE "sqlite_%"`)
	if err != nil {
		return err
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, n := range tables {
		if _, err := db.Exec("DELETE FROM " + n); err != nil {
			return err
		}
	}
	return nil
}
