// Package store persists matchups and their pitch records in SQLite.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/pitch.report/internal/timeutil"
)

// DB wraps the SQLite handle shared by the API and the CLI.
type DB struct {
	*sql.DB
	clock timeutil.Clock
}

// OpenDB opens path without touching the schema. The migrate subcommand
// uses it so that migrations stay in control of every table.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{DB: db, clock: timeutil.RealClock{}}, nil
}

// NewDB opens path and brings the schema up to the latest migration.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SetClock replaces the clock used to stamp new matchups.
func (db *DB) SetClock(c timeutil.Clock) { db.clock = c }

func applyPragmas(db *sql.DB) error {
	// A single connection keeps foreign_keys and busy_timeout in effect for
	// every statement.
	db.SetMaxOpenConns(1)
	for _, p := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}
