package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens the SQLite database at path with WAL mode, foreign keys and a
// busy timeout.
// PRE: path is a file path or ":memory:"
// POST: Returns a reachable database handle
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables exist; running it again is a no-op
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS activity (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		schedule TEXT NOT NULL DEFAULT '',
		max_participants INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS participant (
		activity_name TEXT NOT NULL,
		email TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (activity_name, email),
		FOREIGN KEY (activity_name) REFERENCES activity(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_participant_position ON participant(activity_name, position);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
