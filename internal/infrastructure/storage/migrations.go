package storage

import (
	"database/sql"
	"fmt"
)

// applyMigrations applies all database migrations in order.
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("could not enable foreign keys: %w", err)
	}

	if err := createMigrationsTable(db); err != nil {
		return err
	}

	migrations := []struct {
		version int
		name    string
		sql     string
	}{
		{1, "create_history_entries_table", createHistoryEntriesTable},
		{2, "create_history_indices", createHistoryIndices},
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(db, m.version)
		if err != nil {
			return fmt.Errorf("could not check migration %d: %w", m.version, err)
		}

		if applied {
			continue
		}

		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("could not apply migration %d (%s): %w", m.version, m.name, err)
		}

		if err := recordMigration(db, m.version, m.name); err != nil {
			return fmt.Errorf("could not record migration %d: %w", m.version, err)
		}
	}

	return nil
}

// createMigrationsTable creates the migrations tracking table.
func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// isMigrationApplied checks if a migration has been applied.
func isMigrationApplied(db *sql.DB, version int) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// recordMigration records that a migration has been applied.
func recordMigration(db *sql.DB, version int, name string) error {
	_, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// Migration SQL statements

const createHistoryEntriesTable = `
CREATE TABLE history_entries (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	model TEXT NOT NULL,
	provider TEXT NOT NULL,
	token_count INTEGER NOT NULL,
	word_count INTEGER NOT NULL,
	char_count INTEGER NOT NULL,
	created_at TEXT NOT NULL
)`

const createHistoryIndices = `
CREATE INDEX idx_history_entries_created_at ON history_entries(created_at DESC);
CREATE INDEX idx_history_entries_model ON history_entries(model)`
