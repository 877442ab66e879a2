package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/igoakulov/tokker/internal/application/ports"
	domainErrors "github.com/igoakulov/tokker/internal/domain/errors"
	"github.com/igoakulov/tokker/internal/domain/history"
)

// Compile-time check that HistoryRepository implements HistoryPort.
var _ ports.HistoryPort = (*HistoryRepository)(nil)

// defaultRecentLimit is the window Recent uses when no limit is given.
const defaultRecentLimit = 20

// HistoryRepository implements ports.HistoryPort using SQLite. Appends
// prune the table down to maxEntries, oldest first.
type HistoryRepository struct {
	conn       *Connection
	db         *sql.DB
	maxEntries int
}

// NewHistoryRepository creates a history repository over an open
// connection. maxEntries <= 0 disables pruning.
func NewHistoryRepository(conn *Connection, maxEntries int) (*HistoryRepository, error) {
	db, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("history repository: %w", err)
	}

	return &HistoryRepository{
		conn:       conn,
		db:         db,
		maxEntries: maxEntries,
	}, nil
}

// Append persists one history entry and prunes entries beyond the
// configured window.
func (r *HistoryRepository) Append(ctx context.Context, entry *history.Entry) error {
	if entry == nil {
		return domainErrors.NewError(domainErrors.CodeValidation, "history entry is nil", nil)
	}
	if entry.ID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "history entry ID is required", nil)
	}
	if entry.Model == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "history entry model is required", nil)
	}

	query := `
		INSERT INTO history_entries (id, text, model, provider, token_count, word_count, char_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Text,
		entry.Model,
		entry.Provider,
		entry.TokenCount,
		entry.WordCount,
		entry.CharCount,
		entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return r.prune(ctx)
}

// Recent returns up to limit entries, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]*history.Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
		SELECT id, text, model, provider, token_count, word_count, char_count, created_at
		FROM history_entries
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*history.Entry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}

// Clear removes all entries and returns how many were deleted.
func (r *HistoryRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM history_entries`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check clear result: %w", err)
	}

	return deleted, nil
}

// Close releases the underlying connection.
func (r *HistoryRepository) Close() error {
	return r.conn.Close()
}

// prune deletes the oldest entries beyond the configured window.
func (r *HistoryRepository) prune(ctx context.Context) error {
	if r.maxEntries <= 0 {
		return nil
	}

	query := `
		DELETE FROM history_entries
		WHERE id NOT IN (
			SELECT id FROM history_entries
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)
	`

	if _, err := r.db.ExecContext(ctx, query, r.maxEntries); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	return nil
}

// scanHistoryEntry scans one row into a history entry.
func scanHistoryEntry(rows *sql.Rows) (*history.Entry, error) {
	var (
		entry     history.Entry
		createdAt string
	)

	err := rows.Scan(
		&entry.ID, &entry.Text, &entry.Model, &entry.Provider,
		&entry.TokenCount, &entry.WordCount, &entry.CharCount, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	entry.CreatedAt = parsed

	return &entry, nil
}
