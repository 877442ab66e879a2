// Package ports defines the application layer port interfaces following hexagonal architecture.
// Ports are abstractions that allow the application core to interact with external systems
// (adapters) without knowing their implementation details.
package ports

import (
	"context"

	"github.com/igoakulov/tokker/internal/domain/history"
)

// HistoryPort defines the interface for recording and retrieving tokenization
// history. Implementations might use SQLite or other storage backends.
type HistoryPort interface {
	// Append persists one history entry. Callers treat failures as
	// best-effort: a failed append never fails the tokenize call itself.
	Append(ctx context.Context, entry *history.Entry) error

	// Recent returns up to limit entries, newest first. limit <= 0 means
	// the implementation's default window.
	Recent(ctx context.Context, limit int) ([]*history.Entry, error)

	// Clear removes all entries and returns how many were deleted.
	Clear(ctx context.Context) (int64, error)

	// Close releases the underlying storage handle.
	Close() error
}
