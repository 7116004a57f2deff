// Package ports defines the interfaces (driven and driving ports)
// for the Forest application following hexagonal architecture principles.
// These interfaces define the contracts between the session core and
// external infrastructure.
package ports

import (
	"context"

	"github.com/xvierd/forest-cli/internal/domain"
)

// Journal defines the interface for recording finished focus attempts.
// This is a driven port (implemented by adapters).
type Journal interface {
	// Record stores a finished attempt.
	Record(ctx context.Context, attempt *domain.Attempt) error

	// Recent returns the most recent attempts, newest first.
	Recent(ctx context.Context, limit int) ([]*domain.Attempt, error)

	// Summary aggregates all recorded attempts.
	Summary(ctx context.Context) (*domain.JournalSummary, error)

	// Close releases the underlying storage.
	Close() error
}
