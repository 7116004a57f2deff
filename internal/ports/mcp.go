package ports

import (
	"context"

	"github.com/xvierd/forest-cli/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// SessionProvider exposes the focus session to driving adapters.
// This is a driven port (implemented by the services layer).
type SessionProvider interface {
	// Snapshot returns the current session state.
	Snapshot(ctx context.Context) (domain.Snapshot, error)

	// Start begins a session. It reports false when a session is not Idle.
	Start(ctx context.Context) (bool, error)

	// ReportVisibility feeds a visibility transition into the session.
	ReportVisibility(ctx context.Context, v domain.Visibility) error

	// ConfirmContinue dismisses a pending leave warning.
	ConfirmContinue(ctx context.Context) (bool, error)

	// ConfirmLeave accepts a pending leave warning, withering the tree.
	ConfirmLeave(ctx context.Context) (bool, error)
}

// HistoryProvider exposes the attempt journal to driving adapters.
type HistoryProvider interface {
	// GetRecentAttempts returns the most recent attempts, newest first.
	GetRecentAttempts(ctx context.Context, limit int) ([]*domain.Attempt, error)

	// GetSummary aggregates all recorded attempts.
	GetSummary(ctx context.Context) (*domain.JournalSummary, error)
}
