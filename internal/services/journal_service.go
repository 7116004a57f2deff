package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
)

// JournalService records finished attempts and answers history queries.
// It observes the session controller and writes through to a journal.
type JournalService struct {
	journal ports.Journal
	logger  *slog.Logger
}

// NewJournalService creates a new journal service.
func NewJournalService(journal ports.Journal) *JournalService {
	return &JournalService{
		journal: journal,
		logger:  slog.Default(),
	}
}

// SetLogger replaces the service logger.
func (s *JournalService) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// OnSessionEvent implements ports.SessionObserver.
func (s *JournalService) OnSessionEvent(event domain.SessionEvent) {
	var outcome domain.AttemptOutcome
	switch event.Kind {
	case domain.EventSucceeded:
		outcome = domain.OutcomeGrown
	case domain.EventFailed:
		outcome = domain.OutcomeWithered
	default:
		return
	}

	attempt := domain.NewAttempt(outcome, event.StartedAt, event.At, event.FocusedSeconds)
	if event.Tree != nil {
		attempt.TreeID = event.Tree.ID
	}

	if err := s.journal.Record(context.Background(), attempt); err != nil {
		s.logger.Warn("failed to record attempt", "outcome", outcome, "error", err)
	}
}

// GetRecentAttempts returns the most recent attempts, newest first.
func (s *JournalService) GetRecentAttempts(ctx context.Context, limit int) ([]*domain.Attempt, error) {
	if limit <= 0 {
		limit = 10
	}
	attempts, err := s.journal.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent attempts: %w", err)
	}
	return attempts, nil
}

// GetSummary aggregates all recorded attempts.
func (s *JournalService) GetSummary(ctx context.Context) (*domain.JournalSummary, error) {
	summary, err := s.journal.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize attempts: %w", err)
	}
	return summary, nil
}

// Ensure JournalService implements the observer and history ports.
var (
	_ ports.SessionObserver = (*JournalService)(nil)
	_ ports.HistoryProvider = (*JournalService)(nil)
)
