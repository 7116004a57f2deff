package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xvierd/forest-cli/internal/domain"
)

// Record stores a finished attempt.
func (j *sqliteJournal) Record(ctx context.Context, attempt *domain.Attempt) error {
	query := `
		INSERT INTO attempts (id, outcome, started_at, ended_at, focused_seconds, tree_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var treeID sql.NullString
	if attempt.TreeID != "" {
		treeID = sql.NullString{String: attempt.TreeID, Valid: true}
	}

	_, err := j.db.ExecContext(ctx, query,
		attempt.ID,
		string(attempt.Outcome),
		attempt.StartedAt.UTC(),
		attempt.EndedAt.UTC(),
		attempt.FocusedSeconds,
		treeID,
	)
	if isConstraintError(err) {
		return fmt.Errorf("failed to save attempt %s: %w", attempt.ID, domain.ErrDuplicateAttempt)
	}
	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}

	return nil
}

// Recent returns the most recent attempts, newest first.
func (j *sqliteJournal) Recent(ctx context.Context, limit int) ([]*domain.Attempt, error) {
	query := `
		SELECT id, outcome, started_at, ended_at, focused_seconds, tree_id
		FROM attempts
		ORDER BY ended_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attempts []*domain.Attempt
	for rows.Next() {
		var a domain.Attempt
		var treeID sql.NullString
		if err := rows.Scan(
			&a.ID,
			&a.Outcome,
			&a.StartedAt,
			&a.EndedAt,
			&a.FocusedSeconds,
			&treeID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.TreeID = treeID.String
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempts: %w", err)
	}

	return attempts, nil
}

// Summary aggregates all recorded attempts.
func (j *sqliteJournal) Summary(ctx context.Context) (*domain.JournalSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(focused_seconds), 0)
		FROM attempts
	`

	var summary domain.JournalSummary
	err := j.db.QueryRowContext(ctx, query,
		string(domain.OutcomeGrown),
		string(domain.OutcomeWithered),
	).Scan(&summary.Grown, &summary.Withered, &summary.FocusedSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize attempts: %w", err)
	}

	return &summary, nil
}
