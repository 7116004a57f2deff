package domain

import "time"

// AttemptOutcome is how a focus attempt ended.
type AttemptOutcome string

const (
	OutcomeGrown    AttemptOutcome = "grown"
	OutcomeWithered AttemptOutcome = "withered"
)

// Attempt is one finished session, successful or not.
type Attempt struct {
	ID             string
	Outcome        AttemptOutcome
	StartedAt      time.Time
	EndedAt        time.Time
	FocusedSeconds int
	TreeID         string
}

// NewAttempt creates an attempt record with a fresh identifier.
func NewAttempt(outcome AttemptOutcome, startedAt, endedAt time.Time, focusedSeconds int) *Attempt {
	return &Attempt{
		ID:             generateID(),
		Outcome:        outcome,
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		FocusedSeconds: focusedSeconds,
	}
}

// JournalSummary aggregates the attempts recorded in this process.
type JournalSummary struct {
	Grown          int
	Withered       int
	FocusedSeconds int
}

// Attempts returns the total number of finished attempts.
func (s JournalSummary) Attempts() int {
	return s.Grown + s.Withered
}

// SuccessRate returns the share of attempts that grew a tree, in [0,1].
func (s JournalSummary) SuccessRate() float64 {
	if s.Attempts() == 0 {
		return 0
	}
	return float64(s.Grown) / float64(s.Attempts())
}
