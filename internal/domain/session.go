package domain

import (
	"fmt"
	"time"
)

// SessionState is the discriminated state of the focus session machine.
// Exactly one state is active at any instant.
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateRunning   SessionState = "running"
	StateWithering SessionState = "withering"
)

// SessionConfig holds the process-wide timing constants for focus sessions.
type SessionConfig struct {
	DurationSeconds int

	// WitherGraceSeconds is how long the withered tree stays visible
	// before the machine returns to Idle.
	WitherGraceSeconds int

	// InterruptionGraceSeconds bounds how long a mobile-class warning may
	// stay unresolved. Zero waits for an explicit answer.
	InterruptionGraceSeconds int

	// SuccessNoticeSeconds is how long the success notice stays visible.
	SuccessNoticeSeconds int
}

// DefaultSessionConfig returns the standard 25 minute session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		DurationSeconds:          1500,
		WitherGraceSeconds:       3,
		InterruptionGraceSeconds: 0,
		SuccessNoticeSeconds:     3,
	}
}

// Validate reports whether the configuration can drive a session.
func (c SessionConfig) Validate() error {
	if c.DurationSeconds <= 0 {
		return fmt.Errorf("%w: duration must be at least one second, got %ds", ErrInvalidConfig, c.DurationSeconds)
	}
	if c.WitherGraceSeconds < 0 {
		return fmt.Errorf("%w: wither grace must not be negative", ErrInvalidConfig)
	}
	if c.InterruptionGraceSeconds < 0 {
		return fmt.Errorf("%w: interruption grace must not be negative", ErrInvalidConfig)
	}
	if c.SuccessNoticeSeconds < 0 {
		return fmt.Errorf("%w: success notice must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Duration returns the session length as a time.Duration.
func (c SessionConfig) Duration() time.Duration {
	return time.Duration(c.DurationSeconds) * time.Second
}

// WitherGrace returns the withering window as a time.Duration.
func (c SessionConfig) WitherGrace() time.Duration {
	return time.Duration(c.WitherGraceSeconds) * time.Second
}

// InterruptionGrace returns the mobile warning window as a time.Duration.
func (c SessionConfig) InterruptionGrace() time.Duration {
	return time.Duration(c.InterruptionGraceSeconds) * time.Second
}

// SuccessNotice returns the success notice window as a time.Duration.
func (c SessionConfig) SuccessNotice() time.Duration {
	return time.Duration(c.SuccessNoticeSeconds) * time.Second
}

// GetStateLabel returns a human-readable label for the session state.
func GetStateLabel(s SessionState) string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateWithering:
		return "Withering"
	default:
		return "Unknown"
	}
}
