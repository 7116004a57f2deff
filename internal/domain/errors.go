package domain

import "errors"

var (
	// ErrInvalidConfig is returned when session timing values are unusable.
	ErrInvalidConfig = errors.New("invalid session configuration")

	// ErrRunnerStopped is returned when a command is sent to a runner whose
	// event loop is not running.
	ErrRunnerStopped = errors.New("session runner is not running")

	// ErrUnknownVisibility is returned when a visibility value cannot be parsed.
	ErrUnknownVisibility = errors.New("unknown visibility")

	// ErrDuplicateAttempt is returned when an attempt id is recorded twice.
	ErrDuplicateAttempt = errors.New("attempt already recorded")
)
