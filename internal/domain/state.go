package domain

import (
	"fmt"
	"strings"
	"time"
)

// Visibility is the application visibility reported by the host.
type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// ParseVisibility converts a string into a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case VisibilityVisible:
		return VisibilityVisible, nil
	case VisibilityHidden:
		return VisibilityHidden, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVisibility, s)
	}
}

// Snapshot captures the observable session state at a point in time.
type Snapshot struct {
	State            SessionState
	RemainingSeconds int
	DurationSeconds  int
	Progress         float64
	Warning          bool
	Celebrating      bool
	Trees            []Tree
}

// ForestSize returns the number of trees in the snapshot.
func (s Snapshot) ForestSize() int {
	return len(s.Trees)
}

// IsRunning returns true while a session is counting down.
func (s Snapshot) IsRunning() bool {
	return s.State == StateRunning
}

// IsWithering returns true while the failure visual is held.
func (s Snapshot) IsWithering() bool {
	return s.State == StateWithering
}

// Stage returns the growth stage of the tree currently on display.
func (s Snapshot) Stage() GrowthStage {
	return StageFor(s.Progress, s.IsRunning())
}

// Remaining returns the remaining time as a time.Duration.
func (s Snapshot) Remaining() time.Duration {
	return time.Duration(s.RemainingSeconds) * time.Second
}

// EventKind identifies a session event published to observers.
type EventKind string

const (
	EventStarted          EventKind = "started"
	EventTicked           EventKind = "ticked"
	EventSucceeded        EventKind = "succeeded"
	EventFailed           EventKind = "failed"
	EventWarningRaised    EventKind = "warning_raised"
	EventWarningResolved  EventKind = "warning_resolved"
	EventWitherCleared    EventKind = "wither_cleared"
	EventCelebrationEnded EventKind = "celebration_ended"
)

// WarningResolution records how a mobile-class warning ended.
type WarningResolution string

const (
	ResolutionContinued WarningResolution = "continued"
	ResolutionLeft      WarningResolution = "left"
	ResolutionExpired   WarningResolution = "expired"
	ResolutionCompleted WarningResolution = "completed"
)

// SessionEvent is a notice emitted by the session machine after a transition.
type SessionEvent struct {
	Kind       EventKind
	At         time.Time
	Snapshot   Snapshot
	Tree       *Tree
	Resolution WarningResolution

	// StartedAt and FocusedSeconds describe the session the event belongs
	// to. They are set on started, succeeded and failed events.
	StartedAt      time.Time
	FocusedSeconds int
}
