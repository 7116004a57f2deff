package tui

import (
	"log/slog"

	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
)

const (
	eventBuffer      = 128
	visibilityBuffer = 16
)

// Bridge connects the session runner and the bubbletea program. It is the
// runner's visibility source, fed by terminal focus reports, and a session
// observer whose events are read by the model.
type Bridge struct {
	events         chan domain.SessionEvent
	visibility     chan domain.Visibility
	focusReporting bool
	logger         *slog.Logger
}

// Ensure Bridge implements the session ports.
var (
	_ ports.SessionObserver  = (*Bridge)(nil)
	_ ports.VisibilitySource = (*Bridge)(nil)
)

// NewBridge creates a bridge. Without focus reporting the terminal cannot
// tell when it is hidden, so no visibility is delivered.
func NewBridge(focusReporting bool, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		events:         make(chan domain.SessionEvent, eventBuffer),
		visibility:     make(chan domain.Visibility, visibilityBuffer),
		focusReporting: focusReporting,
		logger:         logger,
	}
}

// FocusReporting reports whether terminal focus events drive visibility.
func (b *Bridge) FocusReporting() bool {
	return b.focusReporting
}

// Visibility implements ports.VisibilitySource.
func (b *Bridge) Visibility() <-chan domain.Visibility {
	if !b.focusReporting {
		return nil
	}
	return b.visibility
}

// OnSessionEvent implements ports.SessionObserver. It never blocks the
// session loop; when the UI falls behind, the event is dropped and the next
// one carries a fresh snapshot.
func (b *Bridge) OnSessionEvent(event domain.SessionEvent) {
	select {
	case b.events <- event:
	default:
		b.logger.Debug("ui event dropped", "event", event.Kind)
	}
}

// Report queues a visibility change for the runner.
func (b *Bridge) Report(v domain.Visibility) {
	if !b.focusReporting {
		return
	}
	select {
	case b.visibility <- v:
	default:
		b.logger.Warn("visibility change dropped", "visibility", v)
	}
}

// Events returns the event stream read by the model.
func (b *Bridge) Events() <-chan domain.SessionEvent {
	return b.events
}
