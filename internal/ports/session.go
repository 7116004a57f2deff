package ports

import (
	"context"

	"github.com/xvierd/forest-cli/internal/domain"
)

// PlatformClassifier tells the session core whether the host is a
// mobile-class client. It is queried once per interruption.
// This is a driven port (implemented by adapters).
type PlatformClassifier interface {
	IsMobileClass() bool
}

// VisibilitySource delivers visibility transitions of the application.
// A source that cannot observe the host returns a nil channel.
// This is a driven port (implemented by adapters).
type VisibilitySource interface {
	Visibility() <-chan domain.Visibility
}

// SessionObserver receives session events after each transition.
// Observers run on the session event loop and must not call back into
// the runner synchronously.
// This is a driving port (called by the session core).
type SessionObserver interface {
	OnSessionEvent(event domain.SessionEvent)
}

// WakeLock keeps the screen awake while a session is running.
// This is a driven port (implemented by adapters).
type WakeLock interface {
	// Acquire requests the screen wake lock.
	Acquire(ctx context.Context) error

	// Release drops the wake lock if held.
	Release(ctx context.Context) error
}

// ObserverFunc adapts a function to the SessionObserver interface.
type ObserverFunc func(event domain.SessionEvent)

// OnSessionEvent calls f(event).
func (f ObserverFunc) OnSessionEvent(event domain.SessionEvent) {
	f(event)
}

// StaticPlatform is a PlatformClassifier with a fixed answer.
type StaticPlatform bool

// IsMobileClass implements PlatformClassifier.
func (p StaticPlatform) IsMobileClass() bool {
	return bool(p)
}
