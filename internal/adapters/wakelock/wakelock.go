// Package wakelock keeps the screen awake while a focus session runs.
package wakelock

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/xvierd/forest-cli/internal/ports"
)

const (
	screenSaverDest = "org.freedesktop.ScreenSaver"
	screenSaverPath = dbus.ObjectPath("/org/freedesktop/ScreenSaver")
	inhibitMethod   = screenSaverDest + ".Inhibit"
	unInhibitMethod = screenSaverDest + ".UnInhibit"
	applicationName = "forest"
	inhibitReason   = "Focus session in progress"
)

// caller is the subset of dbus.BusObject the lock needs.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// ScreenSaver implements ports.WakeLock with the freedesktop ScreenSaver
// inhibit interface on the session bus.
type ScreenSaver struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	obj    caller
	cookie uint32
	held   bool
}

// Ensure ScreenSaver implements ports.WakeLock.
var _ ports.WakeLock = (*ScreenSaver)(nil)

// NewScreenSaver connects to the session bus.
func NewScreenSaver() (*ScreenSaver, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &ScreenSaver{
		conn: conn,
		obj:  conn.Object(screenSaverDest, screenSaverPath),
	}, nil
}

func newWithCaller(obj caller) *ScreenSaver {
	return &ScreenSaver{obj: obj}
}

// Acquire inhibits the screensaver. Acquiring a held lock is a no-op.
func (s *ScreenSaver) Acquire(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held {
		return nil
	}

	var cookie uint32
	call := s.obj.CallWithContext(ctx, inhibitMethod, 0, applicationName, inhibitReason)
	if err := call.Store(&cookie); err != nil {
		return fmt.Errorf("failed to inhibit screensaver: %w", err)
	}

	s.cookie = cookie
	s.held = true
	return nil
}

// Release drops the inhibit cookie if one is held.
func (s *ScreenSaver) Release(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.held {
		return nil
	}

	call := s.obj.CallWithContext(ctx, unInhibitMethod, 0, s.cookie)
	s.held = false
	s.cookie = 0
	if call.Err != nil {
		return fmt.Errorf("failed to release screensaver inhibit: %w", call.Err)
	}
	return nil
}

// Close releases the lock and closes the bus connection.
func (s *ScreenSaver) Close() error {
	_ = s.Release(context.Background())
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Noop is a WakeLock for hosts without a screensaver service.
type Noop struct{}

// Ensure Noop implements ports.WakeLock.
var _ ports.WakeLock = Noop{}

// Acquire does nothing.
func (Noop) Acquire(context.Context) error { return nil }

// Release does nothing.
func (Noop) Release(context.Context) error { return nil }
