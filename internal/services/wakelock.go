package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
)

const wakeLockTimeout = 2 * time.Second

// WakeLockGuard holds the screen wake lock while a session is running and
// releases it on every transition out of Running. Failures are logged and
// never affect the session.
//
// Acquire and release run on the guard's own goroutine, so a slow lock
// provider never stalls the session event loop. Only the latest wanted
// state is applied.
type WakeLockGuard struct {
	lock   ports.WakeLock
	logger *slog.Logger

	mu   sync.Mutex
	want bool
	held bool

	kick      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewWakeLockGuard creates a guard around the given wake lock. Close must
// be called to release the lock and stop the guard.
func NewWakeLockGuard(lock ports.WakeLock, logger *slog.Logger) *WakeLockGuard {
	if logger == nil {
		logger = slog.Default()
	}
	g := &WakeLockGuard{
		lock:   lock,
		logger: logger,
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go g.run()
	return g
}

// OnSessionEvent implements ports.SessionObserver. It never blocks.
func (g *WakeLockGuard) OnSessionEvent(event domain.SessionEvent) {
	running := event.Snapshot.IsRunning()

	g.mu.Lock()
	changed := g.want != running
	g.want = running
	g.mu.Unlock()

	if !changed {
		return
	}
	select {
	case g.kick <- struct{}{}:
	default:
	}
}

// Held reports whether the guard currently holds the wake lock.
func (g *WakeLockGuard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

// Close releases a held lock and stops the guard.
func (g *WakeLockGuard) Close() {
	g.closeOnce.Do(func() { close(g.stop) })
	<-g.done
}

func (g *WakeLockGuard) run() {
	defer close(g.done)
	for {
		select {
		case <-g.stop:
			g.mu.Lock()
			g.want = false
			g.mu.Unlock()
			g.apply()
			return
		case <-g.kick:
			g.apply()
		}
	}
}

// apply moves the lock to the latest wanted state.
func (g *WakeLockGuard) apply() {
	g.mu.Lock()
	want, held := g.want, g.held
	g.mu.Unlock()
	if want == held {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wakeLockTimeout)
	defer cancel()

	if want {
		if err := g.lock.Acquire(ctx); err != nil {
			g.logger.Warn("failed to acquire wake lock", "error", err)
			return
		}
	} else if err := g.lock.Release(ctx); err != nil {
		g.logger.Warn("failed to release wake lock", "error", err)
	}

	g.mu.Lock()
	g.held = want
	g.mu.Unlock()
}

// Ensure WakeLockGuard implements ports.SessionObserver.
var _ ports.SessionObserver = (*WakeLockGuard)(nil)
