package services

import (
	"context"
	"log/slog"

	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
)

// command is a unit of work executed on the runner goroutine.
type command func(c *FocusSessionController)

// Runner is the single-threaded event queue in front of a
// FocusSessionController. Clock pulses, grace timers, visibility edges and
// caller commands are all applied on the goroutine executing Run, one at a
// time and each to completion.
//
// Timers that have already fired are drained before any command or
// visibility edge is applied. A pulse that exhausts the countdown therefore
// wins over an interruption delivered in the same turn.
type Runner struct {
	ctrl       *FocusSessionController
	visibility ports.VisibilitySource
	logger     *slog.Logger

	commands chan command
	done     chan struct{}

	lastVisibility domain.Visibility
}

// NewRunner creates a runner for the controller. A nil visibility source
// means interruptions are never observed and sessions can only end by
// running out of time.
func NewRunner(ctrl *FocusSessionController, visibility ports.VisibilitySource) *Runner {
	return &Runner{
		ctrl:           ctrl,
		visibility:     visibility,
		logger:         slog.Default(),
		commands:       make(chan command),
		done:           make(chan struct{}),
		lastVisibility: domain.VisibilityVisible,
	}
}

// SetLogger replaces the runner logger.
func (r *Runner) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Run processes events until ctx is cancelled. It must be called once.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)
	defer r.ctrl.Shutdown()

	var visibility <-chan domain.Visibility
	if r.visibility != nil {
		visibility = r.visibility.Visibility()
	}
	if visibility == nil {
		r.logger.Info("visibility unavailable, sessions end only when time runs out")
	}

	for {
		r.drainTimers()

		select {
		case <-ctx.Done():
			return nil
		case <-r.ctrl.TickC():
			r.ctrl.Pulse()
		case <-r.ctrl.WitherC():
			r.ctrl.WitherElapsed()
		case <-r.ctrl.NoticeC():
			r.ctrl.NoticeElapsed()
		case <-r.ctrl.WarningC():
			r.ctrl.WarningExpired()
		case v, ok := <-visibility:
			if !ok {
				r.logger.Warn("visibility source closed")
				visibility = nil
				continue
			}
			r.drainTimers()
			r.applyVisibility(v)
		case cmd := <-r.commands:
			r.drainTimers()
			cmd(r.ctrl)
		}
	}
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Start begins a session. It reports false when a session is not Idle.
func (r *Runner) Start(ctx context.Context) (bool, error) {
	var applied bool
	err := r.do(ctx, func(c *FocusSessionController) { applied = c.Start() })
	return applied, err
}

// ConfirmContinue dismisses a pending leave warning.
func (r *Runner) ConfirmContinue(ctx context.Context) (bool, error) {
	var applied bool
	err := r.do(ctx, func(c *FocusSessionController) { applied = c.ConfirmContinue() })
	return applied, err
}

// ConfirmLeave accepts a pending leave warning.
func (r *Runner) ConfirmLeave(ctx context.Context) (bool, error) {
	var applied bool
	err := r.do(ctx, func(c *FocusSessionController) { applied = c.ConfirmLeave() })
	return applied, err
}

// ReportVisibility feeds a visibility transition. Only the edge from
// visible to hidden interrupts a running session.
func (r *Runner) ReportVisibility(ctx context.Context, v domain.Visibility) error {
	return r.do(ctx, func(*FocusSessionController) { r.applyVisibility(v) })
}

// Snapshot returns the current session state.
func (r *Runner) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := r.do(ctx, func(c *FocusSessionController) { snap = c.Snapshot() })
	return snap, err
}

// Ensure Runner implements ports.SessionProvider.
var _ ports.SessionProvider = (*Runner)(nil)

// do runs fn on the event loop and waits for it to finish.
func (r *Runner) do(ctx context.Context, fn command) error {
	finished := make(chan struct{})
	wrapped := func(c *FocusSessionController) {
		defer close(finished)
		fn(c)
	}

	select {
	case r.commands <- wrapped:
	case <-r.done:
		return domain.ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-r.done:
		select {
		case <-finished:
			return nil
		default:
			return domain.ErrRunnerStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) applyVisibility(v domain.Visibility) {
	if v == r.lastVisibility {
		return
	}
	r.lastVisibility = v
	r.logger.Debug("visibility changed", "visibility", v)
	if v == domain.VisibilityHidden {
		r.ctrl.Interrupt()
	}
}

// drainTimers applies every timer event that is already pending.
func (r *Runner) drainTimers() {
	for {
		select {
		case <-r.ctrl.TickC():
			r.ctrl.Pulse()
		case <-r.ctrl.WitherC():
			r.ctrl.WitherElapsed()
		case <-r.ctrl.NoticeC():
			r.ctrl.NoticeElapsed()
		case <-r.ctrl.WarningC():
			r.ctrl.WarningExpired()
		default:
			return
		}
	}
}
