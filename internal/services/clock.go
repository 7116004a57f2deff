package services

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/xvierd/forest-cli/internal/domain"
)

// TickInterval is the real-time cadence of session clock pulses.
const TickInterval = time.Second

// ClockSignal is the result of feeding one pulse into a SessionClock.
type ClockSignal int

const (
	// SignalNone means the pulse arrived while the clock was disarmed.
	SignalNone ClockSignal = iota
	// SignalTick means one second elapsed and time remains.
	SignalTick
	// SignalExhausted means the countdown reached zero. The clock is
	// already disarmed when this is returned.
	SignalExhausted
)

// SessionClock owns the countdown and its tick source. It knows nothing
// about session states or visibility. It is not safe for concurrent use;
// the owning event loop is its only caller.
type SessionClock struct {
	clock     clockwork.Clock
	duration  int
	remaining int
	ticker    clockwork.Ticker
}

// NewSessionClock creates a disarmed clock with the given duration.
func NewSessionClock(clock clockwork.Clock, durationSeconds int) *SessionClock {
	return &SessionClock{
		clock:     clock,
		duration:  durationSeconds,
		remaining: durationSeconds,
	}
}

// Arm resets the countdown to durationSeconds and starts the tick source.
// Arming an armed clock is a no-op and returns false.
func (c *SessionClock) Arm(durationSeconds int) bool {
	if c.ticker != nil {
		return false
	}
	c.duration = durationSeconds
	c.remaining = durationSeconds
	c.ticker = c.clock.NewTicker(TickInterval)
	return true
}

// Disarm stops the tick source without touching the remaining time.
func (c *SessionClock) Disarm() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
}

// Reset sets the remaining time back to the configured duration.
// It does not change whether the clock is armed.
func (c *SessionClock) Reset() {
	c.remaining = c.duration
}

// Armed reports whether the clock is emitting ticks.
func (c *SessionClock) Armed() bool {
	return c.ticker != nil
}

// C returns the pulse channel, or nil while disarmed. A nil channel never
// becomes ready, so a disarmed clock cannot deliver a stale pulse.
func (c *SessionClock) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.Chan()
}

// Pulse consumes one elapsed second. The pulse that brings the countdown
// to zero disarms the clock and reports SignalExhausted instead of a tick.
func (c *SessionClock) Pulse() ClockSignal {
	if c.ticker == nil {
		return SignalNone
	}
	if c.remaining > 1 {
		c.remaining--
		return SignalTick
	}
	c.Disarm()
	c.remaining = 0
	return SignalExhausted
}

// Remaining returns the seconds left in the countdown.
func (c *SessionClock) Remaining() int {
	return c.remaining
}

// Duration returns the configured countdown length in seconds.
func (c *SessionClock) Duration() int {
	return c.duration
}

// Elapsed returns the seconds counted down since the last reset.
func (c *SessionClock) Elapsed() int {
	return c.duration - c.remaining
}

// Progress returns the growth progress derived from the remaining time.
func (c *SessionClock) Progress() float64 {
	return domain.GrowthProgress(c.duration, c.remaining)
}
