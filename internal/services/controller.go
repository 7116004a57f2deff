package services

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
)

// gitDetectTimeout bounds the git lookup done when a tree is planted.
const gitDetectTimeout = 2 * time.Second

// FocusSessionController is the focus session state machine. It consumes
// clock pulses, interruptions and user confirmations, and appends a tree to
// the forest on every successful session.
//
// Every method returns true when the event caused a transition and false
// when it was ignored. Ignored events are stale events racing a prior
// transition, never caller errors. The controller is not safe for
// concurrent use; Runner serializes all calls onto one goroutine.
type FocusSessionController struct {
	config     domain.SessionConfig
	clock      clockwork.Clock
	session    *SessionClock
	forest     *domain.Forest
	trees      []domain.Tree
	platform   ports.PlatformClassifier
	git        ports.GitDetector
	workingDir string
	observers  []ports.SessionObserver
	logger     *slog.Logger

	state       domain.SessionState
	warning     bool
	celebrating bool
	startedAt   time.Time

	witherTimer  clockwork.Timer
	noticeTimer  clockwork.Timer
	warningTimer clockwork.Timer
}

// NewFocusSessionController creates an Idle controller with an empty forest.
// A nil platform classifier treats every client as desktop-class.
func NewFocusSessionController(config domain.SessionConfig, clock clockwork.Clock, platform ports.PlatformClassifier) *FocusSessionController {
	if platform == nil {
		platform = ports.StaticPlatform(false)
	}
	return &FocusSessionController{
		config:   config,
		clock:    clock,
		session:  NewSessionClock(clock, config.DurationSeconds),
		forest:   domain.NewForest(),
		platform: platform,
		logger:   slog.Default(),
		state:    domain.StateIdle,
	}
}

// SetLogger replaces the controller logger.
func (c *FocusSessionController) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetGitContext enables recording git context on planted trees.
func (c *FocusSessionController) SetGitContext(detector ports.GitDetector, workingDir string) {
	c.git = detector
	c.workingDir = workingDir
}

// AddObserver registers an observer for session events.
func (c *FocusSessionController) AddObserver(observer ports.SessionObserver) {
	c.observers = append(c.observers, observer)
}

// Start begins a session. Start is only valid from Idle.
func (c *FocusSessionController) Start() bool {
	if c.state != domain.StateIdle {
		c.logger.Debug("start rejected", "state", c.state)
		return false
	}

	c.stopNotice()
	c.session.Reset()
	c.session.Arm(c.config.DurationSeconds)
	c.state = domain.StateRunning
	c.startedAt = c.clock.Now()

	c.logger.Debug("session started", "duration_seconds", c.config.DurationSeconds)
	c.emit(domain.SessionEvent{Kind: domain.EventStarted, StartedAt: c.startedAt})
	return true
}

// Pulse feeds one elapsed second from the session clock.
func (c *FocusSessionController) Pulse() bool {
	if c.state != domain.StateRunning {
		c.logger.Debug("stale tick ignored", "state", c.state)
		return false
	}

	switch c.session.Pulse() {
	case SignalTick:
		c.emit(domain.SessionEvent{Kind: domain.EventTicked})
		return true
	case SignalExhausted:
		c.succeed()
		return true
	default:
		return false
	}
}

// Interrupt handles the application being hidden while a session runs.
// Desktop-class clients wither immediately; mobile-class clients get a
// warning that must be resolved with ConfirmContinue or ConfirmLeave.
func (c *FocusSessionController) Interrupt() bool {
	if c.state != domain.StateRunning {
		c.logger.Debug("interruption ignored", "state", c.state)
		return false
	}
	if c.warning {
		return false
	}

	if c.platform.IsMobileClass() {
		c.warning = true
		if grace := c.config.InterruptionGrace(); grace > 0 {
			c.warningTimer = c.clock.NewTimer(grace)
		}
		c.logger.Debug("leave warning raised", "remaining_seconds", c.session.Remaining())
		c.emit(domain.SessionEvent{Kind: domain.EventWarningRaised})
		return true
	}

	c.wither()
	return true
}

// ConfirmContinue dismisses a pending warning and keeps the session running.
func (c *FocusSessionController) ConfirmContinue() bool {
	if c.state != domain.StateRunning || !c.warning {
		return false
	}
	c.resolveWarning(domain.ResolutionContinued)
	return true
}

// ConfirmLeave accepts a pending warning and withers the session, exactly
// like a desktop-class interruption.
func (c *FocusSessionController) ConfirmLeave() bool {
	if c.state != domain.StateRunning || !c.warning {
		return false
	}
	c.resolveWarning(domain.ResolutionLeft)
	c.wither()
	return true
}

// WarningExpired resolves an unanswered warning as a leave once the
// interruption grace window has elapsed.
func (c *FocusSessionController) WarningExpired() bool {
	c.warningTimer = nil
	if c.state != domain.StateRunning || !c.warning {
		return false
	}
	c.resolveWarning(domain.ResolutionExpired)
	c.wither()
	return true
}

// WitherElapsed ends the withering window and returns to Idle.
func (c *FocusSessionController) WitherElapsed() bool {
	c.witherTimer = nil
	if c.state != domain.StateWithering {
		return false
	}
	c.enterIdle()
	c.logger.Debug("wither cleared")
	c.emit(domain.SessionEvent{Kind: domain.EventWitherCleared})
	return true
}

// NoticeElapsed hides the success notice.
func (c *FocusSessionController) NoticeElapsed() bool {
	c.noticeTimer = nil
	if !c.celebrating {
		return false
	}
	c.celebrating = false
	c.emit(domain.SessionEvent{Kind: domain.EventCelebrationEnded})
	return true
}

// Shutdown disarms the clock and stops every pending timer. The forest and
// state are left untouched.
func (c *FocusSessionController) Shutdown() {
	c.session.Disarm()
	c.stopWarningTimer()
	c.stopNotice()
	if c.witherTimer != nil {
		c.witherTimer.Stop()
		c.witherTimer = nil
	}
}

// TickC returns the clock pulse channel, nil unless Running.
func (c *FocusSessionController) TickC() <-chan time.Time {
	return c.session.C()
}

// WitherC returns the wither grace channel, nil unless Withering.
func (c *FocusSessionController) WitherC() <-chan time.Time {
	return timerChan(c.witherTimer)
}

// NoticeC returns the success notice channel, nil unless celebrating.
func (c *FocusSessionController) NoticeC() <-chan time.Time {
	return timerChan(c.noticeTimer)
}

// WarningC returns the warning window channel, nil unless a bounded
// warning is pending.
func (c *FocusSessionController) WarningC() <-chan time.Time {
	return timerChan(c.warningTimer)
}

// State returns the current session state.
func (c *FocusSessionController) State() domain.SessionState {
	return c.state
}

// RemainingSeconds returns the seconds left in the current countdown.
func (c *FocusSessionController) RemainingSeconds() int {
	return c.session.Remaining()
}

// Progress returns the growth progress in [0,100].
func (c *FocusSessionController) Progress() float64 {
	return c.session.Progress()
}

// Warned reports whether a leave warning is pending.
func (c *FocusSessionController) Warned() bool {
	return c.warning
}

// ForestSize returns the number of trees grown in this process.
func (c *FocusSessionController) ForestSize() int {
	return c.forest.Size()
}

// Forest returns a read-only view over the planted trees.
func (c *FocusSessionController) Forest() iter.Seq[domain.Tree] {
	return c.forest.All()
}

// Snapshot captures the observable state. Snapshots share one copy of the
// planted trees, refreshed only when a tree is planted; callers must not
// modify it.
func (c *FocusSessionController) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		State:            c.state,
		RemainingSeconds: c.session.Remaining(),
		DurationSeconds:  c.session.Duration(),
		Progress:         c.session.Progress(),
		Warning:          c.warning,
		Celebrating:      c.celebrating,
		Trees:            c.trees,
	}
}

func (c *FocusSessionController) succeed() {
	focused := c.session.Elapsed()
	tree := domain.NewTree(c.clock.Now())
	c.tagTree(&tree)
	c.forest.Append(tree)
	c.trees = c.forest.Trees()

	if c.warning {
		c.resolveWarning(domain.ResolutionCompleted)
	}
	c.enterIdle()

	if notice := c.config.SuccessNotice(); notice > 0 {
		c.celebrating = true
		c.noticeTimer = c.clock.NewTimer(notice)
	}

	c.logger.Debug("tree planted", "tree_id", tree.ID, "forest_size", c.forest.Size())
	c.emit(domain.SessionEvent{
		Kind:           domain.EventSucceeded,
		Tree:           &tree,
		StartedAt:      c.startedAt,
		FocusedSeconds: focused,
	})
}

func (c *FocusSessionController) wither() {
	focused := c.session.Elapsed()
	c.session.Disarm()
	c.session.Reset()
	c.state = domain.StateWithering

	c.logger.Debug("session withered", "focused_seconds", focused)
	c.emit(domain.SessionEvent{
		Kind:           domain.EventFailed,
		StartedAt:      c.startedAt,
		FocusedSeconds: focused,
	})

	if grace := c.config.WitherGrace(); grace > 0 {
		c.witherTimer = c.clock.NewTimer(grace)
		return
	}
	c.WitherElapsed()
}

func (c *FocusSessionController) resolveWarning(resolution domain.WarningResolution) {
	c.warning = false
	c.stopWarningTimer()
	c.logger.Debug("leave warning resolved", "resolution", resolution)
	c.emit(domain.SessionEvent{Kind: domain.EventWarningResolved, Resolution: resolution})
}

func (c *FocusSessionController) enterIdle() {
	c.session.Disarm()
	c.session.Reset()
	c.state = domain.StateIdle
}

func (c *FocusSessionController) tagTree(tree *domain.Tree) {
	if c.git == nil || !c.git.IsAvailable() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), gitDetectTimeout)
	defer cancel()
	info, err := c.git.Detect(ctx, c.workingDir)
	if err != nil || info == nil {
		c.logger.Debug("git context unavailable", "error", err)
		return
	}
	tree.SetGitContext(info.Branch, info.Repository)
}

func (c *FocusSessionController) stopNotice() {
	c.celebrating = false
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
		c.noticeTimer = nil
	}
}

func (c *FocusSessionController) stopWarningTimer() {
	if c.warningTimer != nil {
		c.warningTimer.Stop()
		c.warningTimer = nil
	}
}

func (c *FocusSessionController) emit(event domain.SessionEvent) {
	event.At = c.clock.Now()
	event.Snapshot = c.Snapshot()
	for _, o := range c.observers {
		o.OnSessionEvent(event)
	}
}

func timerChan(t clockwork.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.Chan()
}
