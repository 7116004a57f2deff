package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
)

// chanVisibility is a VisibilitySource backed by a channel.
type chanVisibility chan domain.Visibility

func (c chanVisibility) Visibility() <-chan domain.Visibility {
	return c
}

func startRunner(t *testing.T, cfg domain.SessionConfig, mobile bool, vis ports.VisibilitySource) (*Runner, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	ctrl := NewFocusSessionController(cfg, clock, ports.StaticPlatform(mobile))
	ctrl.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := NewRunner(ctrl, vis)
	r.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = r.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-r.Done()
	})
	return r, clock
}

func snapshot(t *testing.T, r *Runner) domain.Snapshot {
	t.Helper()
	snap, err := r.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func TestRunner_TicksUntilSuccess(t *testing.T) {
	r, clock := startRunner(t, testConfig(3), false, nil)
	ctx := context.Background()

	started, err := r.Start(ctx)
	require.NoError(t, err)
	require.True(t, started)

	clock.Advance(time.Second)
	assert.Equal(t, 2, snapshot(t, r).RemainingSeconds)

	clock.Advance(time.Second)
	assert.Equal(t, 1, snapshot(t, r).RemainingSeconds)

	clock.Advance(time.Second)
	snap := snapshot(t, r)
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, 3, snap.RemainingSeconds)
	assert.Equal(t, 1, snap.ForestSize())
	assert.True(t, snap.Celebrating)

	clock.Advance(3 * time.Second)
	assert.False(t, snapshot(t, r).Celebrating)
}

func TestRunner_ExhaustedWinsOverSameTurnInterruption(t *testing.T) {
	r, clock := startRunner(t, testConfig(1), false, nil)
	ctx := context.Background()

	_, err := r.Start(ctx)
	require.NoError(t, err)

	clock.Advance(time.Second)
	require.NoError(t, r.ReportVisibility(ctx, domain.VisibilityHidden))

	snap := snapshot(t, r)
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, 1, snap.ForestSize())
}

func TestRunner_DesktopInterruptionWithers(t *testing.T) {
	vis := make(chanVisibility)
	r, clock := startRunner(t, testConfig(1500), false, vis)
	ctx := context.Background()

	_, err := r.Start(ctx)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		clock.Advance(time.Second)
		snapshot(t, r)
	}
	assert.Equal(t, 1490, snapshot(t, r).RemainingSeconds)

	vis <- domain.VisibilityHidden
	snap := snapshot(t, r)
	assert.Equal(t, domain.StateWithering, snap.State)
	assert.Equal(t, 0, snap.ForestSize())
	assert.Equal(t, 1500, snap.RemainingSeconds)

	clock.Advance(time.Second)
	assert.Equal(t, domain.StateWithering, snapshot(t, r).State, "no tick may fire while withering")

	clock.Advance(2 * time.Second)
	snap = snapshot(t, r)
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, 1500, snap.RemainingSeconds)
}

func TestRunner_OnlyHiddenEdgeInterrupts(t *testing.T) {
	r, _ := startRunner(t, testConfig(60), true, nil)
	ctx := context.Background()

	require.NoError(t, r.ReportVisibility(ctx, domain.VisibilityHidden))
	require.NoError(t, r.ReportVisibility(ctx, domain.VisibilityVisible))

	_, err := r.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, r.ReportVisibility(ctx, domain.VisibilityHidden))
	assert.True(t, snapshot(t, r).Warning)

	ok, err := r.ConfirmContinue(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.ReportVisibility(ctx, domain.VisibilityHidden))
	assert.False(t, snapshot(t, r).Warning, "hidden without a visible edge is not a new interruption")

	require.NoError(t, r.ReportVisibility(ctx, domain.VisibilityVisible))
	require.NoError(t, r.ReportVisibility(ctx, domain.VisibilityHidden))
	assert.True(t, snapshot(t, r).Warning)

	ok, err = r.ConfirmLeave(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StateWithering, snapshot(t, r).State)
}

func TestRunner_WarningWindowExpires(t *testing.T) {
	cfg := testConfig(60)
	cfg.InterruptionGraceSeconds = 5
	r, clock := startRunner(t, cfg, true, nil)
	ctx := context.Background()

	_, err := r.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, r.ReportVisibility(ctx, domain.VisibilityHidden))
	require.True(t, snapshot(t, r).Warning)

	clock.Advance(5 * time.Second)
	snap := snapshot(t, r)
	assert.Equal(t, domain.StateWithering, snap.State)
	assert.False(t, snap.Warning)
}

func TestRunner_StartRejectedWhileRunning(t *testing.T) {
	r, _ := startRunner(t, testConfig(60), false, nil)
	ctx := context.Background()

	ok, err := r.Start(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.Start(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunner_StoppedReturnsError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctrl := NewFocusSessionController(testConfig(10), clock, nil)
	r := NewRunner(ctrl, nil)
	r.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = r.Run(ctx) }()

	_, err := r.Start(context.Background())
	require.NoError(t, err)

	cancel()
	<-r.Done()

	_, err = r.Snapshot(context.Background())
	assert.True(t, errors.Is(err, domain.ErrRunnerStopped))
	assert.Nil(t, ctrl.TickC(), "shutdown must disarm the clock")
}

func TestRunner_CancelledContext(t *testing.T) {
	r := NewRunner(NewFocusSessionController(testConfig(10), clockwork.NewFakeClock(), nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_ClosedVisibilitySource(t *testing.T) {
	vis := make(chanVisibility)
	r, clock := startRunner(t, testConfig(2), false, vis)
	ctx := context.Background()

	close(vis)
	_, err := r.Start(ctx)
	require.NoError(t, err)

	clock.Advance(time.Second)
	snapshot(t, r)
	clock.Advance(time.Second)
	assert.Equal(t, 1, snapshot(t, r).ForestSize())
}
