package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/forest-cli/internal/domain"
)

type fakeWakeLock struct {
	mu         sync.Mutex
	acquired   int
	released   int
	acquireErr error
	block      chan struct{}
}

func (f *fakeWakeLock) Acquire(ctx context.Context) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acquireErr != nil {
		return f.acquireErr
	}
	f.acquired++
	return nil
}

func (f *fakeWakeLock) Release(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return nil
}

func (f *fakeWakeLock) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acquired, f.released
}

func newTestGuard(t *testing.T, lock *fakeWakeLock) *WakeLockGuard {
	t.Helper()
	guard := NewWakeLockGuard(lock, nil)
	t.Cleanup(guard.Close)
	return guard
}

func waitHeld(t *testing.T, guard *WakeLockGuard, want bool) {
	t.Helper()
	require.Eventually(t, func() bool { return guard.Held() == want }, time.Second, time.Millisecond)
}

func TestWakeLockGuard_HeldWhileRunning(t *testing.T) {
	lock := &fakeWakeLock{}
	ctrl, _, _ := newTestController(t, testConfig(3), false)
	guard := newTestGuard(t, lock)
	ctrl.AddObserver(guard)

	ctrl.Start()
	waitHeld(t, guard, true)
	pulse(ctrl, 2)

	ctrl.Pulse()
	waitHeld(t, guard, false)
	acquired, released := lock.counts()
	assert.Equal(t, 1, acquired, "ticks must not reacquire")
	assert.Equal(t, 1, released)

	ctrl.Start()
	waitHeld(t, guard, true)
	ctrl.Interrupt()
	waitHeld(t, guard, false)
	acquired, released = lock.counts()
	assert.Equal(t, 2, acquired)
	assert.Equal(t, 2, released)
}

func TestWakeLockGuard_AcquireFailureIsIgnored(t *testing.T) {
	lock := &fakeWakeLock{acquireErr: errors.New("no session bus")}
	ctrl, _, _ := newTestController(t, testConfig(3), false)
	guard := newTestGuard(t, lock)
	ctrl.AddObserver(guard)

	require.True(t, ctrl.Start())
	assert.Equal(t, domain.StateRunning, ctrl.State())

	ctrl.Interrupt()
	guard.Close()
	assert.False(t, guard.Held())
	_, released := lock.counts()
	assert.Equal(t, 0, released, "nothing to release when acquire failed")
}

func TestWakeLockGuard_SlowLockDoesNotBlockSession(t *testing.T) {
	lock := &fakeWakeLock{block: make(chan struct{})}
	ctrl, _, _ := newTestController(t, testConfig(5), false)
	guard := newTestGuard(t, lock)
	ctrl.AddObserver(guard)
	unblock := sync.OnceFunc(func() { close(lock.block) })
	t.Cleanup(unblock)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ctrl.Start()
		pulse(ctrl, 2)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("session events blocked on the wake lock")
	}
	assert.Equal(t, 3, ctrl.RemainingSeconds())
	assert.False(t, guard.Held())

	unblock()
	waitHeld(t, guard, true)
}

func TestWakeLockGuard_CloseReleases(t *testing.T) {
	lock := &fakeWakeLock{}
	ctrl, _, _ := newTestController(t, testConfig(5), false)
	guard := newTestGuard(t, lock)
	ctrl.AddObserver(guard)

	ctrl.Start()
	waitHeld(t, guard, true)

	guard.Close()
	assert.False(t, guard.Held())
	_, released := lock.counts()
	assert.Equal(t, 1, released)
}

type fakeJournal struct {
	attempts []*domain.Attempt
	err      error
}

func (f *fakeJournal) Record(ctx context.Context, attempt *domain.Attempt) error {
	if f.err != nil {
		return f.err
	}
	f.attempts = append(f.attempts, attempt)
	return nil
}

func (f *fakeJournal) Recent(ctx context.Context, limit int) ([]*domain.Attempt, error) {
	if len(f.attempts) > limit {
		return f.attempts[:limit], nil
	}
	return f.attempts, nil
}

func (f *fakeJournal) Summary(ctx context.Context) (*domain.JournalSummary, error) {
	s := &domain.JournalSummary{}
	for _, a := range f.attempts {
		if a.Outcome == domain.OutcomeGrown {
			s.Grown++
		} else {
			s.Withered++
		}
		s.FocusedSeconds += a.FocusedSeconds
	}
	return s, nil
}

func (f *fakeJournal) Close() error { return nil }

func TestJournalService_RecordsOutcomes(t *testing.T) {
	journal := &fakeJournal{}
	svc := NewJournalService(journal)
	ctrl, _, _ := newTestController(t, testConfig(4), false)
	ctrl.AddObserver(svc)

	ctrl.Start()
	pulse(ctrl, 4)

	ctrl.Start()
	pulse(ctrl, 1)
	ctrl.Interrupt()

	require.Len(t, journal.attempts, 2)

	grown := journal.attempts[0]
	assert.Equal(t, domain.OutcomeGrown, grown.Outcome)
	assert.Equal(t, 4, grown.FocusedSeconds)
	assert.Equal(t, ctrl.Snapshot().Trees[0].ID, grown.TreeID)

	withered := journal.attempts[1]
	assert.Equal(t, domain.OutcomeWithered, withered.Outcome)
	assert.Equal(t, 1, withered.FocusedSeconds)
	assert.Empty(t, withered.TreeID)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Grown)
	assert.Equal(t, 1, summary.Withered)
	assert.Equal(t, 0.5, summary.SuccessRate())

	recent, err := svc.GetRecentAttempts(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestJournalService_RecordFailureDoesNotPanic(t *testing.T) {
	svc := NewJournalService(&fakeJournal{err: errors.New("disk full")})
	ctrl, _, _ := newTestController(t, testConfig(1), false)
	ctrl.AddObserver(svc)

	ctrl.Start()
	ctrl.Pulse()
	assert.Equal(t, 1, ctrl.ForestSize())
}
