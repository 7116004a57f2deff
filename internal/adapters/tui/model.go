// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
)

// eventMsg carries a session event published by the runner.
type eventMsg domain.SessionEvent

// snapshotMsg carries the state fetched when the UI starts.
type snapshotMsg domain.Snapshot

// commandDoneMsg reports the outcome of a runner command.
type commandDoneMsg struct {
	err error
}

// Model represents the TUI state.
type Model struct {
	ctx     context.Context
	session ports.SessionProvider
	bridge  *Bridge

	snap     domain.Snapshot
	synced   bool
	progress progress.Model
	width    int
	height   int

	showForest bool
	lastErr    error
}

// NewModel creates a new TUI model driving session through the runner.
func NewModel(ctx context.Context, session ports.SessionProvider, bridge *Bridge) Model {
	return Model{
		ctx:      ctx,
		session:  session,
		bridge:   bridge,
		snap:     domain.Snapshot{State: domain.StateIdle},
		progress: progress.New(progress.WithGradient(colorIdle, colorActive), progress.WithoutPercentage()),
	}
}

// Init fetches the initial state and starts listening for session events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchSnapshot(), waitForEvent(m.bridge.Events()))
}

func (m Model) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.session.Snapshot(m.ctx)
		if err != nil {
			return commandDoneMsg{err: err}
		}
		return snapshotMsg(snap)
	}
}

// waitForEvent blocks on the next session event.
func waitForEvent(events <-chan domain.SessionEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(event)
	}
}

// sessionCmd runs a runner command off the UI goroutine.
func (m Model) sessionCmd(fn func(context.Context) (bool, error)) tea.Cmd {
	return func() tea.Msg {
		_, err := fn(m.ctx)
		return commandDoneMsg{err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.FocusMsg:
		m.bridge.Report(domain.VisibilityVisible)

	case tea.BlurMsg:
		m.bridge.Report(domain.VisibilityHidden)

	case eventMsg:
		m.snap = msg.Snapshot
		m.synced = true
		return m, waitForEvent(m.bridge.Events())

	case snapshotMsg:
		// Events already carry newer state.
		if !m.synced {
			m.snap = domain.Snapshot(msg)
			m.synced = true
		}

	case commandDoneMsg:
		m.lastErr = msg.err
		if errors.Is(msg.err, domain.ErrRunnerStopped) {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-4, 48)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		m.showForest = false
	case "f":
		m.showForest = !m.showForest
	case "s", "enter":
		if m.showForest || m.snap.State != domain.StateIdle {
			return m, nil
		}
		return m, m.sessionCmd(m.session.Start)
	case "c":
		if m.snap.Warning {
			return m, m.sessionCmd(m.session.ConfirmContinue)
		}
	case "l":
		if m.snap.Warning {
			return m, m.sessionCmd(m.session.ConfirmLeave)
		}
	}
	return m, nil
}
