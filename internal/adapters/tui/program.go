package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
)

// FocusReportingAvailable reports whether the terminal on in can deliver
// focus and blur events.
func FocusReportingAvailable(in *os.File) bool {
	if in == nil || !term.IsTerminal(in.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// Run starts the full-screen interface and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	if m.bridge.FocusReporting() {
		opts = append(opts, tea.WithReportFocus())
	}

	if _, err := tea.NewProgram(m, opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
