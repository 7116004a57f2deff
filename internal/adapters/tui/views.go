package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/forest-cli/internal/domain"
)

const forestColumns = 3

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorTitle)).MarginBottom(1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorHelp))
	buttonStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 2).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#16A34A"))
	disabledBtn  = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("#86EFAC")).Background(lipgloss.Color("#DCFCE7"))
	dialogStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(colorActive)).Padding(1, 2)
	warningStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(colorWarning)).Padding(1, 2)
	successStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(colorIdle)).Padding(0, 2)
)

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch {
	case m.snap.Warning:
		content = m.viewWarning()
	case m.showForest:
		content = m.viewForest()
	default:
		content = m.viewMain()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewMain() string {
	snap := m.snap
	color := treeColor(snap)

	sections := []string{
		titleStyle.Render("🌲 Focus Forest"),
		renderTree(snap.Stage(), domain.TreeSize(snap.Progress), color),
		"",
		renderBigTime(domain.FormatRemaining(snap.RemainingSeconds), color, m.width),
		"",
		m.progress.ViewAs(snap.Progress / 100),
		"",
		startButtonStyle(snap).Render(startButtonLabel(snap)),
		"",
		buttonStyle.Render(forestButtonLabel(snap.ForestSize())),
	}

	if snap.IsWithering() {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(lipgloss.Color(colorWithering)).Render("Your tree withered."))
	}

	if snap.Celebrating {
		sections = append(sections, "", successStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Render("Congratulations!"),
			"Your tree has grown fully. Great work on staying focused!",
		)))
	}

	if !m.bridge.FocusReporting() {
		sections = append(sections, "", helpStyle.Render("Focus tracking unavailable: sessions end only when time runs out."))
	}
	if m.lastErr != nil {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarning)).Render("Error: "+m.lastErr.Error()))
	}

	sections = append(sections, "", helpStyle.Render("[s]tart  [f]orest  [q]uit"))
	return lipgloss.JoinVertical(lipgloss.Center, sections...)
}

func (m Model) viewForest() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorTitle)).Render("Your Forest")

	var body string
	if len(m.snap.Trees) == 0 {
		body = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).
			Render("Your forest is empty. Complete a focus session to grow your first tree!")
	} else {
		body = renderForestGrid(m.snap.Trees)
	}

	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		header, "", body, "", helpStyle.Render("[esc] close"),
	))
}

func (m Model) viewWarning() string {
	return warningStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorWarning)).Render("Warning!"),
		"",
		"The focus activity will fail and the tree will disintegrate if you leave.",
		"",
		buttonStyle.Render("[c] Continue")+"  "+
			buttonStyle.Background(lipgloss.Color(colorWarning)).Render("[l] Leave"),
	))
}

func renderForestGrid(trees []domain.Tree) string {
	crown := lipgloss.NewStyle().Foreground(lipgloss.Color(colorIdle))
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(colorActive))
	cell := lipgloss.NewStyle().Width(22).Align(lipgloss.Center).MarginBottom(1)

	var rows []string
	var row []string
	for i, tree := range trees {
		caption := tree.PlantedAt.Local().Format("Jan 2, 2006")
		if tree.Branch != "" {
			caption += "\n" + tree.Branch
		}
		row = append(row, cell.Render(lipgloss.JoinVertical(lipgloss.Center,
			crown.Render("▲"),
			label.Render(caption),
		)))
		if len(row) == forestColumns || i == len(trees)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	return strings.Join(rows, "\n")
}

func startButtonLabel(snap domain.Snapshot) string {
	if snap.IsRunning() {
		return "Focus in progress..."
	}
	return "Start Focus"
}

func startButtonStyle(snap domain.Snapshot) lipgloss.Style {
	if snap.State != domain.StateIdle {
		return disabledBtn
	}
	return buttonStyle
}

func forestButtonLabel(trees int) string {
	return fmt.Sprintf("Your Forest (%d trees)", trees)
}
