package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/forest-cli/internal/domain"
)

const (
	colorWithering = "#EF4444"
	colorActive    = "#15803D"
	colorIdle      = "#22C55E"
	colorSoil      = "#8B4513"
	colorTitle     = "#166534"
	colorHelp      = "#95A5A6"
	colorWarning   = "#DC2626"
)

// Tree heights in rows at the smallest and largest tree size.
const (
	minTreeRows = 3
	maxTreeRows = 9
)

// treeColor picks the crown color for the session state.
func treeColor(snap domain.Snapshot) lipgloss.Color {
	switch {
	case snap.IsWithering():
		return lipgloss.Color(colorWithering)
	case snap.IsRunning():
		return lipgloss.Color(colorActive)
	default:
		return lipgloss.Color(colorIdle)
	}
}

// treeRows maps a tree size onto a row count.
func treeRows(size float64) int {
	span := float64(domain.TreeMaxSize - domain.TreeBaseSize)
	frac := (size - domain.TreeBaseSize) / span
	frac = math.Max(0, math.Min(1, frac))
	return minTreeRows + int(math.Round(frac*float64(maxTreeRows-minTreeRows)))
}

// renderTree draws the tree for a growth stage on a strip of soil.
func renderTree(stage domain.GrowthStage, size float64, color lipgloss.Color) string {
	rows := treeRows(size)
	width := 2*rows - 1
	crown := lipgloss.NewStyle().Foreground(color)
	soil := lipgloss.NewStyle().Foreground(lipgloss.Color(colorSoil))

	lines := make([]string, 0, rows+2)
	switch stage {
	case domain.StageFullTree:
		for i := range rows {
			lines = append(lines, pad(crown.Render(strings.Repeat("█", 2*i+1)), 2*i+1, width))
		}
		lines = append(lines, pad(soil.Render("█"), 1, width))
	default:
		for i := range rows {
			if i%2 == 1 {
				lines = append(lines, pad(crown.Render("╲│╱"), 3, width))
				continue
			}
			lines = append(lines, pad(crown.Render("│"), 1, width))
		}
	}
	lines = append(lines, soil.Render(strings.Repeat("▀", width)))
	return strings.Join(lines, "\n")
}

// pad centers a rendered cell of the given visible width.
func pad(s string, w, total int) string {
	left := (total - w) / 2
	if left < 0 {
		return s
	}
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-w-left)
}
