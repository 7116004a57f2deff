package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// glyphHeight is the number of terminal rows per big glyph.
const glyphHeight = 3

// bigGlyphs draws digits and the colon with half-block characters.
var bigGlyphs = map[rune][glyphHeight]string{
	'0': {"█▀█", "█ █", "▀▀▀"},
	'1': {"▄█ ", " █ ", "▀▀▀"},
	'2': {"▀▀█", "█▀▀", "▀▀▀"},
	'3': {"▀▀█", " ▀█", "▀▀▀"},
	'4': {"█ █", "▀▀█", "  ▀"},
	'5': {"█▀▀", "▀▀█", "▀▀▀"},
	'6': {"█▀▀", "█▀█", "▀▀▀"},
	'7': {"▀▀█", "  █", "  ▀"},
	'8': {"█▀█", "█▀█", "▀▀▀"},
	'9': {"█▀█", "▀▀█", "▀▀▀"},
	':': {"▄", " ", "▀"},
}

// minBigTimeWidth is the narrowest terminal that gets the big timer.
const minBigTimeWidth = 30

// renderBigTime renders an "M:SS" string with big glyphs. Narrow terminals
// get a single bold line.
func renderBigTime(timeStr string, color lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width < minBigTimeWidth {
		return style.Render(timeStr)
	}

	var rows [glyphHeight][]string
	for _, ch := range timeStr {
		glyph, ok := bigGlyphs[ch]
		if !ok {
			continue
		}
		for i := range glyphHeight {
			rows[i] = append(rows[i], glyph[i])
		}
	}

	lines := make([]string, glyphHeight)
	for i := range rows {
		lines[i] = style.Render(strings.Join(rows[i], " "))
	}
	return strings.Join(lines, "\n")
}
