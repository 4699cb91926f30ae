package components

import (
	"strings"

	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. hints replaces the default
// key help when non-empty; note is right-aligned.
func RenderStatusBar(width int, hints, note string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " [q]uit"
	if hints != "" {
		left = " " + hints
	}
	right := ""
	if note != "" {
		right = note + " "
	}

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	bar := left + strings.Repeat(" ", padding) + right

	return style.Render(bar)
}
