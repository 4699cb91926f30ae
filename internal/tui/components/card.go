// Package components provides reusable TUI widgets for the finplan planner.
package components

import (
	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tone colors a metric by what it means for the plan.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneGood         // on track: feasible, goal met
	ToneWarn         // reachable but tight
	ToneBad          // not feasible
)

// Metric is one headline figure of a plan result.
type Metric struct {
	Label string
	Value string
	Note  string
	Tone  Tone
}

func toneColor(tone Tone) (value, border lipgloss.Color) {
	t := theme.Active
	switch tone {
	case ToneGood:
		return t.Green, t.Green
	case ToneWarn:
		return t.Orange, t.Orange
	case ToneBad:
		return t.Red, t.Red
	default:
		return t.TextPrimary, t.Border
	}
}

// LayoutRow splits totalWidth into n widths summing to totalWidth; the
// leftmost widths take the remainder.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base, rem := totalWidth/n, totalWidth%n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < rem {
			widths[i]++
		}
	}
	return widths
}

// MetricCard renders m in a bordered card of outerWidth columns. Non-neutral
// tones color both the value and the border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active
	valueColor, borderColor := toneColor(m.Tone)

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	content := lipgloss.NewStyle().Foreground(t.TextMuted).Render(m.Label) + "\n" +
		lipgloss.NewStyle().Foreground(valueColor).Bold(true).Render(m.Value)
	if m.Note != "" {
		content += "\n" + lipgloss.NewStyle().Foreground(t.TextDim).Render(m.Note)
	}
	return card.Render(content)
}

// MetricCardRow lays metrics side by side across totalWidth. Cards are
// equalized to the tallest so a missing note does not leave a ragged row.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	hasNote := false
	for _, m := range metrics {
		hasNote = hasNote || m.Note != ""
	}

	widths := LayoutRow(totalWidth, len(metrics))
	rendered := make([]string, len(metrics))
	for i, m := range metrics {
		if hasNote && m.Note == "" {
			m.Note = " "
		}
		rendered[i] = MetricCard(m, widths[i])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// ContentCard renders body in a bordered card with an optional title.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	content := body
	if title != "" {
		content = lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true).Render(title) + "\n" + body
	}
	return card.Render(content)
}

// CardInnerWidth is the text width left inside a card of outerWidth.
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, 10)
}
