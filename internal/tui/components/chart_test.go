package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/tui/theme"
)

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 1},
		{10, 2},
		{100000, 20000},
		{7500, 2000},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := map[float64]string{
		20000:   "20k",
		17500:   "17.5k",
		1500000: "1.5M",
		500:     "500",
		0.5:     "0.50",
	}
	for in, want := range tests {
		if got := formatChartLabel(in); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTrajectoryChart(t *testing.T) {
	theme.SetActive("flexoki-dark")

	points := []model.TrajectoryPoint{
		{Month: 1, ProjectedSavings: 40000},
		{Month: 2, ProjectedSavings: 70000},
		{Month: 3, ProjectedSavings: 100000},
	}
	out := TrajectoryChart("Car", points, theme.Active.Blue, 60, 10)

	if !strings.Contains(out, "Savings Progress for Car") {
		t.Fatalf("chart missing title:\n%s", out)
	}
	for _, lbl := range []string{"M1", "M2", "M3", "100k"} {
		if !strings.Contains(out, lbl) {
			t.Errorf("chart missing label %q", lbl)
		}
	}
	if TrajectoryChart("Car", nil, theme.Active.Blue, 60, 10) != "" {
		t.Error("empty trajectory should render nothing")
	}
}

func TestBarChartNarrowFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2, 3}, nil, theme.Active.Blue, 10, 2)
	if strings.Contains(out, "│") {
		t.Fatalf("narrow chart drew axes: %q", out)
	}
}

func TestGoalProgressBarClamps(t *testing.T) {
	theme.SetActive("flexoki-dark")

	full := GoalProgressBar("Goal", 150, 100, 6, 20)
	if !strings.Contains(full, "100%") {
		t.Errorf("over-funded goal should show 100%%: %q", full)
	}
	empty := GoalProgressBar("Goal", 0, 100, 6, 20)
	if !strings.Contains(empty, "0%") {
		t.Errorf("unfunded goal should show 0%%: %q", empty)
	}
	zero := GoalProgressBar("Goal", 0, 0, 6, 20)
	if !strings.Contains(zero, "100%") {
		t.Errorf("zero goal should count as complete: %q", zero)
	}
	if w := lipgloss.Width(GoalProgressBar("Goal", 50, 100, 6, 20)); w < 20 {
		t.Errorf("bar width = %d, want at least 20", w)
	}
}

func TestRenderStatusBarWidth(t *testing.T) {
	out := RenderStatusBar(60, "[s]ave  [n]ew  [q]uit", "cached")
	if w := lipgloss.Width(out); w != 60 {
		t.Fatalf("status bar width = %d, want 60", w)
	}
}
