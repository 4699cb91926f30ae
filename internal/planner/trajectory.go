package planner

import (
	"iter"

	"github.com/theirongolddev/finplan/internal/model"
)

// Points yields (month, projected savings) for months 1..months, moving
// linearly from savings (month 0, not yielded) to goalAmount (last month).
// The sequence is finite and can be ranged over any number of times.
func Points(savings, goalAmount float64, months int) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		step := (goalAmount - savings) / float64(months)
		for i := 1; i <= months; i++ {
			if !yield(i, savings+step*float64(i)) {
				return
			}
		}
	}
}

// Project materializes Points into a slice of length months.
func Project(savings, goalAmount float64, months int) []model.TrajectoryPoint {
	if months < 1 {
		return nil
	}
	out := make([]model.TrajectoryPoint, 0, months)
	for m, v := range Points(savings, goalAmount, months) {
		out = append(out, model.TrajectoryPoint{Month: m, ProjectedSavings: v})
	}
	return out
}

// ProjectProfile projects the trajectory for a validated profile.
func ProjectProfile(p model.FinancialProfile) []model.TrajectoryPoint {
	return Project(p.Savings, p.GoalAmount, p.Months)
}

// Values returns just the projected savings, in month order. Chart helpers
// take plain float slices.
func Values(points []model.TrajectoryPoint) []float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.ProjectedSavings
	}
	return vals
}
