// Package fitness scores berth allocation solutions and compares them under
// the two objectives total cost and completion time.
package fitness

import "github.com/kilianp07/berthalloc/core/model"

// TotalCost sums (end - arrival) * cost over the allocated vessels.
func TotalCost(p *model.Problem) float64 {
	total := 0.0
	for _, v := range p.Vessels {
		if v.Placement == nil {
			continue
		}
		total += float64(v.Placement.End-v.Arrival) * v.Cost
	}
	return total
}

// CompleteTime returns the latest completion over all berths.
func CompleteTime(p *model.Problem) int {
	latest := 0
	for i, b := range p.Berths {
		if c := b.Completion(); i == 0 || c > latest {
			latest = c
		}
	}
	return latest
}

// Objectives is the bi-objective value of a solution. Lower is better on
// both axes.
type Objectives struct {
	Cost       float64 `json:"cost"`
	Completion int     `json:"completion"`
}

// Evaluate computes both objectives of p.
func Evaluate(p *model.Problem) Objectives {
	return Objectives{Cost: TotalCost(p), Completion: CompleteTime(p)}
}

// WeaklyDominates reports whether a is no worse than b on both objectives.
// Every solution weakly dominates itself.
func WeaklyDominates(a, b Objectives) bool {
	return a.Cost <= b.Cost && a.Completion <= b.Completion
}

// Dominates reports whether a weakly dominates b and is strictly better on
// at least one objective.
func Dominates(a, b Objectives) bool {
	return WeaklyDominates(a, b) && (a.Cost < b.Cost || a.Completion < b.Completion)
}
