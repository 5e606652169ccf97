// Package export writes solutions, trajectories, Pareto fronts, risk
// profiles and benchmark records as JSON or CSV.
package export

import (
	"cmp"
	"encoding/json"
	"io"
	"slices"

	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/model"
)

// Assignment is the placement of one vessel.
type Assignment struct {
	Vessel   int     `json:"vessel"`
	Berth    int     `json:"berth"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Handling int     `json:"handling"`
	Arrival  int     `json:"arrival"`
	Deadline int     `json:"deadline"`
	Cost     float64 `json:"cost"`
}

// Schedule is the timeline of one berth.
type Schedule struct {
	Berth       int              `json:"berth"`
	Open        int              `json:"open"`
	Close       int              `json:"close"`
	Vessels     []int            `json:"vessels"`
	Free        []model.Interval `json:"free"`
	Utilization float64          `json:"utilization"`
	Completion  int              `json:"completion"`
}

// Solution is the exported view of one schedule.
type Solution struct {
	Label       string       `json:"label,omitempty"`
	Cost        float64      `json:"cost"`
	Completion  int          `json:"completion"`
	Unallocated []int        `json:"unallocated,omitempty"`
	Assignments []Assignment `json:"assignments"`
	Schedules   []Schedule   `json:"schedules"`
}

// Assignments lists the allocated vessels ordered by berth and start.
func Assignments(p *model.Problem) []Assignment {
	var out []Assignment
	for _, v := range p.Vessels {
		pl := v.Placement
		if pl == nil {
			continue
		}
		out = append(out, Assignment{
			Vessel:   v.ID,
			Berth:    pl.Berth,
			Start:    pl.Start,
			End:      pl.End,
			Handling: pl.Handling,
			Arrival:  v.Arrival,
			Deadline: v.Leaving,
			Cost:     float64(pl.End-v.Arrival) * v.Cost,
		})
	}
	slices.SortFunc(out, func(a, b Assignment) int {
		if c := cmp.Compare(a.Berth, b.Berth); c != 0 {
			return c
		}
		return cmp.Compare(a.Start, b.Start)
	})
	return out
}

// Schedules lists every berth timeline.
func Schedules(p *model.Problem) []Schedule {
	out := make([]Schedule, len(p.Berths))
	for i, b := range p.Berths {
		ids := make([]int, b.Len())
		for k := range ids {
			ids[k] = b.VesselAt(k).ID
		}
		out[i] = Schedule{
			Berth:       b.ID,
			Open:        b.Open,
			Close:       b.Close,
			Vessels:     ids,
			Free:        b.Free(),
			Utilization: b.Utilization(),
			Completion:  b.Completion(),
		}
	}
	return out
}

// NewSolution builds the exported view of p.
func NewSolution(label string, p *model.Problem) Solution {
	s := Solution{
		Label:       label,
		Cost:        fitness.TotalCost(p),
		Completion:  fitness.CompleteTime(p),
		Assignments: Assignments(p),
		Schedules:   Schedules(p),
	}
	for _, v := range p.Unallocated() {
		s.Unallocated = append(s.Unallocated, v.ID)
	}
	return s
}

// Front builds the exported views of the Pareto front members.
func Front(front []*model.Problem) []Solution {
	out := make([]Solution, len(front))
	for i, p := range front {
		out[i] = NewSolution("", p)
	}
	return out
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
