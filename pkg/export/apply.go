package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kilianp07/berthalloc/core/model"
)

// ReadSolution decodes a Solution written by WriteJSON.
func ReadSolution(r io.Reader) (Solution, error) {
	var s Solution
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Solution{}, fmt.Errorf("export: decode solution: %w", err)
	}
	return s, nil
}

// Apply places the assignments of s on a clone of p. p must be the problem
// the solution was exported from; its current schedule is discarded.
func Apply(p *model.Problem, s Solution) (*model.Problem, error) {
	out := p.Clone()
	out.Reset()
	for _, a := range s.Assignments {
		v := out.Vessel(a.Vessel)
		if v == nil {
			return nil, fmt.Errorf("export: unknown vessel %d", a.Vessel)
		}
		b := out.Berth(a.Berth)
		if b == nil {
			return nil, fmt.Errorf("export: vessel %d on unknown berth %d", a.Vessel, a.Berth)
		}
		if !b.AddVessel(v, a.Start) {
			return nil, fmt.Errorf("export: vessel %d does not fit berth %d at %d", a.Vessel, a.Berth, a.Start)
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
