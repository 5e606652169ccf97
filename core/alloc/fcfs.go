package alloc

import (
	"cmp"
	"slices"

	"github.com/kilianp07/berthalloc/core/model"
)

// FCFS serves vessels in arrival order, each on the berth offering the
// earliest start.
type FCFS struct{}

// Name implements Strategy.
func (FCFS) Name() string { return NameFCFS }

// Allocate implements Strategy.
func (FCFS) Allocate(p *model.Problem) (*model.Problem, error) {
	out := p.Clone()
	out.Reset()
	order := slices.Clone(out.Vessels)
	slices.SortStableFunc(order, func(a, b *model.Vessel) int {
		return cmp.Or(cmp.Compare(a.Arrival, b.Arrival), cmp.Compare(a.ID, b.ID))
	})
	for _, v := range order {
		b, start, ok := out.NearestAvailableBerth(v)
		if !ok || !b.AddVessel(v, start) {
			return nil, infeasible(v)
		}
	}
	return out, nil
}
