package alloc

import (
	"cmp"
	"errors"
	"math/rand"
	"slices"

	"github.com/kilianp07/berthalloc/core/model"
)

// DefaultMaxRestarts bounds the randomized restarts of TimeWindow.
const DefaultMaxRestarts = 100

// TimeWindow serves vessels with the widest time windows first, each on a
// randomly drawn berth that still has a slot. A dead end restarts the whole
// allocation.
type TimeWindow struct {
	Rng         *rand.Rand
	MaxRestarts int
}

// NewTimeWindow returns a TimeWindow strategy. A non-positive maxRestarts
// selects DefaultMaxRestarts.
func NewTimeWindow(rng *rand.Rand, maxRestarts int) (*TimeWindow, error) {
	if rng == nil {
		return nil, errors.New("alloc: nil random source")
	}
	if maxRestarts <= 0 {
		maxRestarts = DefaultMaxRestarts
	}
	return &TimeWindow{Rng: rng, MaxRestarts: maxRestarts}, nil
}

// Name implements Strategy.
func (*TimeWindow) Name() string { return NameTimeWindow }

// Allocate implements Strategy.
func (s *TimeWindow) Allocate(p *model.Problem) (*model.Problem, error) {
	var err error
	for attempt := 0; attempt <= s.MaxRestarts; attempt++ {
		out := p.Clone()
		out.Reset()
		if err = s.fill(out); err == nil {
			return out, nil
		}
	}
	return nil, err
}

func (s *TimeWindow) fill(p *model.Problem) error {
	order := slices.Clone(p.Vessels)
	slices.SortStableFunc(order, func(a, b *model.Vessel) int {
		return cmp.Or(cmp.Compare(b.Window(), a.Window()), cmp.Compare(a.ID, b.ID))
	})
	for _, v := range order {
		if !s.place(p, v) {
			return infeasible(v)
		}
	}
	return nil
}

// place tries the berths in random order until one offers a slot.
func (s *TimeWindow) place(p *model.Problem, v *model.Vessel) bool {
	for _, i := range s.Rng.Perm(len(p.Berths)) {
		b := p.Berths[i]
		if start, ok := b.FirstAvailableSlot(v); ok {
			return b.AddVessel(v, start)
		}
	}
	return false
}
