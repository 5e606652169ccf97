package operators

import (
	"math/rand"

	"github.com/kilianp07/berthalloc/core/model"
)

// NameMove identifies MoveInBerth.
const NameMove = "move_in_berth"

// MoveInBerth moves one vessel of a berth in front of another vessel of the
// same berth.
type MoveInBerth struct {
	MaxAttempts int
	MaxRehome   int
}

// Name implements Operator.
func (MoveInBerth) Name() string { return NameMove }

// Apply implements Operator.
func (o MoveInBerth) Apply(p *model.Problem, rng *rand.Rand) (*model.Problem, error) {
	if len(p.Berths) == 0 {
		return p, nil
	}
	for attempt := 0; attempt < budget(o.MaxAttempts, DefaultMaxAttempts); attempt++ {
		c := p.Clone()
		b := c.Berths[rng.Intn(len(c.Berths))]
		k := b.Len()
		if k < 2 {
			continue
		}
		x := rng.Intn(k)
		y := rng.Intn(k - 1)
		if y >= x {
			y++
		}
		anchor, moved := b.VesselAt(x), b.VesselAt(y)
		if _, err := b.RemoveVessel(moved); err != nil {
			return p, err
		}
		displaced, err := b.InsertVessel(moved, b.Index(anchor))
		if err != nil {
			return p, err
		}
		ok, err := rehome(c, displaced, rng, budget(o.MaxRehome, DefaultMaxRehome))
		if err != nil {
			return p, err
		}
		if ok {
			return c, nil
		}
	}
	return p, nil
}
