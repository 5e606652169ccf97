package operators

import (
	"math/rand"

	"github.com/kilianp07/berthalloc/core/model"
)

// NameSwap identifies SwapBetweenBerths.
const NameSwap = "swap_between_berths"

// SwapBetweenBerths exchanges two vessels drawn from two distinct berths.
type SwapBetweenBerths struct {
	MaxAttempts int
	MaxRehome   int
}

// Name implements Operator.
func (SwapBetweenBerths) Name() string { return NameSwap }

// Apply implements Operator.
func (o SwapBetweenBerths) Apply(p *model.Problem, rng *rand.Rand) (*model.Problem, error) {
	n := len(p.Berths)
	if n < 2 {
		return p, nil
	}
	for attempt := 0; attempt < budget(o.MaxAttempts, DefaultMaxAttempts); attempt++ {
		c := p.Clone()
		i := rng.Intn(n)
		j := rng.Intn(n - 1)
		if j >= i {
			j++
		}
		b0, b1 := c.Berths[i], c.Berths[j]
		if b0.Len() == 0 || b1.Len() == 0 {
			continue
		}
		v0 := b0.VesselAt(rng.Intn(b0.Len()))
		v1 := b1.VesselAt(rng.Intn(b1.Len()))
		d0, d1, err := c.SwapBetweenBerths(v0, v1)
		if err != nil {
			return p, err
		}
		ok, err := rehome(c, append(d0, d1...), rng, budget(o.MaxRehome, DefaultMaxRehome))
		if err != nil {
			return p, err
		}
		if ok {
			return c, nil
		}
	}
	return p, nil
}
