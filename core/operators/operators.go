// Package operators produces neighbor solutions by perturbing one or two
// vessel placements. Every operator works on a clone and hands back the
// input unchanged when no valid neighbor turns up within its retry budget.
package operators

import (
	"fmt"
	"math/rand"

	"github.com/kilianp07/berthalloc/core/model"
)

// Default retry budgets.
const (
	DefaultMaxAttempts = 10
	DefaultMaxRehome   = 10
)

// Operator returns a neighbor of p. The result is either a fully allocated
// alternative or p itself. Errors report broken invariants only.
type Operator interface {
	Name() string
	Apply(p *model.Problem, rng *rand.Rand) (*model.Problem, error)
}

// Defaults returns the standard operator set.
func Defaults() []Operator {
	return []Operator{SwapBetweenBerths{}, MoveInBerth{}}
}

// ByName resolves operator names. An empty list yields Defaults.
func ByName(names []string) ([]Operator, error) {
	if len(names) == 0 {
		return Defaults(), nil
	}
	ops := make([]Operator, 0, len(names))
	for _, n := range names {
		switch n {
		case NameSwap:
			ops = append(ops, SwapBetweenBerths{})
		case NameMove:
			ops = append(ops, MoveInBerth{})
		default:
			return nil, fmt.Errorf("operators: unknown operator %q", n)
		}
	}
	return ops, nil
}

// Random picks one operator uniformly.
func Random(ops []Operator, rng *rand.Rand) Operator {
	return ops[rng.Intn(len(ops))]
}

func budget(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

// rehome places every queued vessel on a randomly drawn berth at its first
// feasible position, drawing up to maxTries berths per vessel. It reports
// whether the whole problem ends up allocated.
func rehome(p *model.Problem, queue []*model.Vessel, rng *rand.Rand, maxTries int) (bool, error) {
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for try := 0; try < maxTries && !v.Allocated(); try++ {
			b := p.Berths[rng.Intn(len(p.Berths))]
			_, idx, ok := b.FirstFeasibleStartTime(v)
			if !ok {
				continue
			}
			displaced, err := b.InsertVessel(v, idx)
			if err != nil {
				return false, err
			}
			queue = append(queue, displaced...)
		}
		if !v.Allocated() {
			return false, nil
		}
	}
	return p.AllAllocated(), nil
}
