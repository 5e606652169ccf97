// Package alloc builds the feasible starting solutions the search
// algorithms improve on.
package alloc

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/kilianp07/berthalloc/core/model"
)

// ErrInfeasible is returned when a strategy cannot place every vessel.
var ErrInfeasible = errors.New("alloc: infeasible instance")

// Strategy allocates every vessel of a problem. Implementations work on a
// clone and leave the input untouched.
type Strategy interface {
	Name() string
	Allocate(p *model.Problem) (*model.Problem, error)
}

// Strategy names accepted by New.
const (
	NameFCFS       = "fcfs"
	NameTimeWindow = "time_window"
)

// New returns the strategy registered under name.
func New(name string, rng *rand.Rand, maxRestarts int) (Strategy, error) {
	switch name {
	case NameFCFS, "":
		return FCFS{}, nil
	case NameTimeWindow:
		s, err := NewTimeWindow(rng, maxRestarts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("alloc: unknown strategy %q", name)
	}
}

func infeasible(v *model.Vessel) error {
	return fmt.Errorf("%w: vessel %d (window [%d,%d]) finds no berth", ErrInfeasible, v.ID, v.Arrival, v.Leaving)
}
