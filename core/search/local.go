package search

import (
	"context"
	"math/rand"

	"github.com/kilianp07/berthalloc/core/events"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/model"
	"github.com/kilianp07/berthalloc/core/operators"
)

// LocalSearch keeps the cheapest solution seen and moves to any neighbor
// that is no more expensive.
type LocalSearch struct {
	cfg  LocalConfig
	rng  *rand.Rand
	opts options
}

// NewLocal returns a local search.
func NewLocal(cfg LocalConfig, rng *rand.Rand, opts ...Option) (*LocalSearch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkRng(rng); err != nil {
		return nil, err
	}
	return &LocalSearch{cfg: cfg, rng: rng, opts: newOptions(opts)}, nil
}

// Name returns NameLocal.
func (s *LocalSearch) Name() string { return NameLocal }

// Search runs cfg.Iterations iterations from initial.
func (s *LocalSearch) Search(ctx context.Context, initial *model.Problem) (Result, error) {
	r, err := s.opts.begin(NameLocal, initial)
	if err != nil {
		return Result{}, err
	}
	best, bestCost := initial, r.trajectory[0]
	for i := 1; i <= s.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return r.finish(best, nil, err)
		}
		next, err := operators.Random(s.opts.ops, s.rng).Apply(best, s.rng)
		if err != nil {
			return r.finish(best, nil, err)
		}
		cost := fitness.TotalCost(next)
		r.evaluations++
		accepted := next != best && cost <= bestCost
		if accepted {
			if cost < bestCost {
				r.improved(i, bestCost, cost)
			}
			best, bestCost = next, cost
		}
		r.step(events.IterationEvent{
			Iteration:   i,
			BestCost:    bestCost,
			CurrentCost: cost,
			Accepted:    accepted,
		}, false)
	}
	return r.finish(best, nil, nil)
}
