package search

import (
	"context"
	"math/rand"

	"github.com/kilianp07/berthalloc/core/events"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/model"
	"github.com/kilianp07/berthalloc/core/operators"
)

// TabuSearch is a local search that refuses neighbors schedule-equal to any
// of its last Tenure accepted solutions.
type TabuSearch struct {
	cfg  TabuConfig
	rng  *rand.Rand
	opts options
}

// NewTabu returns a tabu search.
func NewTabu(cfg TabuConfig, rng *rand.Rand, opts ...Option) (*TabuSearch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkRng(rng); err != nil {
		return nil, err
	}
	return &TabuSearch{cfg: cfg, rng: rng, opts: newOptions(opts)}, nil
}

// Name returns NameTabu.
func (s *TabuSearch) Name() string { return NameTabu }

// Search runs until cfg.Iterations non-tabu neighbors were evaluated or
// cfg.MaxRejections draws in a row were refused. Meta["stopped_early"]
// tells the two apart.
func (s *TabuSearch) Search(ctx context.Context, initial *model.Problem) (Result, error) {
	r, err := s.opts.begin(NameTabu, initial)
	if err != nil {
		return Result{}, err
	}
	tabu := newFIFO(s.cfg.Tenure)
	tabu.push(initial.Signature())
	best, bestCost := initial, r.trajectory[0]
	r.meta["stopped_early"] = false

	for i, rejections := 1, 0; i <= s.cfg.Iterations; {
		if err := ctx.Err(); err != nil {
			return r.finish(best, nil, err)
		}
		next, err := operators.Random(s.opts.ops, s.rng).Apply(best, s.rng)
		if err != nil {
			return r.finish(best, nil, err)
		}
		sig := ""
		if next != best && next.AllAllocated() {
			sig = next.Signature()
		}
		if sig == "" || tabu.contains(sig) {
			r.reject(bestCost)
			if rejections++; rejections >= s.cfg.MaxRejections {
				r.meta["stopped_early"] = true
				s.opts.log.Debugf("tabu search %s: %d rejections in a row, stopping", r.id, rejections)
				break
			}
			continue
		}
		rejections = 0

		cost := fitness.TotalCost(next)
		r.evaluations++
		accepted := cost <= bestCost
		if accepted {
			tabu.push(sig)
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
		i++
	}
	r.meta["tabu_size"] = tabu.len()
	return r.finish(best, nil, nil)
}
