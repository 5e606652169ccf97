package search

import (
	"context"
	"math"
	"math/rand"

	"github.com/kilianp07/berthalloc/core/events"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/model"
	"github.com/kilianp07/berthalloc/core/operators"
)

// SimulatedAnnealing walks the neighborhood from a current solution and
// accepts cost increases with a probability that shrinks with the
// temperature. The cheapest solution visited is tracked separately.
type SimulatedAnnealing struct {
	cfg  AnnealingConfig
	rng  *rand.Rand
	opts options
}

// NewAnnealing returns a simulated annealing search.
func NewAnnealing(cfg AnnealingConfig, rng *rand.Rand, opts ...Option) (*SimulatedAnnealing, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkRng(rng); err != nil {
		return nil, err
	}
	return &SimulatedAnnealing{cfg: cfg, rng: rng, opts: newOptions(opts)}, nil
}

// Name returns NameAnnealing.
func (s *SimulatedAnnealing) Name() string { return NameAnnealing }

// Search cools geometrically from InitialTemp. The loop goes on while the
// temperature is at least FinalTemp or fewer than Iterations iterations
// ran, so whichever bound is looser decides the run length.
func (s *SimulatedAnnealing) Search(ctx context.Context, initial *model.Problem) (Result, error) {
	r, err := s.opts.begin(NameAnnealing, initial)
	if err != nil {
		return Result{}, err
	}
	cur, curCost := initial, r.trajectory[0]
	best, bestCost := cur, curCost
	temp := s.cfg.InitialTemp

	for i := 1; temp >= s.cfg.FinalTemp || i <= s.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return r.finish(best, nil, err)
		}
		next, err := operators.Random(s.opts.ops, s.rng).Apply(cur, s.rng)
		if err != nil {
			return r.finish(best, nil, err)
		}
		cost := fitness.TotalCost(next)
		r.evaluations++
		accepted := false
		if next != cur && s.accept(cost-curCost, temp) {
			cur, curCost = next, cost
			accepted = true
		}
		if curCost <= bestCost {
			if curCost < bestCost {
				r.improved(i, bestCost, curCost)
			}
			best, bestCost = cur, curCost
		}
		r.step(events.IterationEvent{
			Iteration:   i,
			BestCost:    bestCost,
			CurrentCost: curCost,
			Temperature: temp,
			Accepted:    accepted,
		}, false)
		temp *= s.cfg.Alpha
	}
	r.meta["final_temperature"] = temp
	return r.finish(best, nil, nil)
}

// accept applies the Metropolis rule to a cost difference.
func (s *SimulatedAnnealing) accept(delta, temp float64) bool {
	if delta <= 0 {
		return true
	}
	return s.rng.Float64() <= math.Exp(-math.Abs(delta/s.cfg.CostScale)/temp)
}
