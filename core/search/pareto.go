package search

import (
	"cmp"
	"context"
	"math/rand"
	"slices"

	"github.com/kilianp07/berthalloc/core/events"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/model"
	"github.com/kilianp07/berthalloc/core/operators"
)

// ParetoLocalSearch keeps a front of mutually non-dominated solutions under
// total cost and completion time.
type ParetoLocalSearch struct {
	cfg  ParetoConfig
	rng  *rand.Rand
	opts options
}

type member struct {
	p   *model.Problem
	obj fitness.Objectives
	sig string
}

// NewPareto returns a Pareto local search.
func NewPareto(cfg ParetoConfig, rng *rand.Rand, opts ...Option) (*ParetoLocalSearch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkRng(rng); err != nil {
		return nil, err
	}
	return &ParetoLocalSearch{cfg: cfg, rng: rng, opts: newOptions(opts)}, nil
}

// Name returns NamePareto.
func (s *ParetoLocalSearch) Name() string { return NamePareto }

// Search runs exactly cfg.Iterations iterations. Result.Best is the
// cheapest front member and the trajectory tracks its cost.
func (s *ParetoLocalSearch) Search(ctx context.Context, initial *model.Problem) (Result, error) {
	r, err := s.opts.begin(NamePareto, initial)
	if err != nil {
		return Result{}, err
	}
	front := []member{{p: initial, obj: fitness.Evaluate(initial), sig: initial.Signature()}}
	explored := newFIFO(s.cfg.ExploredCapacity)

	for i := 1; i <= s.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return s.finish(r, front, err)
		}
		src := front[s.rng.Intn(len(front))]
		next, err := operators.Random(s.opts.ops, s.rng).Apply(src.p, s.rng)
		if err != nil {
			return s.finish(r, front, err)
		}
		accepted, rejected := false, true
		if next != src.p && next.AllAllocated() {
			sig := next.Signature()
			if !explored.contains(sig) && !inFront(front, sig) {
				rejected = false
				obj := fitness.Evaluate(next)
				r.evaluations++
				prev := cheapest(front).obj.Cost
				front, accepted = s.update(front, explored, member{p: next, obj: obj, sig: sig})
				if c := cheapest(front).obj.Cost; c < prev {
					r.improved(i, prev, c)
				}
			}
		}
		r.step(events.IterationEvent{
			Iteration:   i,
			BestCost:    cheapest(front).obj.Cost,
			CurrentCost: src.obj.Cost,
			FrontSize:   len(front),
			Accepted:    accepted,
		}, rejected)
	}
	return s.finish(r, front, nil)
}

// update files cand into the front or the explored list and reports whether
// it joined the front.
func (s *ParetoLocalSearch) update(front []member, explored *fifo, cand member) ([]member, bool) {
	for _, m := range front {
		if fitness.Dominates(m.obj, cand.obj) {
			explored.push(cand.sig)
			return front, false
		}
	}
	kept := make([]member, 0, len(front)+1)
	for _, m := range front {
		if fitness.Dominates(cand.obj, m.obj) {
			explored.push(m.sig)
			continue
		}
		kept = append(kept, m)
	}
	return append(kept, cand), true
}

func (s *ParetoLocalSearch) finish(r *run, front []member, err error) (Result, error) {
	sorted := slices.Clone(front)
	slices.SortStableFunc(sorted, func(a, b member) int {
		if c := cmp.Compare(a.obj.Cost, b.obj.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.obj.Completion, b.obj.Completion)
	})
	ps := make([]*model.Problem, len(sorted))
	for i, m := range sorted {
		ps[i] = m.p
	}
	r.meta["front_size"] = len(sorted)
	return r.finish(sorted[0].p, ps, err)
}

func inFront(front []member, sig string) bool {
	return slices.ContainsFunc(front, func(m member) bool { return m.sig == sig })
}

func cheapest(front []member) member {
	return slices.MinFunc(front, func(a, b member) int { return cmp.Compare(a.obj.Cost, b.obj.Cost) })
}
