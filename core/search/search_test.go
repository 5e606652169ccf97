package search

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/berthalloc/core/alloc"
	"github.com/kilianp07/berthalloc/core/events"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/metrics"
	"github.com/kilianp07/berthalloc/core/model"
	"github.com/kilianp07/berthalloc/internal/eventbus"
)

func seeded(t *testing.T, seed int64, berths, vessels int) *model.Problem {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	bs := make([]*model.Berth, berths)
	for i := range bs {
		bs[i] = model.NewBerth(i, 0, 500)
	}
	vs := make([]*model.Vessel, vessels)
	for id := range vs {
		arrival := rng.Intn(200)
		handling := make([]int, berths)
		for j := range handling {
			handling[j] = 5 + rng.Intn(25)
		}
		vs[id] = model.NewVessel(id, arrival, arrival+150+rng.Intn(100), handling, 1+rng.Float64()*3)
	}
	p, err := model.NewProblem(vs, bs)
	require.NoError(t, err)
	out, err := alloc.FCFS{}.Allocate(p)
	require.NoError(t, err)
	return out
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Local.Iterations = 300
	cfg.Tabu.Iterations = 300
	cfg.Annealing.Iterations = 300
	cfg.Pareto.Iterations = 300
	return cfg
}

func TestSearchersImproveOnValidSolutions(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			initial := seeded(t, 42, 3, 20)
			sig := initial.Signature()
			seedCost := fitness.TotalCost(initial)

			s, err := New(name, smallConfig(), rand.New(rand.NewSource(1)))
			require.NoError(t, err)
			assert.Equal(t, name, s.Name())

			res, err := s.Search(context.Background(), initial)
			require.NoError(t, err)
			assert.Equal(t, sig, initial.Signature(), "initial solution mutated")

			require.NotNil(t, res.Best)
			assert.NotSame(t, initial, res.Best)
			require.NoError(t, res.Best.Validate())
			assert.True(t, res.Best.AllAllocated())
			assert.InDelta(t, fitness.TotalCost(res.Best), res.BestCost, 1e-9)
			assert.LessOrEqual(t, res.BestCost, seedCost)
			assert.NotEmpty(t, res.RunID)
			assert.Equal(t, name, res.Algorithm)

			require.Len(t, res.Trajectory, res.Iterations+1)
			assert.InDelta(t, seedCost, res.Trajectory[0], 1e-9)
			for i := 1; i < len(res.Trajectory); i++ {
				if res.Trajectory[i] > res.Trajectory[i-1] {
					t.Fatalf("trajectory rises at %d: %f -> %f", i, res.Trajectory[i-1], res.Trajectory[i])
				}
			}
			assert.InDelta(t, res.BestCost, res.Trajectory[len(res.Trajectory)-1], 1e-9)
		})
	}
}

func TestAnnealingRunsUntilCold(t *testing.T) {
	cfg := DefaultAnnealingConfig()
	cfg.Iterations = 0
	s, err := NewAnnealing(cfg, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	initial := seeded(t, 7, 2, 10)
	res, err := s.Search(context.Background(), initial)
	require.NoError(t, err)
	// 500 * 0.99^618 is still above 1, 500 * 0.99^619 is not.
	assert.Equal(t, 619, res.Iterations)
	assert.Less(t, res.Meta["final_temperature"].(float64), cfg.FinalTemp)
	assert.LessOrEqual(t, res.BestCost, fitness.TotalCost(initial))

	cfg.Iterations = 700
	s, err = NewAnnealing(cfg, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	res, err = s.Search(context.Background(), initial)
	require.NoError(t, err)
	assert.Equal(t, 700, res.Iterations)
}

// flip moves the single vessel of a two-berth problem to the other berth.
type flip struct{}

func (flip) Name() string { return "flip" }

func (flip) Apply(p *model.Problem, _ *rand.Rand) (*model.Problem, error) {
	c := p.Clone()
	v := c.Vessels[0]
	from := c.BerthOf(v)
	if _, err := from.RemoveVessel(v); err != nil {
		return nil, err
	}
	if !c.Berths[1-from.ID].AddVessel(v, v.Arrival) {
		return nil, errors.New("flip: no slot")
	}
	return c, nil
}

func flipProblem(t *testing.T) *model.Problem {
	t.Helper()
	bs := []*model.Berth{model.NewBerth(0, 0, 100), model.NewBerth(1, 0, 100)}
	vs := []*model.Vessel{model.NewVessel(0, 0, 100, []int{10, 10}, 1)}
	p, err := model.NewProblem(vs, bs)
	require.NoError(t, err)
	require.True(t, bs[0].AddVessel(vs[0], 0))
	return p
}

func TestAnnealingBestFollowsEqualCostMoves(t *testing.T) {
	cfg := AnnealingConfig{Iterations: 3, InitialTemp: 2, FinalTemp: 1, Alpha: 0.5, CostScale: 1}
	s, err := NewAnnealing(cfg, rand.New(rand.NewSource(1)), WithOperators(flip{}))
	require.NoError(t, err)

	res, err := s.Search(context.Background(), flipProblem(t))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Iterations)
	// three flips leave the vessel on berth 1, at unchanged cost
	assert.Equal(t, 1, res.Best.Vessel(0).Placement.Berth)
	assert.Equal(t, []float64{10, 10, 10, 10}, res.Trajectory)
}

func TestTabuRefusesRecentSchedules(t *testing.T) {
	cfg := TabuConfig{Iterations: 50, Tenure: 10, MaxRejections: 5}
	s, err := NewTabu(cfg, rand.New(rand.NewSource(1)), WithOperators(flip{}))
	require.NoError(t, err)

	res, err := s.Search(context.Background(), flipProblem(t))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 1, res.Evaluations)
	assert.Equal(t, true, res.Meta["stopped_early"])
	assert.Equal(t, 1, res.Best.Vessel(0).Placement.Berth)

	// Plain local search happily flips back and forth.
	ls, err := NewLocal(LocalConfig{Iterations: 50}, rand.New(rand.NewSource(1)), WithOperators(flip{}))
	require.NoError(t, err)
	res, err = ls.Search(context.Background(), flipProblem(t))
	require.NoError(t, err)
	assert.Equal(t, 50, res.Iterations)
	assert.Equal(t, 0, res.Best.Vessel(0).Placement.Berth)
}

func TestTabuForgetsOutsideTenure(t *testing.T) {
	cfg := TabuConfig{Iterations: 50, Tenure: 1, MaxRejections: 5}
	s, err := NewTabu(cfg, rand.New(rand.NewSource(1)), WithOperators(flip{}))
	require.NoError(t, err)

	res, err := s.Search(context.Background(), flipProblem(t))
	require.NoError(t, err)
	assert.Equal(t, 50, res.Iterations)
	assert.Equal(t, false, res.Meta["stopped_early"])
	assert.Equal(t, 1, res.Meta["tabu_size"])
}

func TestParetoFrontIsNonDominated(t *testing.T) {
	initial := seeded(t, 9, 3, 18)
	s, err := NewPareto(ParetoConfig{Iterations: 400, ExploredCapacity: 50}, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	res, err := s.Search(context.Background(), initial)
	require.NoError(t, err)
	assert.Equal(t, 400, res.Iterations)
	require.NotEmpty(t, res.Front)
	assert.Equal(t, len(res.Front), res.Meta["front_size"])
	assert.Equal(t, res.Front[0].Signature(), res.Best.Signature())

	seen := map[string]bool{}
	for i, a := range res.Front {
		require.NoError(t, a.Validate())
		sig := a.Signature()
		assert.False(t, seen[sig], "duplicate front member %d", i)
		seen[sig] = true
		oa := fitness.Evaluate(a)
		if i > 0 {
			assert.LessOrEqual(t, fitness.TotalCost(res.Front[i-1]), oa.Cost)
		}
		for j, b := range res.Front {
			if i != j && fitness.Dominates(fitness.Evaluate(b), oa) {
				t.Fatalf("front member %d dominated by %d", i, j)
			}
		}
	}
}

func TestSearchHonoursCancellation(t *testing.T) {
	initial := seeded(t, 2, 2, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range Names() {
		s, err := New(name, smallConfig(), rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		res, err := s.Search(ctx, initial)
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, res.Iterations, name)
		require.NotNil(t, res.Best, name)
		assert.True(t, res.Best.ScheduleEqual(initial), name)
	}
}

func TestSearchRejectsBadInput(t *testing.T) {
	s, err := NewLocal(DefaultLocalConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, err = s.Search(context.Background(), nil)
	assert.Error(t, err)

	p := seeded(t, 1, 2, 5)
	p.Reset()
	_, err = s.Search(context.Background(), p)
	assert.ErrorIs(t, err, ErrUnallocated)

	_, err = NewLocal(DefaultLocalConfig(), nil)
	assert.Error(t, err)
	_, err = New("genetic", DefaultConfig(), rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cases := map[string]func(*Config){
		"local iterations": func(c *Config) { c.Local.Iterations = 0 },
		"tabu tenure":      func(c *Config) { c.Tabu.Tenure = 0 },
		"tabu rejections":  func(c *Config) { c.Tabu.MaxRejections = -1 },
		"alpha":            func(c *Config) { c.Annealing.Alpha = 1 },
		"final temp":       func(c *Config) { c.Annealing.FinalTemp = 600 },
		"cost scale":       func(c *Config) { c.Annealing.CostScale = 0 },
		"explored":         func(c *Config) { c.Pareto.ExploredCapacity = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

type recordingSink struct {
	runs       []metrics.RunRecord
	iterations []metrics.IterationRecord
}

func (s *recordingSink) RecordRun(r metrics.RunRecord) error {
	s.runs = append(s.runs, r)
	return nil
}

func (s *recordingSink) RecordIteration(r metrics.IterationRecord) error {
	s.iterations = append(s.iterations, r)
	return nil
}

func TestSearchPublishesProgress(t *testing.T) {
	bus := eventbus.New()
	sub := bus.SubscribeBuffered(256)
	sink := &recordingSink{}

	s, err := NewLocal(LocalConfig{Iterations: 40}, rand.New(rand.NewSource(8)), WithBus(bus), WithSink(sink))
	require.NoError(t, err)
	res, err := s.Search(context.Background(), seeded(t, 4, 2, 10))
	require.NoError(t, err)
	bus.Close()

	var iterations, runs, improvements int
	for e := range sub {
		switch ev := e.(type) {
		case events.IterationEvent:
			iterations++
			assert.Equal(t, res.RunID, ev.RunID)
			assert.Equal(t, NameLocal, ev.Algorithm)
		case events.ImprovementEvent:
			improvements++
			assert.Less(t, ev.Cost, ev.Previous)
		case events.RunEvent:
			runs++
			assert.NoError(t, ev.Err)
			assert.Equal(t, res.BestCost, ev.BestCost)
		}
	}
	assert.Equal(t, 40, iterations)
	assert.Equal(t, 1, runs)
	assert.LessOrEqual(t, improvements, 40)
	assert.Zero(t, bus.Dropped())

	require.Len(t, sink.runs, 1)
	assert.Equal(t, res.RunID, sink.runs[0].RunID)
	assert.Equal(t, 40, sink.runs[0].Iterations)
	assert.Len(t, sink.iterations, 40)
}

func TestFIFOEvictsOldest(t *testing.T) {
	f := newFIFO(2)
	f.push("a")
	f.push("b")
	assert.True(t, f.contains("a"))
	f.push("c")
	assert.False(t, f.contains("a"))
	assert.True(t, f.contains("b"))
	assert.True(t, f.contains("c"))
	assert.Equal(t, 2, f.len())
}
