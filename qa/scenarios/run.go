package scenarios

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/berthalloc/core/alloc"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/search"
	"github.com/kilianp07/berthalloc/infra/logger"
	"github.com/kilianp07/berthalloc/infra/metrics"
	"github.com/kilianp07/berthalloc/internal/eventbus"
)

const namespace = "scenario"

func RunScenario(t *testing.T, sc *Scenario) {
	p, dropped, err := sc.Instance.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(dropped) != sc.Expected.Dropped {
		t.Errorf("scenario %s expected %d dropped, got %d", sc.Name, sc.Expected.Dropped, len(dropped))
	}

	strategy, err := alloc.New(sc.Allocation, rand.New(rand.NewSource(sc.Seed)), 0)
	if err != nil {
		t.Fatalf("strategy: %v", err)
	}
	initial, err := strategy.Allocate(p)
	if sc.Expected.Infeasible {
		if !errors.Is(err, alloc.ErrInfeasible) {
			t.Fatalf("scenario %s expected infeasible, got %v", sc.Name, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	initialCost := fitness.TotalCost(initial)
	if want := sc.Expected.InitialCost; want != nil && initialCost != *want {
		t.Errorf("scenario %s expected initial cost %v, got %v", sc.Name, *want, initialCost)
	}
	if want := sc.Expected.Completion; want != nil && fitness.CompleteTime(initial) != *want {
		t.Errorf("scenario %s expected completion %d, got %d", sc.Name, *want, fitness.CompleteTime(initial))
	}
	if sc.Algorithm == "" {
		return
	}

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg, namespace)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	bus := eventbus.New()
	defer bus.Close()

	s, err := search.New(sc.Algorithm, params(sc), rand.New(rand.NewSource(sc.Seed)),
		search.WithSink(sink), search.WithBus(bus), search.WithLogger(logger.NopLogger{}))
	if err != nil {
		t.Fatalf("searcher: %v", err)
	}
	res, err := s.Search(context.Background(), initial)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := res.Best.Validate(); err != nil {
		t.Fatalf("scenario %s best invalid: %v", sc.Name, err)
	}
	if !res.Best.AllAllocated() {
		t.Errorf("scenario %s lost vessels", sc.Name)
	}
	if res.BestCost > initialCost {
		t.Errorf("scenario %s best %v worse than initial %v", sc.Name, res.BestCost, initialCost)
	}
	if want := sc.Expected.MaxBestCost; want != nil && res.BestCost > *want {
		t.Errorf("scenario %s expected best cost <= %v, got %v", sc.Name, *want, res.BestCost)
	}
	n, err := testutil.GatherAndCount(reg, namespace+"_search_runs_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Errorf("scenario %s expected 1 run series, got %d", sc.Name, n)
	}
}

// params sets the scenario iteration count on the selected algorithm.
func params(sc *Scenario) search.Config {
	cfg := search.DefaultConfig()
	if sc.Iterations <= 0 {
		return cfg
	}
	switch sc.Algorithm {
	case search.NameLocal:
		cfg.Local.Iterations = sc.Iterations
	case search.NameTabu:
		cfg.Tabu.Iterations = sc.Iterations
	case search.NameAnnealing:
		cfg.Annealing.Iterations = sc.Iterations
	case search.NamePareto:
		cfg.Pareto.Iterations = sc.Iterations
	}
	return cfg
}
