// Package bench repeats searches over several seeds and summarises the
// outcome per algorithm.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/berthalloc/core/model"
	"github.com/kilianp07/berthalloc/core/search"
)

// Config selects what to benchmark.
type Config struct {
	Algorithms []string `json:"algorithms"`
	Runs       int      `json:"runs"`
	BaseSeed   int64    `json:"base_seed"`
	// PerRunTimeout bounds every run; zero means no timeout.
	PerRunTimeout time.Duration `json:"per_run_timeout"`
}

// DefaultConfig benchmarks every algorithm five times.
func DefaultConfig() Config {
	return Config{Algorithms: search.Names(), Runs: 5, BaseSeed: 1}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if len(c.Algorithms) == 0 {
		return errors.New("bench: no algorithms")
	}
	for _, a := range c.Algorithms {
		if !slices.Contains(search.Names(), a) {
			return fmt.Errorf("bench: unknown algorithm %q", a)
		}
	}
	if c.Runs <= 0 {
		return fmt.Errorf("bench: runs must be > 0 (got %d)", c.Runs)
	}
	if c.PerRunTimeout < 0 {
		return errors.New("bench: per_run_timeout must be >= 0")
	}
	return nil
}

// Record summarises the runs of one algorithm.
type Record struct {
	Algorithm string  `json:"algorithm"`
	Runs      int     `json:"runs"`
	CostBest  float64 `json:"cost_best"`
	CostWorst float64 `json:"cost_worst"`
	CostMean  float64 `json:"cost_mean"`
	CostStd   float64 `json:"cost_std"`

	TimeMeanMs float64 `json:"time_mean_ms"`
	TimeStdMs  float64 `json:"time_std_ms"`

	BestRunID string `json:"best_run_id"`
	BestSeed  int64  `json:"best_seed"`
	// Best is the cheapest solution over all runs.
	Best *model.Problem `json:"-"`
}

// Report is the outcome of one benchmark.
type Report struct {
	ID      string   `json:"id"`
	Records []Record `json:"records"`
}

// Runner executes benchmarks. Options are handed to every searcher.
type Runner struct {
	cfg    Config
	search search.Config
	opts   []search.Option
}

// NewRunner returns a runner after validating both configurations.
func NewRunner(cfg Config, sc search.Config, opts ...search.Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, search: sc, opts: opts}, nil
}

// Run benchmarks every configured algorithm from the same initial
// solution. Run i of each algorithm uses seed BaseSeed+i.
func (r *Runner) Run(ctx context.Context, initial *model.Problem) (Report, error) {
	rep := Report{ID: uuid.NewString()}
	for _, name := range r.cfg.Algorithms {
		rec, err := r.runAlgorithm(ctx, name, initial)
		if err != nil {
			return rep, err
		}
		rep.Records = append(rep.Records, rec)
	}
	return rep, nil
}

func (r *Runner) runAlgorithm(ctx context.Context, name string, initial *model.Problem) (Record, error) {
	costs := make([]float64, 0, r.cfg.Runs)
	timesMs := make([]float64, 0, r.cfg.Runs)
	rec := Record{Algorithm: name, Runs: r.cfg.Runs}

	for i := 0; i < r.cfg.Runs; i++ {
		seed := r.cfg.BaseSeed + int64(i)
		s, err := search.New(name, r.search, rand.New(rand.NewSource(seed)), r.opts...)
		if err != nil {
			return Record{}, err
		}
		runCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.cfg.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.cfg.PerRunTimeout)
		}
		res, err := s.Search(runCtx, initial)
		cancel()
		if err != nil {
			// A per-run timeout keeps the best found so far.
			if ctx.Err() != nil || !errors.Is(err, context.DeadlineExceeded) {
				return Record{}, fmt.Errorf("bench: %s run %d: %w", name, i, err)
			}
		}
		if rec.Best == nil || res.BestCost < rec.CostBest {
			rec.Best, rec.CostBest, rec.BestRunID, rec.BestSeed = res.Best, res.BestCost, res.RunID, seed
		}
		costs = append(costs, res.BestCost)
		timesMs = append(timesMs, float64(res.Duration.Microseconds())/1000)
	}

	rec.CostWorst = floats.Max(costs)
	rec.CostMean, rec.CostStd = meanStd(costs)
	rec.TimeMeanMs, rec.TimeStdMs = meanStd(timesMs)
	return rec, nil
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) < 2 {
		return stat.Mean(xs, nil), 0
	}
	return stat.MeanStdDev(xs, nil)
}
