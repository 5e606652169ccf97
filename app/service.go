package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/berthalloc/config"
	"github.com/kilianp07/berthalloc/core/alloc"
	"github.com/kilianp07/berthalloc/core/bench"
	"github.com/kilianp07/berthalloc/core/events"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/instance"
	coremetrics "github.com/kilianp07/berthalloc/core/metrics"
	"github.com/kilianp07/berthalloc/core/model"
	"github.com/kilianp07/berthalloc/core/operators"
	"github.com/kilianp07/berthalloc/core/search"
	"github.com/kilianp07/berthalloc/core/simulation"
	"github.com/kilianp07/berthalloc/infra/logger"
	inframetrics "github.com/kilianp07/berthalloc/infra/metrics"
	"github.com/kilianp07/berthalloc/internal/eventbus"
	"github.com/kilianp07/berthalloc/pkg/export"
)

// eventBuffer is the capacity of the service's own bus subscription.
const eventBuffer = 64

// Service wires the configuration to the allocation, search, simulation and
// reporting components.
type Service struct {
	cfg  *config.Config
	log  logger.Logger
	sink coremetrics.MetricsSink
	bus  *eventbus.Bus
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	return &Service{cfg: cfg, log: logger.New("service"), sink: sink, bus: eventbus.New()}, nil
}

// Candidate is one solution ranked by its sampled cost.
type Candidate struct {
	Label    string
	Solution *model.Problem
	Profile  simulation.Profile
}

// Outcome is the result of Solve.
type Outcome struct {
	Name    string
	Dropped []instance.Dropped
	Initial *model.Problem
	Results []search.Result
	// Ranking orders the initial solution, the best solution of every run
	// and the Pareto front members by mean sampled cost.
	Ranking []Candidate
}

// Best returns the cheapest run. Ties go to the run listed first.
func (o *Outcome) Best() (search.Result, bool) {
	if len(o.Results) == 0 {
		return search.Result{}, false
	}
	best := o.Results[0]
	for _, r := range o.Results[1:] {
		if r.BestCost < best.BestCost {
			best = r
		}
	}
	return best, true
}

// Problem loads or generates the configured instance and builds it. Vessels
// no berth can serve are dropped and logged.
func (s *Service) Problem() (*model.Problem, string, []instance.Dropped, error) {
	data, err := s.instanceData()
	if err != nil {
		return nil, "", nil, err
	}
	p, dropped, err := data.Build()
	if err != nil {
		return nil, "", nil, err
	}
	for _, d := range dropped {
		s.log.Warnf("vessel %d dropped: %s", d.Index, d.Reason)
	}
	s.log.Infof("instance %s: %d vessels on %d berths", data.Name, len(p.Vessels), len(p.Berths))
	return p, data.Name, dropped, nil
}

func (s *Service) instanceData() (*instance.Data, error) {
	ic := s.cfg.Instance
	if ic.Path != "" {
		return instance.Load(ic.Path, ic.Format)
	}
	return s.Generate()
}

// Generate draws a random instance from the instance.random settings.
func (s *Service) Generate() (*instance.Data, error) {
	ic := s.cfg.Instance
	return instance.Generate(ic.Random, rand.New(rand.NewSource(ic.Seed)))
}

// Initial computes the initial allocation with the configured strategy.
func (s *Service) Initial(p *model.Problem) (*model.Problem, error) {
	ac := s.cfg.Allocation
	strategy, err := alloc.New(ac.Strategy, rand.New(rand.NewSource(s.cfg.Search.Seed)), ac.MaxRestarts)
	if err != nil {
		return nil, err
	}
	out, err := strategy.Allocate(p)
	if err != nil {
		return nil, fmt.Errorf("initial allocation: %w", err)
	}
	s.log.Infof("initial %s allocation: cost %.2f completion %d",
		strategy.Name(), fitness.TotalCost(out), fitness.CompleteTime(out))
	return out, nil
}

func (s *Service) searchOptions() ([]search.Option, error) {
	ops, err := operators.ByName(s.cfg.Search.Operators)
	if err != nil {
		return nil, err
	}
	return []search.Option{
		search.WithLogger(logger.New("search")),
		search.WithBus(s.bus),
		search.WithSink(s.sink),
		search.WithOperators(ops...),
		search.WithProgressEvery(s.cfg.Search.ProgressEvery),
	}, nil
}

// Solve runs every configured algorithm from the same initial allocation,
// ranks the candidates by sampled cost and writes the outputs. A canceled
// context stops the remaining runs; what was found so far is still ranked
// and written and the context error is returned with the outcome.
func (s *Service) Solve(ctx context.Context) (*Outcome, error) {
	stop := s.observe(ctx)
	defer stop()

	p, name, dropped, err := s.Problem()
	if err != nil {
		return nil, err
	}
	initial, err := s.Initial(p)
	if err != nil {
		return nil, err
	}
	opts, err := s.searchOptions()
	if err != nil {
		return nil, err
	}

	out := &Outcome{Name: name, Dropped: dropped, Initial: initial}
	var runErr error
	for i, algo := range s.cfg.Search.Algorithms {
		rng := rand.New(rand.NewSource(s.cfg.Search.Seed + int64(i)))
		sr, err := search.New(algo, s.cfg.Search.Params(), rng, opts...)
		if err != nil {
			return nil, err
		}
		res, err := sr.Search(ctx, initial)
		if res.Best != nil {
			out.Results = append(out.Results, res)
		}
		if err != nil {
			if ctx.Err() == nil {
				return nil, fmt.Errorf("%s: %w", algo, err)
			}
			s.log.Warnf("%s interrupted after %d iterations", algo, res.Iterations)
			runErr = err
			break
		}
	}

	if out.Ranking, err = s.rank(out); err != nil {
		return nil, err
	}
	if err := s.writeSolve(out); err != nil {
		return nil, err
	}
	return out, runErr
}

func (s *Service) rank(out *Outcome) ([]Candidate, error) {
	var (
		labels []string
		sols   []*model.Problem
		seen   = map[string]bool{}
	)
	add := func(label string, p *model.Problem) {
		sig := p.Signature()
		if seen[sig] {
			return
		}
		seen[sig] = true
		labels = append(labels, label)
		sols = append(sols, p)
	}
	add("initial", out.Initial)
	for _, r := range out.Results {
		add(r.Algorithm, r.Best)
		for i, m := range r.Front {
			add(fmt.Sprintf("%s-front-%d", r.Algorithm, i), m)
		}
	}
	ev, err := simulation.New(s.cfg.Simulation)
	if err != nil {
		return nil, err
	}
	ranked, err := ev.Compare(sols, rand.New(rand.NewSource(s.cfg.Search.Seed)), s.cfg.Simulation.Samples)
	if err != nil {
		return nil, err
	}
	res := make([]Candidate, len(ranked))
	for i, r := range ranked {
		res[i] = Candidate{Label: labels[r.Index], Solution: sols[r.Index], Profile: r.Profile}
		s.recordRisk(res[i])
	}
	return res, nil
}

// Simulate draws the risk profile of one solution. An empty path profiles
// the initial allocation, otherwise the solution is read from a JSON file
// written by Solve.
func (s *Service) Simulate(ctx context.Context, solutionPath string) (Candidate, error) {
	stop := s.observe(ctx)
	defer stop()

	p, _, _, err := s.Problem()
	if err != nil {
		return Candidate{}, err
	}
	var c Candidate
	if solutionPath == "" {
		if c.Solution, err = s.Initial(p); err != nil {
			return Candidate{}, err
		}
		c.Label = s.cfg.Allocation.Strategy
	} else {
		if c.Solution, c.Label, err = readSolution(p, solutionPath); err != nil {
			return Candidate{}, err
		}
	}
	ev, err := simulation.New(s.cfg.Simulation)
	if err != nil {
		return Candidate{}, err
	}
	if c.Profile, err = ev.RiskProfile(c.Solution, rand.New(rand.NewSource(s.cfg.Search.Seed)), s.cfg.Simulation.Samples); err != nil {
		return Candidate{}, err
	}
	s.recordRisk(c)
	return c, s.writeRisk([]Candidate{c})
}

func readSolution(p *model.Problem, path string) (*model.Problem, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	sol, err := export.ReadSolution(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	out, err := export.Apply(p, sol)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	label := sol.Label
	if label == "" {
		label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return out, label, nil
}

// Bench repeats every configured algorithm bench.runs times and writes the
// summary records.
func (s *Service) Bench(ctx context.Context) (bench.Report, error) {
	stop := s.observe(ctx)
	defer stop()

	p, _, _, err := s.Problem()
	if err != nil {
		return bench.Report{}, err
	}
	initial, err := s.Initial(p)
	if err != nil {
		return bench.Report{}, err
	}
	opts, err := s.searchOptions()
	if err != nil {
		return bench.Report{}, err
	}
	runner, err := bench.NewRunner(s.cfg.Bench, s.cfg.Search.Params(), opts...)
	if err != nil {
		return bench.Report{}, err
	}
	rep, err := runner.Run(ctx, initial)
	if err != nil {
		return bench.Report{}, err
	}
	for _, r := range rep.Records {
		s.log.Infof("%s: best %.2f mean %.2f std %.2f over %d runs, %.1f ms per run",
			r.Algorithm, r.CostBest, r.CostMean, r.CostStd, r.Runs, r.TimeMeanMs)
	}
	return rep, s.writeBench(rep)
}

// Close releases the event bus and the sinks holding connections.
func (s *Service) Close() error {
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}

func (s *Service) recordRisk(c Candidate) {
	sum := c.Profile.Summary
	s.log.Infof("risk %s: mean %.1f std %.1f p95 %.1f", c.Label, sum.Mean, sum.Std, sum.P95)
	rec, ok := s.sink.(coremetrics.RiskRecorder)
	if !ok {
		return
	}
	if err := rec.RecordRisk(coremetrics.RiskRecord{
		Label:   c.Label,
		Samples: sum.N,
		Mean:    sum.Mean,
		Std:     sum.Std,
		Min:     sum.Min,
		Max:     sum.Max,
		Median:  sum.Median,
		P95:     sum.P95,
	}); err != nil {
		s.log.Errorf("record risk: %v", err)
	}
}

// observe starts the metrics exporter, the event collector and the event
// log for the duration of one command. The returned func stops them.
func (s *Service) observe(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := inframetrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	collected := inframetrics.StartEventCollector(ctx, s.bus, s.sink, s.log)
	logged := s.logEvents(ctx)
	return func() {
		cancel()
		<-collected
		<-logged
		if n := s.bus.Dropped(); n > 0 {
			s.log.Debugf("event bus dropped %d events", n)
		}
	}
}

func (s *Service) logEvents(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	sub := s.bus.SubscribeBuffered(eventBuffer)
	go func() {
		defer close(done)
		defer s.bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.ImprovementEvent:
					s.log.Debugf("%s improved %.2f -> %.2f at iteration %d", e.Algorithm, e.Previous, e.Cost, e.Iteration)
				case events.RunEvent:
					if e.Err != nil {
						s.log.Warnf("%s run %s ended: %v", e.Algorithm, e.RunID, e.Err)
					}
				}
			}
		}
	}()
	return done
}
