package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/berthalloc/core/events"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/logger"
	"github.com/kilianp07/berthalloc/core/metrics"
	"github.com/kilianp07/berthalloc/core/model"
	"github.com/kilianp07/berthalloc/core/operators"
	"github.com/kilianp07/berthalloc/internal/eventbus"
)

// ErrUnallocated is returned when a search starts from a solution that does
// not place every vessel.
var ErrUnallocated = errors.New("search: initial solution is not fully allocated")

// DefaultProgressEvery is the iteration period of debug progress logs.
const DefaultProgressEvery = 100

// Searcher improves an initial allocation.
type Searcher interface {
	Name() string
	Search(ctx context.Context, initial *model.Problem) (Result, error)
}

// Result is the outcome of one search run.
type Result struct {
	RunID     string
	Algorithm string
	// Best never aliases the initial solution.
	Best     *model.Problem
	BestCost float64
	// Front holds the Pareto front ordered by cost. Only Pareto search
	// fills it.
	Front []*model.Problem
	// Trajectory starts with the initial cost and holds the best cost after
	// every counted iteration.
	Trajectory  []float64
	Iterations  int
	Evaluations int
	Duration    time.Duration
	Meta        map[string]any
}

// Option customises a searcher.
type Option func(*options)

type options struct {
	log           logger.Logger
	bus           eventbus.EventBus
	sink          metrics.MetricsSink
	ops           []operators.Operator
	progressEvery int
}

func newOptions(opts []Option) options {
	o := options{
		log:           logger.Nop{},
		sink:          metrics.NopSink{},
		ops:           operators.Defaults(),
		progressEvery: DefaultProgressEvery,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. A nil logger keeps the silent default.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithBus publishes progress events on b.
func WithBus(b eventbus.EventBus) Option {
	return func(o *options) { o.bus = b }
}

// WithSink records run and iteration metrics on s. Iteration metrics are
// only recorded when s implements metrics.IterationRecorder.
func WithSink(s metrics.MetricsSink) Option {
	return func(o *options) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithOperators replaces the neighborhood operators.
func WithOperators(ops ...operators.Operator) Option {
	return func(o *options) {
		if len(ops) > 0 {
			o.ops = ops
		}
	}
}

// WithProgressEvery sets how often progress is logged at debug level.
func WithProgressEvery(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.progressEvery = n
		}
	}
}

// New builds the searcher registered under name from its section of cfg.
func New(name string, cfg Config, rng *rand.Rand, opts ...Option) (Searcher, error) {
	switch name {
	case NameLocal:
		return nonNil(NewLocal(cfg.Local, rng, opts...))
	case NameTabu:
		return nonNil(NewTabu(cfg.Tabu, rng, opts...))
	case NameAnnealing:
		return nonNil(NewAnnealing(cfg.Annealing, rng, opts...))
	case NamePareto:
		return nonNil(NewPareto(cfg.Pareto, rng, opts...))
	default:
		return nil, fmt.Errorf("search: unknown algorithm %q (known: %v)", name, Names())
	}
}

func nonNil[S Searcher](s S, err error) (Searcher, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

func checkRng(rng *rand.Rand) error {
	if rng == nil {
		return errors.New("search: nil random source")
	}
	return nil
}

func checkInitial(p *model.Problem) error {
	if p == nil {
		return errors.New("search: nil initial solution")
	}
	if !p.AllAllocated() {
		return ErrUnallocated
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("search: invalid initial solution: %w", err)
	}
	return nil
}

// run collects the bookkeeping shared by every algorithm.
type run struct {
	id          string
	algorithm   string
	opts        *options
	started     time.Time
	trajectory  []float64
	iterations  int
	evaluations int
	meta        map[string]any
}

func (o *options) begin(algorithm string, initial *model.Problem) (*run, error) {
	if err := checkInitial(initial); err != nil {
		return nil, err
	}
	r := &run{
		id:         uuid.NewString(),
		algorithm:  algorithm,
		opts:       o,
		started:    time.Now(),
		trajectory: []float64{fitness.TotalCost(initial)},
		meta:       map[string]any{},
	}
	o.log.Infof("%s search %s started: %d vessels on %d berths, initial cost %.2f",
		algorithm, r.id, len(initial.Vessels), len(initial.Berths), r.trajectory[0])
	return r, nil
}

func (r *run) publish(e eventbus.Event) {
	if r.opts.bus != nil {
		r.opts.bus.Publish(e)
	}
}

func (r *run) record(rec metrics.IterationRecord) {
	ir, ok := r.opts.sink.(metrics.IterationRecorder)
	if !ok {
		return
	}
	rec.Algorithm = r.algorithm
	if err := ir.RecordIteration(rec); err != nil {
		r.opts.log.Warnf("record iteration: %v", err)
	}
}

// step closes one counted iteration.
func (r *run) step(ev events.IterationEvent, rejected bool) {
	r.iterations = ev.Iteration
	r.trajectory = append(r.trajectory, ev.BestCost)
	ev.RunID, ev.Algorithm = r.id, r.algorithm
	r.publish(ev)
	r.record(metrics.IterationRecord{Accepted: ev.Accepted, Rejected: rejected, BestCost: ev.BestCost})
	if ev.Iteration%r.opts.progressEvery == 0 {
		fields := map[string]any{
			"run_id":       r.id,
			"iteration":    ev.Iteration,
			"best_cost":    ev.BestCost,
			"current_cost": ev.CurrentCost,
		}
		if ev.Temperature > 0 {
			fields["temperature"] = ev.Temperature
		}
		if ev.FrontSize > 0 {
			fields["front_size"] = ev.FrontSize
		}
		r.opts.log.Debugw(r.algorithm+" progress", fields)
	}
}

// reject records a draw that does not count as an iteration.
func (r *run) reject(bestCost float64) {
	r.record(metrics.IterationRecord{Rejected: true, BestCost: bestCost})
}

func (r *run) improved(iteration int, previous, cost float64) {
	r.publish(events.ImprovementEvent{
		RunID:     r.id,
		Algorithm: r.algorithm,
		Iteration: iteration,
		Previous:  previous,
		Cost:      cost,
	})
}

func (r *run) finish(best *model.Problem, front []*model.Problem, err error) (Result, error) {
	res := Result{
		RunID:       r.id,
		Algorithm:   r.algorithm,
		Best:        best.Clone(),
		BestCost:    fitness.TotalCost(best),
		Trajectory:  r.trajectory,
		Iterations:  r.iterations,
		Evaluations: r.evaluations,
		Duration:    time.Since(r.started),
		Meta:        r.meta,
	}
	for _, p := range front {
		res.Front = append(res.Front, p.Clone())
	}
	r.publish(events.RunEvent{
		RunID:       r.id,
		Algorithm:   r.algorithm,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		BestCost:    res.BestCost,
		Duration:    res.Duration,
		Err:         err,
	})
	rec := metrics.RunRecord{
		RunID:       r.id,
		Algorithm:   r.algorithm,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		BestCost:    res.BestCost,
		Completion:  fitness.CompleteTime(best),
		FrontSize:   len(res.Front),
		Duration:    res.Duration,
		Time:        time.Now(),
	}
	if rerr := r.opts.sink.RecordRun(rec); rerr != nil {
		r.opts.log.Warnf("record run %s: %v", r.id, rerr)
	}
	if err != nil {
		r.opts.log.Warnf("%s search %s stopped after %d iterations: %v", r.algorithm, r.id, res.Iterations, err)
	} else {
		r.opts.log.Infof("%s search %s finished: %d iterations, best cost %.2f in %s",
			r.algorithm, r.id, res.Iterations, res.BestCost, res.Duration)
	}
	return res, err
}

// fifo is a bounded first-in first-out set of schedule signatures.
type fifo struct {
	capacity int
	order    []string
	count    map[string]int
}

func newFIFO(capacity int) *fifo {
	return &fifo{capacity: capacity, count: make(map[string]int, capacity)}
}

func (f *fifo) push(sig string) {
	if len(f.order) == f.capacity {
		old := f.order[0]
		f.order = f.order[1:]
		if f.count[old]--; f.count[old] == 0 {
			delete(f.count, old)
		}
	}
	f.order = append(f.order, sig)
	f.count[sig]++
}

func (f *fifo) contains(sig string) bool { return f.count[sig] > 0 }

func (f *fifo) len() int { return len(f.order) }
