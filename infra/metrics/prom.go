package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/berthalloc/core/metrics"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "berthalloc"

// PromSink records search runs, iterations, improvements and risk summaries
// in Prometheus metrics.
type PromSink struct {
	runs         *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	bestCost     *prometheus.GaugeVec
	completion   *prometheus.GaugeVec
	iterations   *prometheus.CounterVec
	improvements *prometheus.CounterVec
	risk         *prometheus.GaugeVec
}

// NewPromSink registers the search metrics on the default Prometheus
// registerer. The exporter is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, DefaultNamespace)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer, namespace string) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_runs_total",
			Help:      "Finished search runs",
		}, []string{"algorithm"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall time of a search run",
			Buckets:   prometheus.DefBuckets,
		}, []string{"algorithm"}),
		bestCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_best_cost",
			Help:      "Total cost of the best solution of the last run",
		}, []string{"algorithm"}),
		completion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_completion_time",
			Help:      "Completion time of the best solution of the last run",
		}, []string{"algorithm"}),
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_iterations_total",
			Help:      "Search iterations by outcome",
		}, []string{"algorithm", "outcome"}),
		improvements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_improvements_total",
			Help:      "Best cost improvements",
		}, []string{"algorithm"}),
		risk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_cost",
			Help:      "Sampled cost statistics of a solution",
		}, []string{"label", "stat"}),
	}

	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.bestCost, err = register(reg, s.bestCost); err != nil {
		return nil, err
	}
	if s.completion, err = register(reg, s.completion); err != nil {
		return nil, err
	}
	if s.iterations, err = register(reg, s.iterations); err != nil {
		return nil, err
	}
	if s.improvements, err = register(reg, s.improvements); err != nil {
		return nil, err
	}
	if s.risk, err = register(reg, s.risk); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun counts the run and updates the per-algorithm gauges.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.WithLabelValues(rec.Algorithm).Inc()
	s.duration.WithLabelValues(rec.Algorithm).Observe(rec.Duration.Seconds())
	s.bestCost.WithLabelValues(rec.Algorithm).Set(rec.BestCost)
	s.completion.WithLabelValues(rec.Algorithm).Set(float64(rec.Completion))
	return nil
}

// RecordIteration counts one iteration as accepted, rejected or evaluated.
func (s *PromSink) RecordIteration(rec coremetrics.IterationRecord) error {
	s.iterations.WithLabelValues(rec.Algorithm, outcome(rec)).Inc()
	return nil
}

// RecordImprovement counts a best cost improvement.
func (s *PromSink) RecordImprovement(rec coremetrics.ImprovementRecord) error {
	s.improvements.WithLabelValues(rec.Algorithm).Inc()
	return nil
}

// RecordRisk exposes the summary statistics of a risk profile.
func (s *PromSink) RecordRisk(rec coremetrics.RiskRecord) error {
	for stat, v := range map[string]float64{
		"mean":   rec.Mean,
		"std":    rec.Std,
		"min":    rec.Min,
		"max":    rec.Max,
		"median": rec.Median,
		"p95":    rec.P95,
	} {
		s.risk.WithLabelValues(rec.Label, stat).Set(v)
	}
	s.risk.WithLabelValues(rec.Label, "samples").Set(float64(rec.Samples))
	return nil
}

func outcome(rec coremetrics.IterationRecord) string {
	switch {
	case rec.Rejected:
		return "rejected"
	case rec.Accepted:
		return "accepted"
	}
	return "evaluated"
}
