package metrics

import "time"

// RunRecord summarizes one finished search run.
type RunRecord struct {
	RunID       string
	Algorithm   string
	Iterations  int
	Evaluations int
	BestCost    float64
	Completion  int
	FrontSize   int
	Duration    time.Duration
	Time        time.Time
}

// MetricsSink records search runs for observability purposes.
type MetricsSink interface {
	RecordRun(rec RunRecord) error
}

// IterationRecord is the outcome of one search iteration.
type IterationRecord struct {
	Algorithm string
	Accepted  bool
	// Rejected marks neighbors discarded without evaluation, such as tabu
	// hits or already explored solutions.
	Rejected bool
	BestCost float64
}

// IterationRecorder records per-iteration outcomes.
type IterationRecorder interface {
	RecordIteration(rec IterationRecord) error
}

// RiskRecord summarizes the sampled cost distribution of one solution.
type RiskRecord struct {
	Label   string
	Samples int
	Mean    float64
	Std     float64
	Min     float64
	Max     float64
	Median  float64
	P95     float64
	Time    time.Time
}

// RiskRecorder records risk summaries.
type RiskRecorder interface {
	RecordRisk(rec RiskRecord) error
}

// ImprovementRecord is a new best cost found during a run.
type ImprovementRecord struct {
	RunID     string
	Algorithm string
	Iteration int
	Gain      float64
	Cost      float64
	Time      time.Time
}

// ImprovementRecorder records best-cost improvements.
type ImprovementRecorder interface {
	RecordImprovement(rec ImprovementRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error                 { return nil }
func (NopSink) RecordIteration(IterationRecord) error     { return nil }
func (NopSink) RecordRisk(RiskRecord) error               { return nil }
func (NopSink) RecordImprovement(ImprovementRecord) error { return nil }
