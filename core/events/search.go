package events

import "time"

// IterationEvent is published after every counted iteration. Temperature is
// only set by simulated annealing and FrontSize only by Pareto search.
type IterationEvent struct {
	RunID       string
	Algorithm   string
	Iteration   int
	BestCost    float64
	CurrentCost float64
	Temperature float64
	FrontSize   int
	Accepted    bool
}

// ImprovementEvent is published when a run finds a cheaper solution.
type ImprovementEvent struct {
	RunID     string
	Algorithm string
	Iteration int
	Previous  float64
	Cost      float64
}

// RunEvent closes a run.
type RunEvent struct {
	RunID       string
	Algorithm   string
	Iterations  int
	Evaluations int
	BestCost    float64
	Duration    time.Duration
	Err         error
}
