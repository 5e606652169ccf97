package search

import "fmt"

// Algorithm names.
const (
	NameLocal     = "local"
	NameTabu      = "tabu"
	NameAnnealing = "annealing"
	NamePareto    = "pareto"
)

// Names lists every algorithm in a stable order.
func Names() []string {
	return []string{NameLocal, NameTabu, NameAnnealing, NamePareto}
}

// LocalConfig configures LocalSearch.
type LocalConfig struct {
	Iterations int `json:"iterations"`
}

// DefaultLocalConfig returns the standard local search settings.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{Iterations: 1000}
}

// Validate checks the settings.
func (c LocalConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("search: iterations must be > 0 (got %d)", c.Iterations)
	}
	return nil
}

// TabuConfig configures TabuSearch. A run ends once Iterations non-tabu
// neighbors were evaluated, or earlier once MaxRejections draws in a
// row were refused; Result.Meta["stopped_early"] reports the latter.
type TabuConfig struct {
	// Iterations is the budget of non-tabu, fully allocated neighbors.
	// Refused draws do not count against it but do count toward
	// MaxRejections, so a run may end before the budget is spent.
	Iterations int `json:"iterations"`
	// Tenure is the capacity of the tabu list.
	Tenure int `json:"tenure"`
	// MaxRejections stops the run after that many consecutive tabu or
	// infeasible draws.
	MaxRejections int `json:"max_rejections"`
}

// DefaultTabuConfig returns the standard tabu search settings.
func DefaultTabuConfig() TabuConfig {
	return TabuConfig{Iterations: 1000, Tenure: 100, MaxRejections: 1000}
}

// Validate checks the settings.
func (c TabuConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("search: iterations must be > 0 (got %d)", c.Iterations)
	}
	if c.Tenure <= 0 {
		return fmt.Errorf("search: tenure must be > 0 (got %d)", c.Tenure)
	}
	if c.MaxRejections <= 0 {
		return fmt.Errorf("search: max_rejections must be > 0 (got %d)", c.MaxRejections)
	}
	return nil
}

// AnnealingConfig configures SimulatedAnnealing.
type AnnealingConfig struct {
	Iterations  int     `json:"iterations"`
	InitialTemp float64 `json:"initial_temp"`
	FinalTemp   float64 `json:"final_temp"`
	Alpha       float64 `json:"alpha"`
	// CostScale divides cost differences before the Metropolis test.
	CostScale float64 `json:"cost_scale"`
}

// DefaultAnnealingConfig returns the standard annealing schedule.
func DefaultAnnealingConfig() AnnealingConfig {
	return AnnealingConfig{
		Iterations:  1000,
		InitialTemp: 500,
		FinalTemp:   1,
		Alpha:       0.99,
		CostScale:   10000,
	}
}

// Validate checks the settings.
func (c AnnealingConfig) Validate() error {
	if c.Iterations < 0 {
		return fmt.Errorf("search: iterations must be >= 0 (got %d)", c.Iterations)
	}
	if c.InitialTemp <= 0 {
		return fmt.Errorf("search: initial_temp must be > 0 (got %f)", c.InitialTemp)
	}
	if c.FinalTemp <= 0 || c.FinalTemp >= c.InitialTemp {
		return fmt.Errorf("search: final_temp must lie in (0, initial_temp) (got %f)", c.FinalTemp)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("search: alpha must lie in (0,1) (got %f)", c.Alpha)
	}
	if c.CostScale <= 0 {
		return fmt.Errorf("search: cost_scale must be > 0 (got %f)", c.CostScale)
	}
	return nil
}

// ParetoConfig configures ParetoLocalSearch.
type ParetoConfig struct {
	Iterations int `json:"iterations"`
	// ExploredCapacity bounds the list of discarded solutions.
	ExploredCapacity int `json:"explored_capacity"`
}

// DefaultParetoConfig returns the standard Pareto search settings.
func DefaultParetoConfig() ParetoConfig {
	return ParetoConfig{Iterations: 1000, ExploredCapacity: 50}
}

// Validate checks the settings.
func (c ParetoConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("search: iterations must be > 0 (got %d)", c.Iterations)
	}
	if c.ExploredCapacity <= 0 {
		return fmt.Errorf("search: explored_capacity must be > 0 (got %d)", c.ExploredCapacity)
	}
	return nil
}

// Config groups the settings of every algorithm.
type Config struct {
	Local     LocalConfig     `json:"local"`
	Tabu      TabuConfig      `json:"tabu"`
	Annealing AnnealingConfig `json:"annealing"`
	Pareto    ParetoConfig    `json:"pareto"`
}

// DefaultConfig returns the standard settings of every algorithm.
func DefaultConfig() Config {
	return Config{
		Local:     DefaultLocalConfig(),
		Tabu:      DefaultTabuConfig(),
		Annealing: DefaultAnnealingConfig(),
		Pareto:    DefaultParetoConfig(),
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Local.Validate(); err != nil {
		return err
	}
	if err := c.Tabu.Validate(); err != nil {
		return err
	}
	if err := c.Annealing.Validate(); err != nil {
		return err
	}
	return c.Pareto.Validate()
}
