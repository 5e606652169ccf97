package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kilianp07/berthalloc/core/alloc"
	"github.com/kilianp07/berthalloc/core/instance"
	"github.com/kilianp07/berthalloc/core/operators"
	"github.com/kilianp07/berthalloc/core/search"
)

// InstanceConfig selects the instance. Without a path a random instance is
// generated from Random and Seed.
type InstanceConfig struct {
	Path   string             `json:"path"`
	Format string             `json:"format"`
	Seed   int64              `json:"seed"`
	Random instance.GenConfig `json:"random"`
}

// DefaultInstanceConfig generates the default random instance.
func DefaultInstanceConfig() InstanceConfig {
	return InstanceConfig{Format: instance.FormatAuto, Seed: 1, Random: instance.DefaultGenConfig()}
}

// Validate checks the section.
func (c InstanceConfig) Validate() error {
	switch c.Format {
	case "", instance.FormatAuto, instance.FormatText, instance.FormatYAML, instance.FormatJSON:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	if c.Path == "" {
		return c.Random.Validate()
	}
	return nil
}

// AllocationConfig selects the initial allocation strategy.
type AllocationConfig struct {
	Strategy    string `json:"strategy"`
	MaxRestarts int    `json:"max_restarts"`
}

// SetDefaults applies sane defaults.
func (c *AllocationConfig) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = alloc.NameTimeWindow
	}
	if c.MaxRestarts == 0 {
		c.MaxRestarts = alloc.DefaultMaxRestarts
	}
}

// Validate checks mandatory fields.
func (c AllocationConfig) Validate() error {
	if c.Strategy != alloc.NameFCFS && c.Strategy != alloc.NameTimeWindow {
		return fmt.Errorf("unknown strategy %s", c.Strategy)
	}
	if c.MaxRestarts < 0 {
		return errors.New("max_restarts must be >= 0")
	}
	return nil
}

// SearchConfig selects the algorithms and their parameters.
type SearchConfig struct {
	// Algorithms run one after the other from the same initial solution.
	Algorithms    []string               `json:"algorithms"`
	Seed          int64                  `json:"seed"`
	Operators     []string               `json:"operators"`
	ProgressEvery int                    `json:"progress_every"`
	Local         search.LocalConfig     `json:"local"`
	Tabu          search.TabuConfig      `json:"tabu"`
	Annealing     search.AnnealingConfig `json:"annealing"`
	Pareto        search.ParetoConfig    `json:"pareto"`
}

// DefaultSearchConfig returns the standard parameters of every algorithm.
func DefaultSearchConfig() SearchConfig {
	p := search.DefaultConfig()
	return SearchConfig{
		Seed:          1,
		ProgressEvery: search.DefaultProgressEvery,
		Local:         p.Local,
		Tabu:          p.Tabu,
		Annealing:     p.Annealing,
		Pareto:        p.Pareto,
	}
}

// SetDefaults applies sane defaults.
func (c *SearchConfig) SetDefaults() {
	if len(c.Algorithms) == 0 {
		c.Algorithms = []string{search.NameAnnealing}
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = search.DefaultProgressEvery
	}
}

// Params returns the per-algorithm parameters.
func (c SearchConfig) Params() search.Config {
	return search.Config{Local: c.Local, Tabu: c.Tabu, Annealing: c.Annealing, Pareto: c.Pareto}
}

// Validate checks the algorithm names, the operators and the parameters.
func (c SearchConfig) Validate() error {
	for _, a := range c.Algorithms {
		if !slices.Contains(search.Names(), a) {
			return fmt.Errorf("unknown algorithm %s", a)
		}
	}
	if _, err := operators.ByName(c.Operators); err != nil {
		return err
	}
	return c.Params().Validate()
}

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// OutputConfig controls the files written after a run.
type OutputConfig struct {
	Dir     string   `json:"dir"`
	Formats []string `json:"formats"`
	// Plot writes an HTML report with the charts of the run.
	Plot bool `json:"plot"`
	// RiskSamples also writes every sampled cost next to the summaries.
	RiskSamples bool `json:"risk_samples"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{FormatJSON}
	}
}

// Validate checks mandatory fields.
func (c OutputConfig) Validate() error {
	for _, f := range c.Formats {
		if f != FormatJSON && f != FormatCSV {
			return fmt.Errorf("unknown format %s", f)
		}
	}
	return nil
}

// Wants reports whether format is enabled.
func (c OutputConfig) Wants(format string) bool {
	return slices.Contains(c.Formats, format)
}
