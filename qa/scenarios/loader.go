package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/berthalloc/core/instance"
)

// Expected lists the checks of a scenario. Nil pointers are not checked.
type Expected struct {
	Dropped     int      `yaml:"dropped"`
	Infeasible  bool     `yaml:"infeasible,omitempty"`
	InitialCost *float64 `yaml:"initial_cost,omitempty"`
	Completion  *int     `yaml:"completion,omitempty"`
	MaxBestCost *float64 `yaml:"max_best_cost,omitempty"`
}

// Scenario is an instance together with the allocation, the optional search
// and the expected outcome.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Instance    instance.Data `yaml:"instance"`
	Allocation  string        `yaml:"allocation"`
	Algorithm   string        `yaml:"algorithm,omitempty"`
	Iterations  int           `yaml:"iterations,omitempty"`
	Seed        int64         `yaml:"seed"`
	Expected    Expected      `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
