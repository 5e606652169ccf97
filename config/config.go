package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/berthalloc/core/bench"
	"github.com/kilianp07/berthalloc/core/metrics"
	"github.com/kilianp07/berthalloc/core/simulation"
)

// EnvPrefix marks environment variables overriding file values. Nested keys
// are separated by a double underscore, e.g. BERTH_SEARCH__SEED=7.
const EnvPrefix = "BERTH_"

type Config struct {
	Instance   InstanceConfig    `json:"instance"`
	Allocation AllocationConfig  `json:"allocation"`
	Search     SearchConfig      `json:"search"`
	Simulation simulation.Config `json:"simulation"`
	Bench      bench.Config      `json:"bench"`
	Metrics    metrics.Config    `json:"metrics"`
	Output     OutputConfig      `json:"output"`
	Logging    LoggingConfig     `json:"logging"`
	Monitoring MonitoringConfig  `json:"monitoring"`
}

// Default returns the configuration used when no file sets a value.
func Default() Config {
	cfg := base()
	cfg.SetDefaults()
	return cfg
}

// base holds the scalar defaults. Slices stay nil so decoded lists replace
// them instead of being merged element by element.
func base() Config {
	return Config{
		Instance:   DefaultInstanceConfig(),
		Search:     DefaultSearchConfig(),
		Simulation: simulation.DefaultConfig(),
		Bench:      bench.Config{Runs: 5, BaseSeed: 1},
	}
}

// SetDefaults fills the fields left empty.
func (c *Config) SetDefaults() {
	c.Allocation.SetDefaults()
	c.Search.SetDefaults()
	c.Output.SetDefaults()
	c.Logging.SetDefaults()
	if len(c.Bench.Algorithms) == 0 {
		c.Bench.Algorithms = c.Search.Algorithms
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"instance", c.Instance.Validate},
		{"allocation", c.Allocation.Validate},
		{"search", c.Search.Validate},
		{"simulation", c.Simulation.Validate},
		{"bench", c.Bench.Validate},
		{"output", c.Output.Validate},
		{"logging", c.Logging.Validate},
		{"monitoring", c.Monitoring.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("config %s: %w", ch.name, err)
		}
	}
	return nil
}

// Load reads the configuration. An empty path keeps the defaults. A .env
// file next to the configuration or in the working directory is loaded
// first, then BERTH_ environment variables override file values.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(path); err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	cfg := base()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// loadDotEnv loads the .env files that exist. Variables already set in the
// environment win.
func loadDotEnv(path string) error {
	candidates := []string{".env"}
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			candidates = append(candidates, filepath.Join(dir, ".env"))
		}
	}
	for _, f := range candidates {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
