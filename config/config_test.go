package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/berthalloc/core/alloc"
	"github.com/kilianp07/berthalloc/core/search"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `instance:
  path: "instances/port.txt"
  format: "text"
allocation:
  strategy: "fcfs"
search:
  algorithms: ["tabu", "pareto"]
  seed: 42
  operators: ["move_in_berth"]
  tabu:
    iterations: 200
    tenure: 10
    max_rejections: 50
simulation:
  samples: 250
bench:
  runs: 3
  per_run_timeout: "2s"
metrics:
  sinks:
    - type: "nop"
  prometheus_addr: ":9100"
output:
  dir: "results"
  formats: ["csv", "json"]
  plot: true
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "instances/port.txt", cfg.Instance.Path)
	assert.Equal(t, alloc.NameFCFS, cfg.Allocation.Strategy)
	assert.Equal(t, alloc.DefaultMaxRestarts, cfg.Allocation.MaxRestarts)
	assert.Equal(t, []string{"tabu", "pareto"}, cfg.Search.Algorithms)
	assert.Equal(t, int64(42), cfg.Search.Seed)
	assert.Equal(t, 10, cfg.Search.Tabu.Tenure)
	assert.Equal(t, search.DefaultConfig().Annealing, cfg.Search.Annealing, "untouched section keeps defaults")
	assert.Equal(t, 250, cfg.Simulation.Samples)
	assert.Equal(t, 25.0, cfg.Simulation.DelayPenalty)
	assert.Equal(t, 3, cfg.Bench.Runs)
	assert.Equal(t, 2*time.Second, cfg.Bench.PerRunTimeout)
	assert.Equal(t, []string{"tabu", "pareto"}, cfg.Bench.Algorithms)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, ":9100", cfg.Metrics.PrometheusAddr)
	assert.True(t, cfg.Output.Wants(FormatCSV))
	assert.True(t, cfg.Output.Plot)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"search":{"algorithms":["local"],"local":{"iterations":10}}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, cfg.Search.Algorithms)
	assert.Equal(t, 10, cfg.Search.Local.Iterations)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, []string{search.NameAnnealing}, cfg.Search.Algorithms)
	assert.Equal(t, alloc.NameTimeWindow, cfg.Allocation.Strategy)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, []string{FormatJSON}, cfg.Output.Formats)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Instance.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "search:\n  seed: 3\n")
	t.Setenv("BERTH_SEARCH__SEED", "7")
	t.Setenv("BERTH_LOGGING__LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Search.Seed)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadDotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "output:\n  dir: results\n")
	writeFile(t, dir, ".env", "BERTH_OUTPUT__DIR=from-dotenv\n")
	t.Setenv("BERTH_OUTPUT__DIR", "")
	require.NoError(t, os.Unsetenv("BERTH_OUTPUT__DIR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Output.Dir)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown algorithm": "search:\n  algorithms: [genetic]\n",
		"unknown operator":  "search:\n  operators: [two_opt]\n",
		"unknown strategy":  "allocation:\n  strategy: greedy\n",
		"bad alpha":         "search:\n  annealing:\n    alpha: 1.5\n",
		"bad level":         "logging:\n  level: loud\n",
		"bad output":        "output:\n  formats: [xml]\n",
		"bad simulation":    "simulation:\n  arrival_delay_min: 9\n  arrival_delay_max: 2\n",
		"bad bench":         "bench:\n  runs: -1\n",
		"bad instance":      "instance:\n  format: xml\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", data)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(writeFile(t, t.TempDir(), "config.toml", "a = 1"))
	assert.Error(t, err, "unsupported extension")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
