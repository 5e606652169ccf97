package metrics_test

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/berthalloc/core/factory"
	metrics "github.com/kilianp07/berthalloc/core/metrics"
	_ "github.com/kilianp07/berthalloc/infra/metrics"
)

/*
TestNewMetricsSink covers the builtin registrations of infra/metrics.

	Cases:
	- no config yields NopSink
	- a single nop config yields the sink itself
	- a prometheus config with a custom namespace
	- several configs yield a MultiSink
	- unknown type returns an error listing the known ones
*/
func TestNewMetricsSink(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}}); err != nil {
		t.Fatalf("create nop: %v", err)
	}

	prom, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus", Conf: map[string]any{"namespace": "factory_test"}}})
	if err != nil {
		t.Fatalf("create prometheus: %v", err)
	}
	if _, ok := prom.(metrics.IterationRecorder); !ok {
		t.Fatalf("prometheus sink should record iterations, got %T", prom)
	}
	if _, ok := prom.(metrics.RiskRecorder); !ok {
		t.Fatalf("prometheus sink should record risk, got %T", prom)
	}

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}

	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestNewMetricsSinkNamesFailingEntry(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "graphite"}})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "metrics sink 1 (graphite)") {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestSinkTypes(t *testing.T) {
	types := metrics.SinkTypes()
	for _, want := range []string{"influx", "nop", "prometheus"} {
		if !slices.Contains(types, want) {
			t.Fatalf("missing sink type %q in %v", want, types)
		}
	}
}

func TestMetricsConfigDecodeYAML(t *testing.T) {
	data := `prometheus_addr: ":9100"
sinks:
  - type: nop
  - type: nop
`
	var cfg metrics.Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if len(cfg.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(cfg.Sinks))
	}
	if cfg.PrometheusAddr != ":9100" {
		t.Fatalf("prometheus_addr = %q", cfg.PrometheusAddr)
	}
	if _, err := metrics.NewMetricsSink(cfg.Sinks); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestMetricsConfigDecodeJSON_Invalid(t *testing.T) {
	data := `{"sinks":[{"type":"missing"}]}`
	var cfg metrics.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if _, err := metrics.NewMetricsSink(cfg.Sinks); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
