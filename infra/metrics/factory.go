package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/berthalloc/core/factory"
	coremetrics "github.com/kilianp07/berthalloc/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		c := struct {
			Namespace string `json:"namespace"`
		}{Namespace: DefaultNamespace}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		// The exporter is started separately from metrics.prometheus_addr.
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, c.Namespace)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
