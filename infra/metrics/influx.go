package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/berthalloc/core/metrics"
	"github.com/kilianp07/berthalloc/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes run and risk records to an InfluxDB instance using the
// official client. Iterations are too chatty for it and are not recorded.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one search_run point.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoint(rec))
}

// RecordRisk writes one risk_profile point.
func (s *InfluxSink) RecordRisk(rec coremetrics.RiskRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, riskPoint(rec))
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func runPoint(rec coremetrics.RunRecord) *write.Point {
	return write.NewPointWithMeasurement("search_run").
		AddTag("algorithm", rec.Algorithm).
		AddTag("run_id", rec.RunID).
		AddField("iterations", rec.Iterations).
		AddField("evaluations", rec.Evaluations).
		AddField("best_cost", round3(rec.BestCost)).
		AddField("completion", rec.Completion).
		AddField("front_size", rec.FrontSize).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
}

func riskPoint(rec coremetrics.RiskRecord) *write.Point {
	return write.NewPointWithMeasurement("risk_profile").
		AddTag("label", rec.Label).
		AddField("samples", rec.Samples).
		AddField("mean", round3(rec.Mean)).
		AddField("std", round3(rec.Std)).
		AddField("min", round3(rec.Min)).
		AddField("max", round3(rec.Max)).
		AddField("median", round3(rec.Median)).
		AddField("p95", round3(rec.P95)).
		SetTime(rec.Time)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
