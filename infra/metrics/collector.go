package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/berthalloc/core/events"
	coremetrics "github.com/kilianp07/berthalloc/core/metrics"
	"github.com/kilianp07/berthalloc/infra/logger"
	"github.com/kilianp07/berthalloc/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records improvement
// events on sinks implementing coremetrics.ImprovementRecorder. It stops
// when the context is canceled or the bus is closed. The returned channel
// is closed once the collector has stopped. Sink errors are logged on log,
// which may be nil.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if log == nil {
		log = logger.NopLogger{}
	}
	rec, ok := sink.(coremetrics.ImprovementRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.ImprovementEvent); ok {
					err := rec.RecordImprovement(coremetrics.ImprovementRecord{
						RunID:     e.RunID,
						Algorithm: e.Algorithm,
						Iteration: e.Iteration,
						Gain:      e.Previous - e.Cost,
						Cost:      e.Cost,
						Time:      time.Now(),
					})
					if err != nil {
						log.Warnf("record improvement of run %s: %v", e.RunID, err)
					}
				}
			}
		}
	}()
	return done
}
