package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(rec RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordIteration forwards iteration outcomes to sinks that support them.
func (m *MultiSink) RecordIteration(rec IterationRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(IterationRecorder); ok {
			if err := r.RecordIteration(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRisk forwards risk summaries to sinks that support them.
func (m *MultiSink) RecordRisk(rec RiskRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(RiskRecorder); ok {
			if err := r.RecordRisk(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordImprovement forwards improvements to sinks that support them.
func (m *MultiSink) RecordImprovement(rec ImprovementRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ImprovementRecorder); ok {
			if err := r.RecordImprovement(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases the sinks holding connections.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
