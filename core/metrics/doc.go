package metrics

// Package metrics defines interfaces and implementations for collecting
// search metrics. Sinks like PromSink and InfluxSink record finished runs,
// per-iteration outcomes and risk summaries, and can be combined with
// NewMultiSink. The factory helpers return a MultiSink automatically when
// multiple sinks are configured.
