package metrics

import "testing"

type recordSink struct {
	count int
}

func (r *recordSink) RecordRun(RunRecord) error {
	r.count++
	return nil
}

func (r *recordSink) RecordRisk(RiskRecord) error {
	r.count++
	return nil
}

// runOnly implements no optional recorder.
type runOnly struct{ runs int }

func (r *runOnly) RecordRun(RunRecord) error {
	r.runs++
	return nil
}

// TestMultiSink ensures records are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &runOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordRun(RunRecord{Algorithm: "ls"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordRisk(RiskRecord{Label: "ls"}); err != nil {
		t.Fatalf("record risk: %v", err)
	}
	if err := m.RecordIteration(IterationRecord{}); err != nil {
		t.Fatalf("record iteration: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("records not forwarded")
	}
	if s3.runs != 1 {
		t.Fatalf("expected 1 run on plain sink, got %d", s3.runs)
	}
}

type closer struct {
	runOnly
	closed bool
}

func (c *closer) Close() { c.closed = true }

func TestMultiSinkClose(t *testing.T) {
	c := &closer{}
	m := NewMultiSink(&runOnly{}, c)
	m.Close()
	if !c.closed {
		t.Fatalf("closable sink not closed")
	}
}
