package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	errs    []error
	tags    map[string]string
	flushed time.Duration
}

func (r *recorder) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = tags
}
func (r *recorder) Flush(d time.Duration) { r.flushed = d }

func TestGlobalMonitor(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	t.Cleanup(func() { Init(nil) })

	CaptureException(errors.New("search failed"), map[string]string{"command": "solve"})
	CaptureException(nil, nil)
	Flush(time.Second)

	assert.Len(t, rec.errs, 1)
	assert.Equal(t, "solve", rec.tags["command"])
	assert.Equal(t, time.Second, rec.flushed)

	Init(nil)
	CaptureException(errors.New("ignored"), nil)
	assert.Len(t, rec.errs, 1)
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	t.Cleanup(func() { Init(nil) })

	assert.PanicsWithValue(t, "boom", func() {
		defer Recover()
		panic("boom")
	})
	if assert.Len(t, rec.errs, 1) {
		assert.EqualError(t, rec.errs[0], "panic: boom")
	}
	assert.Equal(t, "true", rec.tags["panic"])
	assert.Equal(t, flushTimeout, rec.flushed)
}
