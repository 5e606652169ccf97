// Package monitoring reports failures to an error tracker. The process-wide
// monitor defaults to NopMonitor until Init installs another one.
package monitoring

import (
	"fmt"
	"sync"
	"time"
)

// flushTimeout bounds the flush after a panic.
const flushTimeout = 2 * time.Second

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. Nil restores NopMonitor.
func Init(m Monitor) {
	mu.Lock()
	defer mu.Unlock()
	if m == nil {
		m = NopMonitor{}
	}
	current = m
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureException(err, tags)
}

// Recover reports a panic and panics again. It must be deferred directly.
func Recover() {
	r := recover()
	if r == nil {
		return
	}
	m := get()
	m.CaptureException(fmt.Errorf("panic: %v", r), map[string]string{"panic": "true"})
	m.Flush(flushTimeout)
	panic(r)
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	get().Flush(d)
}
