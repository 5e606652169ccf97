package monitoring

import (
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/berthalloc/config"
	coremon "github.com/kilianp07/berthalloc/core/monitoring"
)

// ServiceTag is set on every event reported by the solver.
const ServiceTag = "berthalloc"

// NewSentryMonitor reports solver failures to Sentry. An empty DSN yields a
// NopMonitor. Without a configured release the module version from the
// build info is used.
func NewSentryMonitor(cfg config.MonitoringConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          release(cfg.Release),
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, err
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", ServiceTag)
	})
	return &sentryMonitor{}, nil
}

func release(configured string) string {
	if configured != "" {
		return configured
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return ServiceTag + "@" + info.Main.Version
	}
	return ""
}

type sentryMonitor struct{}

// CaptureException reports err with tags scoped to this event only.
func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
