package config

import "errors"

// MonitoringConfig defines settings for Sentry error reporting. An empty DSN
// disables reporting.
type MonitoringConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}

// Validate checks mandatory fields.
func (c MonitoringConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return errors.New("traces_sample_rate must lie in [0,1]")
	}
	return nil
}
