// Package infra contains technical adapters such as metrics exporters,
// error reporting and chart rendering. These packages should depend only on
// the interfaces defined in the core packages.
package infra
