// Package model holds the berth allocation domain: vessels, berths and the
// per-berth timeline that keeps free intervals and vessel placements tiling
// the operating window.
//
// Berth ids double as the index into a vessel's handling durations and into
// Problem.Berths. A vessel refers to its berth through Placement.Berth, never
// through a pointer, so a Problem clones into an independent object graph.
package model
