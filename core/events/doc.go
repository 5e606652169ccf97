// Package events defines the search events emitted on the event bus.
//
// Available event types:
//   - IterationEvent: one search iteration finished
//   - ImprovementEvent: the best known cost went down
//   - RunEvent: a search run finished or was cancelled
package events
