// Package search implements the metaheuristics that improve a feasible berth
// allocation: local search, tabu search, simulated annealing and Pareto
// local search.
//
// Every searcher follows the same shape: a Config with DefaultConfig and
// Validate, a constructor taking the config, an injected *rand.Rand and
// functional options, and Search(ctx, initial) returning a Result. Neighbors
// are always produced on clones, so the solution passed in is never
// modified. Progress is published on an optional event bus and recorded on
// an optional metrics sink.
package search
