// Package graph contains the strategy graph engine: the immutable node/edge
// model, a fluent builder with construction-time validation, and the executor
// that walks a strategy from its start sentinel to its finish sentinel while
// reporting every lifecycle boundary through the feature pipeline.
//
// Graphs are general directed structures. Back-edges are legal and are how
// the tool-call loop is expressed; cycles are bounded by the per-run
// iteration guard, not by the graph itself. A subgraph is usable as a single
// node from its parent's perspective, and the executor walks nesting with an
// explicit frame stack so suspension and cancellation points stay uniform at
// any depth.
package graph
