// Package flow compiles declarative workflow definitions into strategy
// graphs. A flow is external configuration (typically JSON): named agents of
// a fixed kind set, transitions between them with optional conditions, and a
// tool list. The compiler emits a strategy equivalent to a hand-built one;
// the executor cannot tell them apart.
package flow
