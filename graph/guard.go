package graph

// IterationGuard bounds how many node executions one run may perform.
// Back-edges make strategy graphs legitimately cyclic, so termination is the
// model ceasing to request tools or this guard firing; the graph itself
// enforces no ceiling.
//
// A guard belongs to a single run and is not safe for concurrent use.
type IterationGuard struct {
	limit int
	count int
}

// NewIterationGuard creates a guard allowing at most limit node executions.
// A limit of zero or less disables the guard.
func NewIterationGuard(limit int) *IterationGuard {
	return &IterationGuard{limit: limit}
}

// Increment records one node execution. It returns an *IterationLimitError
// once the configured limit is exceeded.
func (g *IterationGuard) Increment() error {
	g.count++
	if g.limit > 0 && g.count > g.limit {
		return &IterationLimitError{Limit: g.limit}
	}
	return nil
}

// Count returns the number of node executions recorded so far.
func (g *IterationGuard) Count() int { return g.count }
