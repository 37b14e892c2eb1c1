package graph

import "fmt"

// ConstructionError reports an invalid graph at build time: unknown node
// references, duplicate ids, or an unreachable finish sentinel. Construction
// errors are never retried; fix the graph definition.
type ConstructionError struct {
	Graph   string
	Message string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("graph %q: %s", e.Graph, e.Message)
}

// NoTransitionError reports that a node produced an output no outgoing edge
// accepts. The run is aborted; edge predicates should cover every output the
// node can produce.
type NoTransitionError struct {
	Node string
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transition found from node %q", e.Node)
}

// ToolNotDefinedError reports that the model requested a tool name with no
// matching registry entry. The run is aborted.
type ToolNotDefinedError struct {
	Name string
}

func (e *ToolNotDefinedError) Error() string {
	return fmt.Sprintf("tool %q not defined", e.Name)
}

// IterationLimitError reports that a run executed more nodes than its
// configured ceiling allows. Raised by the iteration guard, not the graph.
type IterationLimitError struct {
	Limit int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("iteration limit exceeded: %d", e.Limit)
}
