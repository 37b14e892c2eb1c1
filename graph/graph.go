package graph

import "context"

// Reserved node ids for the synthetic sentinels every subgraph carries.
// Edges target FinishNodeID to leave a subgraph; the executor starts each
// subgraph traversal at StartNodeID.
const (
	StartNodeID  = "__start__"
	FinishNodeID = "__finish__"
)

// Body is a node's unit of work. It receives the per-run context handle for
// model and tool access and returns the node's output, which edge predicates
// inspect to pick the next transition.
type Body func(ctx context.Context, rc *RunContext, input any) (any, error)

// Predicate decides whether an edge is eligible for a node output. A nil
// predicate accepts unconditionally.
type Predicate func(output any) bool

// Transform reshapes a node output into the next node's input. A nil
// transform passes the output through unchanged.
type Transform func(output any) (any, error)

// Node is a unit of execution in a strategy graph. A node wraps either a
// body function or a nested subgraph, never both.
type Node struct {
	id   string
	name string
	body Body
	sub  *Subgraph
}

// ID returns the node's unique id within its strategy.
func (n *Node) ID() string { return n.id }

// Name returns the node's display name used in events and logs.
func (n *Node) Name() string { return n.name }

// Subgraph returns the nested subgraph this node wraps, or nil for a plain
// body node.
func (n *Node) Subgraph() *Subgraph { return n.sub }

// IsSentinel reports whether the node is a synthetic start or finish marker.
func (n *Node) IsSentinel() bool {
	return n.id == StartNodeID || n.id == FinishNodeID
}

// Edge is a directed, conditioned, optionally-transforming connection
// between two nodes of the same subgraph.
type Edge struct {
	From      string
	To        string
	Predicate Predicate
	Transform Transform
}

// Subgraph is a self-contained graph with its own start and finish
// sentinels. Construct subgraphs through a Builder; a built subgraph is
// immutable and safe to share read-only across runs.
type Subgraph struct {
	name  string
	nodes map[string]*Node
	out   map[string][]Edge // outgoing edges per node id, declaration order
}

// Name returns the subgraph's display name.
func (s *Subgraph) Name() string { return s.name }

// Node returns the node registered under id, including the sentinels.
func (s *Subgraph) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// EdgesFrom returns the outgoing edges of a node in declaration order.
func (s *Subgraph) EdgesFrom(id string) []Edge { return s.out[id] }

// selectEdge returns the first outgoing edge of node id whose predicate
// holds for output. Remaining edges are not evaluated.
func (s *Subgraph) selectEdge(id string, output any) (Edge, bool) {
	for _, e := range s.out[id] {
		if e.Predicate == nil || e.Predicate(output) {
			return e, true
		}
	}
	return Edge{}, false
}

// Strategy is the root subgraph plus run metadata, the unit passed to the
// executor. Strategies are immutable after Build.
type Strategy struct {
	id    string
	name  string
	root  *Subgraph
	nodes map[string]*Node // all non-sentinel nodes, including nested ones
}

// ID returns the strategy id.
func (s *Strategy) ID() string { return s.id }

// Name returns the strategy's display name.
func (s *Strategy) Name() string { return s.name }

// Root returns the root subgraph.
func (s *Strategy) Root() *Subgraph { return s.root }

// LookupNode resolves any non-sentinel node of the strategy by id,
// regardless of nesting depth.
func (s *Strategy) LookupNode(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}
