package graph

import "fmt"

// EdgeOptions configure a single edge.
type EdgeOptions struct {
	Predicate Predicate
	Transform Transform
}

// WithPredicate gates the edge on a predicate over the source node's output.
func WithPredicate(p Predicate) func(o *EdgeOptions) {
	return func(o *EdgeOptions) { o.Predicate = p }
}

// WithTransform reshapes the source node's output before it becomes the
// target node's input.
func WithTransform(t Transform) func(o *EdgeOptions) {
	return func(o *EdgeOptions) { o.Transform = t }
}

// Builder assembles a subgraph or a whole strategy. Errors encountered while
// declaring nodes and edges are sticky and reported by Build, so call chains
// stay fluent.
type Builder struct {
	name  string
	nodes []*Node
	byID  map[string]*Node
	edges []Edge
	err   error
}

// NewBuilder creates a builder for a graph with the given display name. The
// start and finish sentinels are implicit; edges reference them through
// StartNodeID and FinishNodeID.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, byID: map[string]*Node{}}
}

// Node declares a body node.
func (b *Builder) Node(id, name string, body Body) *Builder {
	return b.add(&Node{id: id, name: name, body: body})
}

// AddNode declares a prebuilt node, typically one of the node constructors.
func (b *Builder) AddNode(n *Node) *Builder {
	return b.add(n)
}

// Subgraph declares a node that wraps a nested subgraph.
func (b *Builder) Subgraph(id string, sub *Subgraph) *Builder {
	return b.add(&Node{id: id, name: sub.name, sub: sub})
}

func (b *Builder) add(n *Node) *Builder {
	if b.err != nil {
		return b
	}
	if n.id == StartNodeID || n.id == FinishNodeID {
		b.err = &ConstructionError{Graph: b.name, Message: fmt.Sprintf("node id %q is reserved", n.id)}
		return b
	}
	if _, exists := b.byID[n.id]; exists {
		b.err = &ConstructionError{Graph: b.name, Message: fmt.Sprintf("duplicate node id %q", n.id)}
		return b
	}
	b.byID[n.id] = n
	b.nodes = append(b.nodes, n)
	return b
}

// Edge declares a directed edge between two declared nodes. Edges from the
// same node are tried in declaration order at runtime.
func (b *Builder) Edge(from, to string, optFns ...func(o *EdgeOptions)) *Builder {
	if b.err != nil {
		return b
	}
	opts := EdgeOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	b.edges = append(b.edges, Edge{From: from, To: to, Predicate: opts.Predicate, Transform: opts.Transform})
	return b
}

// EdgeToFinish declares an edge from a node to the finish sentinel.
func (b *Builder) EdgeToFinish(from string, optFns ...func(o *EdgeOptions)) *Builder {
	return b.Edge(from, FinishNodeID, optFns...)
}

// EdgeFromStart declares an edge from the start sentinel to a node.
func (b *Builder) EdgeFromStart(to string, optFns ...func(o *EdgeOptions)) *Builder {
	return b.Edge(StartNodeID, to, optFns...)
}

// BuildSubgraph validates the declared graph and returns it as a subgraph
// usable as a node in a parent builder.
func (b *Builder) BuildSubgraph() (*Subgraph, error) {
	if b.err != nil {
		return nil, b.err
	}

	sub := &Subgraph{
		name:  b.name,
		nodes: map[string]*Node{},
		out:   map[string][]Edge{},
	}
	sub.nodes[StartNodeID] = &Node{id: StartNodeID, name: "start"}
	sub.nodes[FinishNodeID] = &Node{id: FinishNodeID, name: "finish"}
	for _, n := range b.nodes {
		sub.nodes[n.id] = n
	}
	for _, e := range b.edges {
		sub.out[e.From] = append(sub.out[e.From], e)
	}

	if err := validateSubgraph(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Build validates the declared graph and wraps it as a strategy with the
// given id. The strategy's node index covers nested subgraphs; non-sentinel
// node ids must be unique across the whole strategy.
func (b *Builder) Build(id string) (*Strategy, error) {
	root, err := b.BuildSubgraph()
	if err != nil {
		return nil, err
	}

	s := &Strategy{id: id, name: b.name, root: root, nodes: map[string]*Node{}}
	if err := indexNodes(s, root); err != nil {
		return nil, err
	}
	return s, nil
}

func indexNodes(s *Strategy, sub *Subgraph) error {
	for id, n := range sub.nodes {
		if n.IsSentinel() {
			continue
		}
		if _, exists := s.nodes[id]; exists {
			return &ConstructionError{Graph: s.name, Message: fmt.Sprintf("duplicate node id %q across subgraphs", id)}
		}
		s.nodes[id] = n
		if n.sub != nil {
			if err := indexNodes(s, n.sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// MustBuild is Build for statically known-valid graphs; it panics on error.
func (b *Builder) MustBuild(id string) *Strategy {
	s, err := b.Build(id)
	if err != nil {
		panic(err)
	}
	return s
}

// MustBuildSubgraph is BuildSubgraph for statically known-valid graphs; it
// panics on error.
func (b *Builder) MustBuildSubgraph() *Subgraph {
	sub, err := b.BuildSubgraph()
	if err != nil {
		panic(err)
	}
	return sub
}
