package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passthrough(ctx context.Context, rc *RunContext, input any) (any, error) {
	return input, nil
}

func TestBuilderBuildsValidStrategy(t *testing.T) {
	s, err := NewBuilder("simple").
		Node("a", "node a", passthrough).
		Node("b", "node b", passthrough).
		EdgeFromStart("a").
		Edge("a", "b").
		EdgeToFinish("b").
		Build("s1")

	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID())
	assert.Equal(t, "simple", s.Name())

	_, ok := s.LookupNode("a")
	assert.True(t, ok)
	_, ok = s.LookupNode("missing")
	assert.False(t, ok)
}

func TestBuilderRejectsReservedID(t *testing.T) {
	_, err := NewBuilder("bad").
		Node(StartNodeID, "impostor", passthrough).
		BuildSubgraph()

	var cErr *ConstructionError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "reserved")
}

func TestBuilderRejectsDuplicateID(t *testing.T) {
	_, err := NewBuilder("bad").
		Node("a", "first", passthrough).
		Node("a", "second", passthrough).
		BuildSubgraph()

	var cErr *ConstructionError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "duplicate")
}

func TestBuilderRejectsUnknownEdgeTarget(t *testing.T) {
	_, err := NewBuilder("bad").
		Node("a", "node a", passthrough).
		EdgeFromStart("a").
		Edge("a", "ghost").
		BuildSubgraph()

	var cErr *ConstructionError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "unknown node")
}

func TestBuilderRejectsUnreachableFinish(t *testing.T) {
	_, err := NewBuilder("bad").
		Node("a", "node a", passthrough).
		EdgeFromStart("a").
		BuildSubgraph()

	var cErr *ConstructionError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "not reachable")
}

func TestBuilderAllowsBackEdges(t *testing.T) {
	// A cycle is legal as long as finish stays reachable.
	_, err := NewBuilder("loop").
		Node("a", "node a", passthrough).
		Node("b", "node b", passthrough).
		EdgeFromStart("a").
		Edge("a", "b").
		Edge("b", "a", WithPredicate(func(any) bool { return false })).
		EdgeToFinish("b").
		BuildSubgraph()

	assert.NoError(t, err)
}

func TestIterationGuard(t *testing.T) {
	g := NewIterationGuard(2)

	require.NoError(t, g.Increment())
	require.NoError(t, g.Increment())

	err := g.Increment()
	var lErr *IterationLimitError
	require.ErrorAs(t, err, &lErr)
	assert.Equal(t, 2, lErr.Limit)
	assert.EqualError(t, err, "iteration limit exceeded: 2")
	assert.Equal(t, 3, g.Count())
}

func TestIterationGuardDisabled(t *testing.T) {
	g := NewIterationGuard(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, g.Increment())
	}
}
