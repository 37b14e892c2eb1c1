package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/feature/eventhandler"
	"github.com/hupe1980/graphmesh/graph"
	"github.com/hupe1980/graphmesh/logging"
	"github.com/hupe1980/graphmesh/prompt"
	"github.com/hupe1980/graphmesh/tool"
)

func echoStrategy(t *testing.T) *graph.Strategy {
	t.Helper()
	s, err := graph.NewBuilder("echo").
		Node("echo", "echo node", func(ctx context.Context, rc *graph.RunContext, input any) (any, error) {
			return input, nil
		}).
		EdgeFromStart("echo").
		EdgeToFinish("echo").
		Build("echo")
	require.NoError(t, err)
	return s
}

func TestAgentRunBracketsStrategyWithAgentEvents(t *testing.T) {
	var stages []event.Stage
	var runIDs []string

	recorder := eventhandler.New(eventhandler.WithOnEvent(func(ctx context.Context, ev event.Event) error {
		stages = append(stages, ev.Stage())
		runIDs = append(runIDs, ev.RunID())
		return nil
	}))

	a, err := New(echoStrategy(t), prompt.NewMockExecutor(),
		WithLogger(logging.NoOpLogger{}),
		WithFeatures(recorder),
	)
	require.NoError(t, err)

	out, err := a.Run(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "ping", out)

	require.NotEmpty(t, stages)
	assert.Equal(t, event.StageAgentStarting, stages[0])
	assert.Equal(t, event.StageAgentCompleted, stages[len(stages)-1])

	// Every event of one run carries the same run id.
	for _, id := range runIDs {
		assert.Equal(t, runIDs[0], id)
	}
}

func TestAgentRunsAreIsolated(t *testing.T) {
	var runIDs []string
	recorder := eventhandler.New(eventhandler.WithOnStage(event.StageAgentStarting,
		func(ctx context.Context, ev event.Event) error {
			runIDs = append(runIDs, ev.RunID())
			return nil
		}))

	a, err := New(echoStrategy(t), prompt.NewMockExecutor(),
		WithLogger(logging.NoOpLogger{}),
		WithFeatures(recorder),
	)
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "one")
	require.NoError(t, err)
	_, err = a.Run(context.Background(), "two")
	require.NoError(t, err)

	require.Len(t, runIDs, 2)
	assert.NotEqual(t, runIDs[0], runIDs[1])
}

func TestAgentFailureEmitsAgentFailed(t *testing.T) {
	s, err := graph.NewBuilder("boom").
		Node("boom", "boom node", func(ctx context.Context, rc *graph.RunContext, input any) (any, error) {
			return nil, assert.AnError
		}).
		EdgeFromStart("boom").
		EdgeToFinish("boom").
		Build("boom")
	require.NoError(t, err)

	var failed int
	recorder := eventhandler.New(eventhandler.WithOnStage(event.StageAgentFailed,
		func(ctx context.Context, ev event.Event) error {
			failed++
			return nil
		}))

	a, err := New(s, prompt.NewMockExecutor(),
		WithLogger(logging.NoOpLogger{}),
		WithFeatures(recorder),
	)
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "x")
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, failed)
}

func TestAgentEventsStampedWithClock(t *testing.T) {
	clock := core.FixedClock{T: core.SystemClock().Now()}

	var stamped bool
	recorder := eventhandler.New(eventhandler.WithOnStage(event.StageAgentStarting,
		func(ctx context.Context, ev event.Event) error {
			stamped = ev.Timestamp().Equal(clock.T)
			return nil
		}))

	a, err := New(echoStrategy(t), prompt.NewMockExecutor(),
		WithLogger(logging.NoOpLogger{}),
		WithClock(clock),
		WithFeatures(recorder),
	)
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, stamped)
}

func TestAgentWithToolLoop(t *testing.T) {
	mock := prompt.NewMockExecutor().
		Enqueue(prompt.Response{
			Content: core.Content{
				Role: core.RoleAssistant,
				Parts: []core.Part{
					core.ToolCallPart{ToolCall: core.ToolCall{ID: "c1", Name: "ping", Arguments: `{}`}},
				},
			},
			FinishReason: "tool_calls",
		}).
		Enqueue(prompt.Response{
			Content:      core.NewTextContent(core.RoleAssistant, "pong received"),
			FinishReason: "stop",
		})

	ping := tool.NewFunctionTool("ping", "Ping", map[string]any{"type": "object"},
		func(ctx context.Context, args map[string]any) (any, error) { return "pong", nil })

	s, err := graph.NewBuilder("tool agent").
		Subgraph("loop", graph.NewToolLoopSubgraph("tool loop")).
		EdgeFromStart("loop").
		EdgeToFinish("loop").
		Build("tool-agent")
	require.NoError(t, err)

	a, err := New(s, mock,
		WithLogger(logging.NoOpLogger{}),
		WithTools(tool.NewRegistry(ping)),
		WithModel(prompt.Model{Provider: "mock", Name: "mock-model", SupportsTools: true}),
	)
	require.NoError(t, err)

	out, err := a.Run(context.Background(), "say pong")
	require.NoError(t, err)
	assert.Equal(t, "pong received", out)
}
