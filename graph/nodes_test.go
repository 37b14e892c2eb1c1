package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/prompt"
	"github.com/hupe1980/graphmesh/tool"
)

func TestOnToolCallPredicates(t *testing.T) {
	withCall := toolCallResponse("c1", "calculate_sum", `{"a":1,"b":2}`)
	plain := assistantResponse("hello")

	assert.True(t, OnToolCall(withCall))
	assert.False(t, OnToolCall(plain))
	assert.False(t, OnToolCall("not a response"))

	assert.True(t, OnAssistantMessage(plain))
	assert.False(t, OnAssistantMessage(withCall))
	assert.False(t, OnAssistantMessage(42))
}

func TestExtractText(t *testing.T) {
	out, err := ExtractText(assistantResponse("final answer"))
	require.NoError(t, err)
	assert.Equal(t, "final answer", out)

	_, err = ExtractText("bogus")
	assert.Error(t, err)
}

func TestParallelToolExecutePreservesCallOrder(t *testing.T) {
	echo := tool.NewFunctionTool("echo", "Echo the value",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{"v": map[string]any{"type": "string"}},
			"required":   []string{"v"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return args["v"], nil
		})

	input := prompt.Response{
		Content: core.Content{
			Role: core.RoleAssistant,
			Parts: []core.Part{
				core.ToolCallPart{ToolCall: core.ToolCall{ID: "c1", Name: "echo", Arguments: `{"v":"one"}`}},
				core.ToolCallPart{ToolCall: core.ToolCall{ID: "c2", Name: "echo", Arguments: `{"v":"two"}`}},
				core.ToolCallPart{ToolCall: core.ToolCall{ID: "c3", Name: "echo", Arguments: `{"v":"three"}`}},
			},
		},
		FinishReason: "tool_calls",
	}

	strategy, err := NewBuilder("fanout").
		Node("p", "parallel tools", NewParallelToolExecuteNode("p", "parallel tools", 2).body).
		EdgeFromStart("p").
		EdgeToFinish("p").
		Build("s1")
	require.NoError(t, err)

	rec := &recorder{}
	exec := newTestExecutor(prompt.NewMockExecutor(), rec, WithTools(tool.NewRegistry(echo)))

	output, err := exec.ExecuteStrategy(context.Background(), strategy, input, core.NewExecutionInfo())
	require.NoError(t, err)

	results, ok := output.([]core.ToolResult)
	require.True(t, ok)
	require.Len(t, results, 3)
	assert.Equal(t, "one", results[0].Result)
	assert.Equal(t, "two", results[1].Result)
	assert.Equal(t, "three", results[2].Result)

	assert.Equal(t, 3, rec.count(event.StageToolCallStarting))
	assert.Equal(t, 3, rec.count(event.StageToolCallCompleted))
}

func TestToolValidationFailureIsRoutedDistinctly(t *testing.T) {
	mock := prompt.NewMockExecutor().
		Enqueue(toolCallResponse("c1", "calculate_sum", `{"a":1}`))

	rec := &recorder{}
	exec := newTestExecutor(mock, rec)

	strategy, err := NewBuilder("agent").
		Subgraph("loop", NewToolLoopSubgraph("tool loop")).
		EdgeFromStart("loop").
		EdgeToFinish("loop").
		Build("s1")
	require.NoError(t, err)

	_, err = exec.ExecuteStrategy(context.Background(), strategy, "hi", core.NewExecutionInfo())

	var vErr *tool.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 1, rec.count(event.StageToolValidationFailed))
	assert.Equal(t, 0, rec.count(event.StageToolCallFailed))
	assert.Equal(t, 0, rec.count(event.StageToolCallCompleted))
}

func TestStreamingModelCallNode(t *testing.T) {
	mock := prompt.NewMockExecutor().EnqueueFrames(
		prompt.TextFrame{Text: "str"},
		prompt.TextFrame{Text: "eamed"},
	)

	rec := &recorder{}
	exec := newTestExecutor(mock, rec)

	strategy, err := NewBuilder("stream").
		Node("m", "stream model", NewStreamingModelCallNode("m", "stream model").body).
		EdgeFromStart("m").
		EdgeToFinish("m", WithTransform(ExtractText)).
		Build("s1")
	require.NoError(t, err)

	output, err := exec.ExecuteStrategy(context.Background(), strategy, "hi", core.NewExecutionInfo())
	require.NoError(t, err)
	assert.Equal(t, "streamed", output)

	assert.Equal(t, 1, rec.count(event.StageModelStreamingStarting))
	assert.Equal(t, 3, rec.count(event.StageModelStreamingFrame))
	assert.Equal(t, 1, rec.count(event.StageModelStreamingCompleted))
	assert.Equal(t, 0, rec.count(event.StageModelStreamingFailed))
}
