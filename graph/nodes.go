package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/prompt"
)

// OnToolCall is an edge predicate that holds when the node output is a model
// response requesting at least one tool call.
func OnToolCall(output any) bool {
	r, ok := output.(prompt.Response)
	return ok && r.HasToolCalls()
}

// OnAssistantMessage is an edge predicate that holds when the node output is
// a plain assistant message with no tool calls.
func OnAssistantMessage(output any) bool {
	r, ok := output.(prompt.Response)
	return ok && !r.HasToolCalls()
}

// ExtractText is an edge transform that narrows a model response to its
// assistant text.
func ExtractText(output any) (any, error) {
	r, ok := output.(prompt.Response)
	if !ok {
		return nil, fmt.Errorf("expected model response, got %T", output)
	}
	return r.Text(), nil
}

// NewModelCallNode creates a node that appends its string input as a user
// message and requests one model turn. Its output is the model response.
func NewModelCallNode(id, name string) *Node {
	return &Node{id: id, name: name, body: modelCallBody}
}

func modelCallBody(ctx context.Context, rc *RunContext, input any) (any, error) {
	if err := appendUserInput(rc, input); err != nil {
		return nil, err
	}
	return rc.CallModel(ctx)
}

// NewStreamingModelCallNode is NewModelCallNode over the streaming contract:
// frames are reported through the pipeline as they arrive and the node output
// is the accumulated response.
func NewStreamingModelCallNode(id, name string) *Node {
	return &Node{id: id, name: name, body: func(ctx context.Context, rc *RunContext, input any) (any, error) {
		if err := appendUserInput(rc, input); err != nil {
			return nil, err
		}
		return rc.CallModelStreaming(ctx)
	}}
}

func appendUserInput(rc *RunContext, input any) error {
	switch in := input.(type) {
	case nil:
	case string:
		rc.AppendMessages(core.NewTextContent(core.RoleUser, in))
	case core.Content:
		rc.AppendMessages(in)
	case []core.Content:
		rc.AppendMessages(in...)
	default:
		rc.AppendMessages(core.NewTextContent(core.RoleUser, fmt.Sprintf("%v", in)))
	}
	return nil
}

// NewToolExecuteNode creates a node that executes every tool call of a model
// response sequentially, in call order. Its output is the ordered result
// list.
func NewToolExecuteNode(id, name string) *Node {
	return &Node{id: id, name: name, body: toolExecuteBody}
}

func toolExecuteBody(ctx context.Context, rc *RunContext, input any) (any, error) {
	r, ok := input.(prompt.Response)
	if !ok {
		return nil, fmt.Errorf("expected model response, got %T", input)
	}

	calls := r.ToolCalls()
	results := make([]core.ToolResult, 0, len(calls))
	for _, call := range calls {
		result, err := rc.CallTool(ctx, call)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// NewParallelToolExecuteNode creates a tool-execute node that awaits up to
// concurrency tool invocations at once. Results are reassembled in call
// order before the traversal resumes; the first failed call aborts the node
// once all in-flight calls have drained.
func NewParallelToolExecuteNode(id, name string, concurrency int) *Node {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Node{id: id, name: name, body: func(ctx context.Context, rc *RunContext, input any) (any, error) {
		r, ok := input.(prompt.Response)
		if !ok {
			return nil, fmt.Errorf("expected model response, got %T", input)
		}

		calls := r.ToolCalls()
		results := make([]core.ToolResult, len(calls))
		errs := make([]error, len(calls))

		wp := workerpool.New(concurrency)
		var mu sync.Mutex
		for i, call := range calls {
			i, call := i, call
			wp.Submit(func() {
				result, err := rc.CallTool(ctx, call)
				mu.Lock()
				results[i] = result
				errs[i] = err
				mu.Unlock()
			})
		}
		wp.StopWait()

		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		return results, nil
	}}
}

// NewSendToolResultNode creates a node that appends tool results to the
// transcript as a tool message and requests the model's next turn. Its
// output is the model response, so the standard predicates route either back
// into tool execution or onward to finish.
func NewSendToolResultNode(id, name string) *Node {
	return &Node{id: id, name: name, body: sendToolResultBody}
}

func sendToolResultBody(ctx context.Context, rc *RunContext, input any) (any, error) {
	results, ok := input.([]core.ToolResult)
	if !ok {
		return nil, fmt.Errorf("expected tool results, got %T", input)
	}

	parts := make([]core.Part, len(results))
	for i, tr := range results {
		parts[i] = core.ToolResultPart{ToolResult: tr}
	}
	rc.AppendMessages(core.Content{Role: core.RoleTool, Parts: parts})

	return rc.CallModel(ctx)
}

// NewTransformNode creates a pure mapping node with no model or tool access.
func NewTransformNode(id, name string, fn func(input any) (any, error)) *Node {
	return &Node{id: id, name: name, body: func(ctx context.Context, rc *RunContext, input any) (any, error) {
		return fn(input)
	}}
}

// NewToolLoopSubgraph builds the canonical tool-call loop from graph
// primitives: a model-call node whose tool-call outputs route into a
// tool-execute node, a send-result node that returns results to the model,
// and a back-edge that repeats execution while the model keeps requesting
// tools. The loop is unbounded here; the run's iteration guard bounds it.
// The subgraph's output is the final assistant text.
func NewToolLoopSubgraph(name string) *Subgraph {
	// Node ids are prefixed so two loops can coexist in one strategy.
	callModel := name + ".call_model"
	executeTools := name + ".execute_tools"
	sendResults := name + ".send_results"

	return NewBuilder(name).
		Node(callModel, "call model", modelCallBody).
		Node(executeTools, "execute tools", toolExecuteBody).
		Node(sendResults, "send tool results", sendToolResultBody).
		EdgeFromStart(callModel).
		Edge(callModel, executeTools, WithPredicate(OnToolCall)).
		EdgeToFinish(callModel, WithPredicate(OnAssistantMessage), WithTransform(ExtractText)).
		Edge(executeTools, sendResults).
		Edge(sendResults, executeTools, WithPredicate(OnToolCall)).
		EdgeToFinish(sendResults, WithPredicate(OnAssistantMessage), WithTransform(ExtractText)).
		MustBuildSubgraph()
}
