package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/pipeline"
	"github.com/hupe1980/graphmesh/prompt"
	"github.com/hupe1980/graphmesh/tool"
)

// RunContext is the handle node bodies use to reach the run's collaborators:
// the model executor, the tool registry, the conversation transcript and the
// feature pipeline. One RunContext exists per strategy run; the executor owns
// it and updates the current scope as traversal proceeds.
//
// A RunContext is confined to the single traversal goroutine except inside an
// explicit parallel tool-execute node, which only reads the immutable fields.
type RunContext struct {
	runID      string
	scope      core.ExecutionInfo
	pipeline   *pipeline.Pipeline
	promptExec prompt.Executor
	model      prompt.Model
	tools      *tool.Registry
	guard      *IterationGuard
	transcript []core.Content
}

// RunID returns the identifier of the top-level run.
func (rc *RunContext) RunID() string { return rc.runID }

// Scope returns the ExecutionInfo of the currently executing node.
func (rc *RunContext) Scope() core.ExecutionInfo { return rc.scope }

// Tools returns the run's tool registry.
func (rc *RunContext) Tools() *tool.Registry { return rc.tools }

// Model returns the run's default model descriptor.
func (rc *RunContext) Model() prompt.Model { return rc.model }

// OverrideModel switches the model name used by subsequent calls in this
// run. Flow agents carrying a model override apply it when they start.
func (rc *RunContext) OverrideModel(name string) {
	if name != "" {
		rc.model.Name = name
	}
}

// Transcript returns the conversation accumulated so far. The returned slice
// is the live transcript; treat it as read-only.
func (rc *RunContext) Transcript() []core.Content { return rc.transcript }

// AppendMessages appends messages to the run transcript.
func (rc *RunContext) AppendMessages(msgs ...core.Content) {
	rc.transcript = append(rc.transcript, msgs...)
}

// CallModel sends the run transcript to the model and returns its first
// response. The assistant content is appended to the transcript. ModelCall
// events are reported around the call, scoped as a child of the current node.
func (rc *RunContext) CallModel(ctx context.Context) (prompt.Response, error) {
	info := rc.scope.Child()
	p := prompt.Prompt{Messages: rc.transcript}

	starting := event.ModelCallStarting{
		Base:     rc.pipeline.Base(info, rc.runID),
		Model:    rc.model.Name,
		Messages: p.Messages,
	}
	if err := rc.pipeline.Trigger(ctx, starting); err != nil {
		return prompt.Response{}, err
	}

	responses, err := rc.promptExec.Execute(ctx, p, rc.model, rc.toolDescriptors())
	if err != nil {
		return prompt.Response{}, err
	}
	if len(responses) == 0 {
		return prompt.Response{}, fmt.Errorf("model %s returned no responses", rc.model.Name)
	}

	contents := make([]core.Content, len(responses))
	for i, r := range responses {
		contents[i] = r.Content
	}
	completed := event.ModelCallCompleted{
		Base:      rc.pipeline.Base(info, rc.runID),
		Model:     rc.model.Name,
		Responses: contents,
	}
	if err := rc.pipeline.Trigger(ctx, completed); err != nil {
		return prompt.Response{}, err
	}

	rc.AppendMessages(responses[0].Content)
	return responses[0], nil
}

// CallModelStreaming streams a model response, reporting one frame event per
// received frame in arrival order, and returns the accumulated response once
// the stream's end marker arrives. Fragmented tool-call frames are
// demultiplexed by call id during accumulation. A provider failure ends the
// stream with a ModelStreamingFailed event and is returned to the caller; a
// frame handler error cancels the stream and is reported the same way.
func (rc *RunContext) CallModelStreaming(ctx context.Context) (prompt.Response, error) {
	info := rc.scope.Child()
	p := prompt.Prompt{Messages: rc.transcript}

	starting := event.ModelStreamingStarting{
		Base:     rc.pipeline.Base(info, rc.runID),
		Model:    rc.model.Name,
		Messages: p.Messages,
	}
	if err := rc.pipeline.Trigger(ctx, starting); err != nil {
		return prompt.Response{}, err
	}

	// The provider goroutine runs under a child context so an early return
	// can unblock its pending sends; the channels are drained to completion
	// before this method returns.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames, errs := rc.promptExec.ExecuteStreaming(streamCtx, p, rc.model, rc.toolDescriptors())

	acc := prompt.NewAccumulator()
	for f := range frames {
		fe := event.ModelStreamingFrame{
			Base:  rc.pipeline.Base(info, rc.runID),
			Model: rc.model.Name,
		}
		switch fr := f.(type) {
		case prompt.TextFrame:
			fe.Text = fr.Text
		case prompt.ToolCallFrame:
			fe.ToolCallID = fr.ID
			fe.ToolCallName = fr.Name
		}
		if err := rc.pipeline.Trigger(ctx, fe); err != nil {
			cancel()
			for range frames {
			}
			<-errs

			failed := event.ModelStreamingFailed{
				Base:  rc.pipeline.Base(info, rc.runID),
				Model: rc.model.Name,
				Err:   err,
			}
			if terr := rc.pipeline.Trigger(ctx, failed); terr != nil {
				return prompt.Response{}, terr
			}
			return prompt.Response{}, err
		}
		acc.Add(f)
	}
	if err := <-errs; err != nil {
		failed := event.ModelStreamingFailed{
			Base:  rc.pipeline.Base(info, rc.runID),
			Model: rc.model.Name,
			Err:   err,
		}
		if terr := rc.pipeline.Trigger(ctx, failed); terr != nil {
			return prompt.Response{}, terr
		}
		return prompt.Response{}, err
	}

	response := acc.Response()
	completed := event.ModelStreamingCompleted{
		Base:     rc.pipeline.Base(info, rc.runID),
		Model:    rc.model.Name,
		Response: response.Content,
	}
	if err := rc.pipeline.Trigger(ctx, completed); err != nil {
		return prompt.Response{}, err
	}

	rc.AppendMessages(response.Content)
	return response, nil
}

// CallTool resolves and executes one model-requested tool call, reporting
// ToolCall events around it. Failures are reported through the pipeline and
// then returned; the engine performs no retries.
func (rc *RunContext) CallTool(ctx context.Context, call core.ToolCall) (core.ToolResult, error) {
	if rc.tools == nil {
		return core.ToolResult{}, &ToolNotDefinedError{Name: call.Name}
	}
	t, ok := rc.tools.Resolve(call.Name)
	if !ok {
		return core.ToolResult{}, &ToolNotDefinedError{Name: call.Name}
	}

	info := rc.scope.Child()
	starting := event.ToolCallStarting{
		Base:      rc.pipeline.Base(info, rc.runID),
		ToolName:  call.Name,
		CallID:    call.ID,
		Arguments: call.Arguments,
	}
	if err := rc.pipeline.Trigger(ctx, starting); err != nil {
		return core.ToolResult{}, err
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			vErr := &tool.ValidationError{Tool: call.Name, Message: "arguments are not valid JSON"}
			if terr := rc.reportToolFailure(ctx, info, call, vErr); terr != nil {
				return core.ToolResult{}, terr
			}
			return core.ToolResult{}, vErr
		}
	}

	result, err := t.Call(ctx, args)
	if err != nil {
		if terr := rc.reportToolFailure(ctx, info, call, err); terr != nil {
			return core.ToolResult{}, terr
		}
		return core.ToolResult{}, err
	}

	completed := event.ToolCallCompleted{
		Base:     rc.pipeline.Base(info, rc.runID),
		ToolName: call.Name,
		CallID:   call.ID,
		Result:   result,
	}
	if err := rc.pipeline.Trigger(ctx, completed); err != nil {
		return core.ToolResult{}, err
	}

	return core.ToolResult{ID: call.ID, Name: call.Name, Result: result}, nil
}

// reportToolFailure routes validation failures and execution failures to
// their distinct stages so features can treat bad arguments differently from
// a failing tool body.
func (rc *RunContext) reportToolFailure(ctx context.Context, info core.ExecutionInfo, call core.ToolCall, err error) error {
	var vErr *tool.ValidationError
	if errors.As(err, &vErr) {
		return rc.pipeline.Trigger(ctx, event.ToolValidationFailed{
			Base:      rc.pipeline.Base(info, rc.runID),
			ToolName:  call.Name,
			CallID:    call.ID,
			Arguments: call.Arguments,
			Err:       err,
		})
	}
	return rc.pipeline.Trigger(ctx, event.ToolCallFailed{
		Base:     rc.pipeline.Base(info, rc.runID),
		ToolName: call.Name,
		CallID:   call.ID,
		Err:      err,
	})
}

func (rc *RunContext) toolDescriptors() []tool.Descriptor {
	if rc.tools == nil {
		return nil
	}
	return rc.tools.Descriptors()
}
