package prompt

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/hupe1980/graphmesh/core"
)

// Accumulator folds a frame stream back into a complete Response. Text
// fragments are concatenated in arrival order; tool call fragments are
// demultiplexed by call ID and their argument chunks joined per call, with
// call order fixed by each ID's first appearance.
//
// An Accumulator is not safe for concurrent use; feed it from the single
// goroutine draining the stream.
type Accumulator struct {
	text     strings.Builder
	calls    []*pendingCall
	byID     map[string]*pendingCall
	finish   string
	usage    *TokenUsage
	finished bool
}

type pendingCall struct {
	id   string
	name string
	args strings.Builder
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{byID: map[string]*pendingCall{}}
}

// Add folds a single frame into the accumulator. It returns true once an
// EndFrame has been seen; further frames are ignored.
func (a *Accumulator) Add(f Frame) bool {
	if a.finished {
		return true
	}

	switch fr := f.(type) {
	case TextFrame:
		a.text.WriteString(fr.Text)
	case ToolCallFrame:
		call, ok := a.byID[fr.ID]
		if !ok {
			call = &pendingCall{id: fr.ID}
			a.byID[fr.ID] = call
			a.calls = append(a.calls, call)
		}
		if fr.Name != "" {
			call.name = fr.Name
		}
		call.args.WriteString(fr.Args)
	case EndFrame:
		a.finish = fr.FinishReason
		a.usage = fr.Usage
		a.finished = true
	}

	return a.finished
}

// Response assembles the accumulated frames into a Response. Tool call
// arguments that are not valid JSON after concatenation are passed through
// a repair step; models occasionally emit truncated or single-quoted JSON.
func (a *Accumulator) Response() Response {
	parts := []core.Part{}
	if text := a.text.String(); text != "" {
		parts = append(parts, core.TextPart{Text: text})
	}

	for _, call := range a.calls {
		parts = append(parts, core.ToolCallPart{ToolCall: core.ToolCall{
			ID:        call.id,
			Name:      call.name,
			Arguments: normalizeArguments(call.args.String()),
		}})
	}

	return Response{
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: a.finish,
		Usage:        a.usage,
	}
}

func normalizeArguments(raw string) string {
	if raw == "" {
		return "{}"
	}
	if json.Valid([]byte(raw)) {
		return raw
	}
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return raw
	}
	return repaired
}
