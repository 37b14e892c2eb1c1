package prompt

import (
	"context"
	"fmt"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/tool"
)

// Prompt is the normalized model input assembled by graph nodes: an ordered
// conversation transcript plus optional sampling parameters.
type Prompt struct {
	Messages    []core.Content `json:"messages"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   *int64         `json:"max_tokens,omitempty"`
}

// Append returns a copy of p with msgs appended. Prompts are treated as
// immutable values so nodes can safely fork a transcript.
func (p Prompt) Append(msgs ...core.Content) Prompt {
	messages := make([]core.Content, 0, len(p.Messages)+len(msgs))
	messages = append(messages, p.Messages...)
	messages = append(messages, msgs...)
	p.Messages = messages
	return p
}

// Model describes the target model for a call.
type Model struct {
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	Name          string `json:"name"`
	SupportsTools bool   `json:"supports_tools"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a complete (non-streaming) model turn.
type Response struct {
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", ...
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// ToolCalls returns the tool calls requested in this response.
func (r Response) ToolCalls() []core.ToolCall { return r.Content.ToolCalls() }

// HasToolCalls reports whether the model requested any tool invocation.
func (r Response) HasToolCalls() bool { return len(r.Content.ToolCalls()) > 0 }

// Text returns the concatenated text of the response.
func (r Response) Text() string { return r.Content.Text() }

// Executor is the opaque model-execution contract the graph engine depends
// on. Implementations own transport, authentication and transient retry.
type Executor interface {
	// Execute sends a prompt and returns the model's response(s). Most
	// providers return exactly one response per call.
	Execute(ctx context.Context, p Prompt, m Model, tools []tool.Descriptor) ([]Response, error)

	// ExecuteStreaming sends a prompt and returns an ordered, finite frame
	// sequence terminated by an EndFrame, plus a terminal error channel.
	// Both channels are closed when the stream ends.
	ExecuteStreaming(ctx context.Context, p Prompt, m Model, tools []tool.Descriptor) (<-chan Frame, <-chan error)
}

// StreamingError wraps a provider failure that ended an in-flight stream.
type StreamingError struct {
	Model string
	Err   error
}

func (e *StreamingError) Error() string {
	return fmt.Sprintf("streaming failed for model %s: %v", e.Model, e.Err)
}

func (e *StreamingError) Unwrap() error { return e.Err }
