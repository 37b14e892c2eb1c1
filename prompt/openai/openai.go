// Package openai implements prompt.Executor on top of the OpenAI Chat
// Completions API (including streaming + function/tool calling). It adapts
// GraphMesh's normalized prompt structures into the SDK's message format and
// back.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/prompt"
	"github.com/hupe1980/graphmesh/tool"
)

// Options configure the OpenAI executor. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Temperature         float64
	MaxCompletionTokens int64
}

// Executor wraps the OpenAI Chat Completions API behind prompt.Executor.
type Executor struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI executor using the official client. Credentials
// are read from the environment by the SDK (OPENAI_API_KEY).
func New(optFns ...func(o *Options)) *Executor {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI executor from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Executor {
	opts := Options{
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{client: client, opts: opts}
}

// Execute performs a non-streaming chat completion.
func (e *Executor) Execute(
	ctx context.Context,
	p prompt.Prompt,
	m prompt.Model,
	tools []tool.Descriptor,
) ([]prompt.Response, error) {
	params := e.buildParams(p, m, tools)

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: no choices returned")
	}

	ch0 := resp.Choices[0]
	parts := make([]core.Part, 0, len(ch0.Message.ToolCalls)+1)
	if ch0.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: ch0.Message.Content})
	}
	for _, tc := range ch0.Message.ToolCalls {
		parts = append(parts, core.ToolCallPart{ToolCall: core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}

	return []prompt.Response{{
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: ch0.FinishReason,
		Usage: &prompt.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}}, nil
}

// ExecuteStreaming performs a streaming chat completion, translating SDK
// chunks into prompt frames. Tool call deltas are keyed by the SDK's call
// index and forwarded with their accumulated id so downstream demuxing works.
func (e *Executor) ExecuteStreaming(
	ctx context.Context,
	p prompt.Prompt,
	m prompt.Model,
	tools []tool.Descriptor,
) (<-chan prompt.Frame, <-chan error) {
	frameCh := make(chan prompt.Frame, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(frameCh)
		defer close(errCh)

		params := e.buildParams(p, m, tools)
		stream := e.client.Chat.Completions.NewStreaming(ctx, params)

		callIDs := map[int64]string{}
		finish := ""
		for stream.Next() {
			ck := stream.Current()
			for _, ch := range ck.Choices {
				if ch.Delta.Content != "" {
					frameCh <- prompt.TextFrame{Text: ch.Delta.Content}
				}
				for _, tc := range ch.Delta.ToolCalls {
					if tc.ID != "" {
						callIDs[tc.Index] = tc.ID
					}
					frameCh <- prompt.ToolCallFrame{
						ID:   callIDs[tc.Index],
						Name: tc.Function.Name,
						Args: tc.Function.Arguments,
					}
				}
				if ch.FinishReason != "" {
					finish = ch.FinishReason
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- &prompt.StreamingError{Model: m.Name, Err: err}
			return
		}
		frameCh <- prompt.EndFrame{FinishReason: finish}
	}()

	return frameCh, errCh
}

// buildParams assembles the OpenAI request parameters including tool definitions.
func (e *Executor) buildParams(
	p prompt.Prompt,
	m prompt.Model,
	tools []tool.Descriptor,
) openai.ChatCompletionNewParams {
	toolResponses, order := collectToolResults(p.Messages)

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(p.Messages, toolResponses, order),
		Model:               m.Name,
		Temperature:         openai.Float(e.opts.Temperature),
		MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
	}
	if p.Temperature != nil {
		params.Temperature = openai.Float(*p.Temperature)
	}
	if p.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(*p.MaxTokens)
	}

	if len(tools) == 0 || !m.SupportsTools {
		return params
	}
	defs := make([]openai.ChatCompletionToolParam, len(tools))
	for i, td := range tools {
		defs[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        td.Name,
				Description: openai.String(td.Description),
				Parameters:  td.Parameters,
			},
		}
	}
	params.Tools = defs
	return params
}

// collectToolResults indexes tool results by call id preserving first-seen order.
func collectToolResults(messages []core.Content) (map[string]string, []string) {
	responses := map[string]string{}
	order := []string{}
	for _, c := range messages {
		if c.Role != core.RoleTool {
			continue
		}
		for _, tr := range c.ToolResults() {
			if tr.ID == "" {
				continue
			}
			if _, exists := responses[tr.ID]; exists {
				continue
			}
			responses[tr.ID] = resultText(tr)
			order = append(order, tr.ID)
		}
	}
	return responses, order
}

func resultText(tr core.ToolResult) string {
	if tr.Error != "" {
		return tr.Error
	}
	if s, ok := tr.Result.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", tr.Result)
}

// buildMessages converts normalized contents into OpenAI chat messages while
// attaching matching tool results immediately after assistant tool calls.
func buildMessages(
	contents []core.Content,
	toolResponses map[string]string,
	order []string,
) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, c := range contents {
		if c.Role == core.RoleTool {
			continue
		}
		var textBuilder strings.Builder
		for _, p := range c.Parts {
			if tp, ok := p.(core.TextPart); ok {
				textBuilder.WriteString(tp.Text)
			}
		}
		text := textBuilder.String()
		switch c.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(text))
		case core.RoleUser:
			messages = append(messages, openai.UserMessage(text))
		case core.RoleAssistant:
			toolCalls, callIDs := extractToolCalls(c)
			if len(toolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}
			messages = append(
				messages,
				openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				}},
			)
			for _, id := range callIDs {
				if id == "" {
					continue
				}
				if resp, ok := toolResponses[id]; ok {
					messages = append(messages, openai.ToolMessage(resp, id))
					delete(toolResponses, id)
				}
			}
		default:
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	for _, id := range order {
		if resp, ok := toolResponses[id]; ok {
			messages = append(messages, openai.ToolMessage(resp, id))
		}
	}
	return messages
}

// extractToolCalls extracts tool call parts and returns OpenAI formatted tool calls + ordered IDs.
func extractToolCalls(c core.Content) ([]openai.ChatCompletionMessageToolCallParam, []string) {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	var callIDs []string
	for _, tc := range c.ToolCalls() {
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   tc.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
		callIDs = append(callIDs, tc.ID)
	}
	return toolCalls, callIDs
}
