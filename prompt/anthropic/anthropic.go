// Package anthropic implements prompt.Executor for the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/prompt"
	"github.com/hupe1980/graphmesh/tool"
)

// Options configures the Anthropic executor (temperature, max tokens, API
// key). Extend via functional options to preserve stability.
type Options struct {
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Executor wraps the Anthropic Messages API behind prompt.Executor.
type Executor struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic executor using the official client.
func New(optFns ...func(o *Options)) *Executor {
	opts := Options{
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Executor{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic executor from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Executor {
	opts := Options{
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{client: client, opts: opts}
}

// Execute performs a non-streaming message request.
func (e *Executor) Execute(
	ctx context.Context,
	p prompt.Prompt,
	m prompt.Model,
	tools []tool.Descriptor,
) ([]prompt.Response, error) {
	params := e.buildParams(p, m, tools)

	resp, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var parts []core.Part
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if textBlock.Text != "" {
				parts = append(parts, core.TextPart{Text: textBlock.Text})
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(argsBytes)
				}
			}
			parts = append(parts, core.ToolCallPart{ToolCall: core.ToolCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			}})
		}
	}

	finishReason := "stop"
	if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}

	return []prompt.Response{{
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: finishReason,
		Usage: &prompt.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}}, nil
}

// ExecuteStreaming is not yet implemented for Anthropic.
//
// TODO: translate anthropic.MessageStreamEvent sequences (content_block_start,
// input_json_delta, message_delta) into prompt frames.
func (e *Executor) ExecuteStreaming(
	ctx context.Context,
	p prompt.Prompt,
	m prompt.Model,
	tools []tool.Descriptor,
) (<-chan prompt.Frame, <-chan error) {
	frameCh := make(chan prompt.Frame)
	errCh := make(chan error, 1)

	close(frameCh)
	errCh <- &prompt.StreamingError{Model: m.Name, Err: fmt.Errorf("streaming not yet implemented for anthropic")}
	close(errCh)

	return frameCh, errCh
}

func (e *Executor) buildParams(
	p prompt.Prompt,
	m prompt.Model,
	tools []tool.Descriptor,
) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(m.Name),
		Messages:    buildMessages(p.Messages),
		MaxTokens:   e.opts.MaxTokens,
		Temperature: anthropic.Float(e.opts.Temperature),
	}
	if p.Temperature != nil {
		params.Temperature = anthropic.Float(*p.Temperature)
	}
	if p.MaxTokens != nil {
		params.MaxTokens = *p.MaxTokens
	}

	if systemBlocks := extractSystemBlocks(p.Messages); len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	if len(tools) > 0 && m.SupportsTools {
		params.Tools = buildTools(tools)
	}

	return params
}

// buildMessages converts normalized contents to Anthropic message format.
// Tool results are embedded into the user turn that follows their calls.
func buildMessages(contents []core.Content) []anthropic.MessageParam {
	toolResponses := map[string]string{}
	for _, c := range contents {
		if c.Role != core.RoleTool {
			continue
		}
		for _, tr := range c.ToolResults() {
			if tr.ID == "" {
				continue
			}
			if tr.Error != "" {
				toolResponses[tr.ID] = tr.Error
			} else if s, ok := tr.Result.(string); ok {
				toolResponses[tr.ID] = s
			} else {
				toolResponses[tr.ID] = fmt.Sprintf("%v", tr.Result)
			}
		}
	}

	var messages []anthropic.MessageParam
	for _, c := range contents {
		if c.Role == core.RoleSystem || c.Role == core.RoleTool {
			continue
		}

		switch c.Role {
		case core.RoleAssistant:
			content := buildAssistantContent(c, toolResponses)
			if len(content) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(content...))
			}
		default:
			content := buildTextContent(c.Parts)
			if len(content) > 0 {
				messages = append(messages, anthropic.NewUserMessage(content...))
			}
		}
	}

	return messages
}

func extractSystemBlocks(contents []core.Content) []anthropic.TextBlockParam {
	var systemBlocks []anthropic.TextBlockParam
	for _, c := range contents {
		if c.Role != core.RoleSystem {
			continue
		}
		for _, p := range c.Parts {
			if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
				systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: tp.Text})
			}
		}
	}
	return systemBlocks
}

func buildTextContent(parts []core.Part) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion
	for _, p := range parts {
		if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
			content = append(content, anthropic.NewTextBlock(tp.Text))
		}
	}
	return content
}

func buildAssistantContent(c core.Content, toolResponses map[string]string) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion
	var toolCallIDs []string

	for _, p := range c.Parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				content = append(content, anthropic.NewTextBlock(part.Text))
			}
		case core.ToolCallPart:
			var input any
			if part.ToolCall.Arguments != "" {
				if err := json.Unmarshal([]byte(part.ToolCall.Arguments), &input); err != nil {
					input = part.ToolCall.Arguments
				}
			}
			content = append(content, anthropic.NewToolUseBlock(part.ToolCall.ID, input, part.ToolCall.Name))
			toolCallIDs = append(toolCallIDs, part.ToolCall.ID)
		}
	}

	for _, id := range toolCallIDs {
		if resp, ok := toolResponses[id]; ok {
			content = append(content, anthropic.NewToolResultBlock(id, resp, false))
			delete(toolResponses, id)
		}
	}

	return content
}

func buildTools(tools []tool.Descriptor) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, td := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if td.Parameters != nil {
			if properties, exists := td.Parameters["properties"]; exists {
				inputSchema.Properties = properties
			}
			switch required := td.Parameters["required"].(type) {
			case []string:
				inputSchema.Required = required
			case []any:
				var reqStrings []string
				for _, r := range required {
					if s, ok := r.(string); ok {
						reqStrings = append(reqStrings, s)
					}
				}
				inputSchema.Required = reqStrings
			}
		}

		anthropicTools[i] = anthropic.ToolUnionParamOfTool(inputSchema, td.Name)
	}

	return anthropicTools
}
