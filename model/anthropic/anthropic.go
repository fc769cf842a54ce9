// Package anthropic adapts the Anthropic Messages API to the generic
// model.Model capability.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/model"
)

// Options configures the Anthropic model adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind model.Model.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// New creates an Anthropic model using the official client.
func New(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewFromClient creates an Anthropic model from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// WithModel selects the model by bare id, for callers that do not import
// the SDK.
func WithModel(id string) func(o *Options) {
	return func(o *Options) { o.Model = anthropic.Model(id) }
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Generate implements model.Model with a single non-streaming message.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    buildMessages(req),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}

	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}

	if len(req.Tools) > 0 {
		tools := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
		for _, t := range req.Tools {
			schema := anthropic.ToolInputSchemaParam{}
			if props, ok := t.Parameters["properties"].(map[string]any); ok {
				schema.Properties = props
			}
			tools = append(tools, anthropic.ToolUnionParam{
				OfTool: &anthropic.ToolParam{
					Name:        t.Name,
					Description: anthropic.String(t.Description),
					InputSchema: schema,
				},
			})
		}
		params.Tools = tools
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, core.NewModelError("anthropic", err)
	}

	var text string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if raw, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(raw)
				}
			}
			return &model.Response{
				ToolCall: &model.ToolCall{Name: toolBlock.Name, Args: args},
			}, nil
		}
	}
	return &model.Response{Text: text}, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: string(m.opts.Model), Provider: "anthropic", SupportsTools: true}
}

// buildMessages converts the normalized transcript into Anthropic messages.
func buildMessages(req model.Request) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case core.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case core.RoleAgent:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		case core.RoleTool:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(
				fmt.Sprintf("Tool %s(%s) returned: %s", msg.ToolName, msg.ToolArgs, msg.Content),
			)))
		}
	}
	return messages
}

var _ model.Model = (*Model)(nil)
