// Package openai adapts the OpenAI Chat Completions API to the generic
// model.Model capability. The core never sees this package; it is wired in
// at construction time by the application.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/model"
)

// Options configure the OpenAI model adapter. Fields mirror a minimal
// subset of Chat Completion parameters; extend via functional options.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind model.Model.
type Model struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI model using the official client with ambient
// credentials (OPENAI_API_KEY).
func New(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an OpenAI model from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model with a single non-streaming completion.
// Failures are wrapped as *core.ModelError so the agent loop can retry
// within its bound.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:               m.opts.Model,
		Messages:            buildMessages(req),
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}

	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, openai.ChatCompletionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  openai.FunctionParameters(t.Parameters),
				},
			})
		}
		params.Tools = tools
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, core.NewModelError("openai", err)
	}
	if len(completion.Choices) == 0 {
		return nil, core.NewModelError("openai", fmt.Errorf("empty completion"))
	}

	choice := completion.Choices[0]
	if len(choice.Message.ToolCalls) > 0 {
		call := choice.Message.ToolCalls[0]
		return &model.Response{
			ToolCall: &model.ToolCall{Name: call.Function.Name, Args: call.Function.Arguments},
		}, nil
	}
	return &model.Response{Text: choice.Message.Content}, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai", SupportsTools: true}
}

// buildMessages converts the normalized transcript into chat messages.
// Tool results have no provider-level call id in the normalized data model,
// so they are rendered as plain user-visible context the way the transcript
// stores them.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.Instructions) != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case core.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case core.RoleAgent:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case core.RoleTool:
			messages = append(messages, openai.UserMessage(
				fmt.Sprintf("Tool %s(%s) returned: %s", msg.ToolName, msg.ToolArgs, msg.Content),
			))
		}
	}
	return messages
}

var _ model.Model = (*Model)(nil)
