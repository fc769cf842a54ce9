// Package model defines the opaque language-model capability the agent loop
// is driven by: a request carrying instructions, the session transcript and
// the available tool descriptors, answered by either final text or a tool
// request. Provider adapters live in subpackages; the core never touches a
// provider wire protocol.
package model

import (
	"context"

	"github.com/harshapalnati/agno/core"
)

// ToolDescriptor declaratively exposes a callable tool to the model.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON schema
}

// Request captures one normalized model invocation.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDescriptor `json:"tools,omitempty"`
}

// ToolCall is a tool request surfaced by the model. Unified across vendors
// so the agent loop never branches per provider.
type ToolCall struct {
	Name string `json:"name"`
	Args string `json:"args"`
}

// Response is the model's answer to one Request: either final text or a
// tool request, never both. A nil ToolCall marks the response as final.
type Response struct {
	Text     string    `json:"text,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

// IsToolCall reports whether the model requested a tool instead of
// producing final text.
func (r *Response) IsToolCall() bool { return r.ToolCall != nil }

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "stub", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the agent loop requires to drive
// generation. Implementations must treat the request as read-only and
// respect context cancellation; failures should be reported as
// *core.ModelError so the loop can apply its retry bound.
type Model interface {
	// Generate answers one request. On a nil error the Response must be
	// non-nil; exactly one of the two return values is meaningful.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}
