package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a Message within a session transcript.
type Role string

const (
	// RoleUser marks input supplied by the caller.
	RoleUser Role = "user"
	// RoleAgent marks text produced by an agent.
	RoleAgent Role = "agent"
	// RoleTool marks the result (or recoverable failure) of a tool invocation.
	RoleTool Role = "tool"
)

// Message is a single transcript entry. Messages are immutable once appended
// to a session; the store guarantees a total append order per session id.
//
// ToolName and ToolArgs are only set for RoleTool messages and record which
// invocation produced the content.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	ToolName  string    `json:"tool_name,omitempty"`
	ToolArgs  string    `json:"tool_args,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage creates a user-authored message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// NewAgentMessage creates an agent-authored message.
func NewAgentMessage(content string) Message {
	return Message{Role: RoleAgent, Content: content, Timestamp: time.Now().UTC()}
}

// NewToolMessage records the outcome of invoking the named tool. Content
// holds the result text; for recoverable tool failures it holds the error
// description fed back to the model.
func NewToolMessage(toolName, toolArgs, content string) Message {
	return Message{
		Role:      RoleTool,
		Content:   content,
		ToolName:  toolName,
		ToolArgs:  toolArgs,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for sessions, runs and traces.
func NewID() string { return uuid.NewString() }
