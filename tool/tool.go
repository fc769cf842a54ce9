// Package tool implements the tool-calling subsystem that lets agents invoke
// named capabilities with consistent error handling. Tool failures are always
// recoverable from the caller's perspective: they are surfaced as *ToolError
// values that the agent loop feeds back to the model as content.
package tool

import (
	"context"
	"fmt"
)

// Tool defines the invocation contract for a named capability.
//
// Implementations should be safe for concurrent use; the registry may invoke
// the same tool from multiple agent loops at once.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case recommended).
	Name() string

	// Description returns a human-readable description provided to the model
	// so it can decide when to use the tool.
	Description() string

	// Parameters returns a JSON-schema-like map describing the expected
	// argument format.
	Parameters() map[string]any

	// Call executes the tool. The args string is passed through from the
	// model's tool request unmodified.
	Call(ctx context.Context, args string) (string, error)
}

// Error codes attached to ToolError for caller-side branching.
const (
	// CodeNotFound means no tool with the requested name is registered.
	CodeNotFound = "NOT_FOUND"
	// CodeTimeout means the invocation exceeded the per-call timeout.
	CodeTimeout = "TIMEOUT"
	// CodeExecution means the tool itself returned an error.
	CodeExecution = "EXECUTION_ERROR"
)

// ToolError represents a recoverable tool invocation failure.
type ToolError struct {
	Tool    string `json:"tool"`    // name of the tool that failed
	Message string `json:"message"` // error message
	Code    string `json:"code"`    // error code for categorization
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
