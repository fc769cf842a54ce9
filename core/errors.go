package core

import "fmt"

// ConfigurationError reports an invalid construction-time configuration:
// a cyclic DAG, an incomplete FSM table, a duplicate tool or agent name, an
// unknown agent reference. It is always fatal at construction and never
// surfaces at run time.
type ConfigurationError struct {
	Component string // subsystem that rejected the configuration
	Message   string
}

func (e *ConfigurationError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

// NewConfigurationError creates a ConfigurationError for the given component.
func NewConfigurationError(component, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Component: component, Message: fmt.Sprintf(format, args...)}
}

// ModelError reports a failed model invocation: backend unreachable, request
// rejected, malformed response. Retryable indicates whether the agent loop
// may retry the call within its retry bound before degrading the response.
type ModelError struct {
	Provider  string
	Message   string
	Retryable bool
	Err       error
}

func (e *ModelError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("model error: %s", e.Message)
	}
	return fmt.Sprintf("model error [%s]: %s", e.Provider, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *ModelError) Unwrap() error { return e.Err }

// NewModelError wraps err as a retryable model failure.
func NewModelError(provider string, err error) *ModelError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &ModelError{Provider: provider, Message: msg, Retryable: true, Err: err}
}

// WorkflowErrorCode categorizes run-time workflow failures so callers can
// branch on the kind instead of parsing text.
type WorkflowErrorCode string

const (
	// CodeUnknownSignal means the FSM driver derived a signal with no entry
	// in the transition table for the current state.
	CodeUnknownSignal WorkflowErrorCode = "UNKNOWN_SIGNAL"
	// CodeNonTerminating means the FSM driver exceeded its step bound without
	// reaching a terminal state.
	CodeNonTerminating WorkflowErrorCode = "NON_TERMINATING"
	// CodeNodeFailure means one or more workflow nodes failed. In DAG mode
	// the failure is isolated to the dependent branch; in Chain and FSM mode
	// it aborts the run.
	CodeNodeFailure WorkflowErrorCode = "NODE_FAILURE"
)

// WorkflowError is a run-time workflow failure discriminated by Code.
type WorkflowError struct {
	Code    WorkflowErrorCode
	Node    string // agent name, state or node id the failure is attributed to
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("workflow error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("workflow error [%s] at %s: %s", e.Code, e.Node, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *WorkflowError) Unwrap() error { return e.Err }

// NewWorkflowError creates a WorkflowError with the given code and location.
func NewWorkflowError(code WorkflowErrorCode, node, format string, args ...any) *WorkflowError {
	return &WorkflowError{Code: code, Node: node, Message: fmt.Sprintf(format, args...)}
}
