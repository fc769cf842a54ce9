package tool

import "context"

// FunctionTool is a generic adapter that exposes a plain Go function as a
// Tool. It has no internal mutable state after construction and is safe for
// concurrent use by multiple goroutines.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args string) (string, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	upper := tool.NewFunctionTool(
//	  "uppercase",
//	  "Convert the input text to upper case",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "text": map[string]any{"type": "string"},
//	    },
//	  },
//	  func(_ context.Context, args string) (string, error) {
//	    return strings.ToUpper(args), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args string) (string, error),
) *FunctionTool {
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// Name returns the unique tool name used in tool requests and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call invokes the wrapped function.
func (t *FunctionTool) Call(ctx context.Context, args string) (string, error) {
	return t.fn(ctx, args)
}

var _ Tool = (*FunctionTool)(nil)
