package builtin

import (
	"context"
	"strings"

	"github.com/harshapalnati/agno/tool"
)

type textArgs struct {
	Text string `json:"text" description:"Text to process"`
}

// NewEcho returns a tool that repeats its input verbatim. Handy for smoke
// testing a deployment's tool path without side effects.
func NewEcho() tool.Tool {
	return tool.NewFunctionTool(
		"echo",
		"Repeat the input text back unchanged",
		tool.SchemaFor(textArgs{}),
		func(_ context.Context, args string) (string, error) {
			return args, nil
		},
	)
}

// NewUppercase returns a tool that upper-cases its input.
func NewUppercase() tool.Tool {
	return tool.NewFunctionTool(
		"uppercase",
		"Convert the input text to upper case",
		tool.SchemaFor(textArgs{}),
		func(_ context.Context, args string) (string, error) {
			return strings.ToUpper(args), nil
		},
	)
}
