// Package builtin ships the stock tools an agent can be configured with by
// name: echo, uppercase and calc. They exist to exercise the invocation
// contract end to end; anything beyond that belongs in application code.
package builtin

import (
	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/tool"
)

// New constructs the builtin tool with the given name.
func New(name string) (tool.Tool, error) {
	switch name {
	case "echo":
		return NewEcho(), nil
	case "uppercase":
		return NewUppercase(), nil
	case "calc":
		return NewCalc()
	default:
		return nil, core.NewConfigurationError("builtin tools", "unknown tool %q", name)
	}
}

// Register constructs the named builtin tools and registers them with reg.
// Unknown names and duplicate registrations fail with a ConfigurationError.
func Register(reg *tool.Registry, names ...string) error {
	for _, name := range names {
		t, err := New(name)
		if err != nil {
			return err
		}
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
