package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshapalnati/agno/core"
)

func newEchoTool(name string) Tool {
	return NewFunctionTool(name, "echo", nil, func(_ context.Context, args string) (string, error) {
		return args, nil
	})
}

func TestRegistry_RegisterDuplicateName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newEchoTool("echo")))

	err := reg.Register(newEchoTool("echo"))
	require.Error(t, err)

	var cfgErr *core.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "duplicate registration must be a ConfigurationError")
}

func TestRegistry_GetAndNames(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newEchoTool("beta")))
	require.NoError(t, reg.Register(newEchoTool("alpha")))

	_, ok := reg.Get("alpha")
	assert.True(t, ok)
	_, ok = reg.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"alpha", "beta"}, reg.Names())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_InvokeMissingTool(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Invoke(context.Background(), "absent", "args")
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeNotFound, toolErr.Code)
	assert.Equal(t, "absent", toolErr.Tool)
}

func TestRegistry_InvokeSuccess(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newEchoTool("echo")))

	out, err := reg.Invoke(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRegistry_InvokeExecutionError(t *testing.T) {
	reg := NewRegistry()
	failing := NewFunctionTool("boom", "always fails", nil, func(_ context.Context, _ string) (string, error) {
		return "", fmt.Errorf("internal failure")
	})
	require.NoError(t, reg.Register(failing))

	_, err := reg.Invoke(context.Background(), "boom", "")
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeExecution, toolErr.Code)
}

func TestRegistry_InvokeTimeout(t *testing.T) {
	reg := NewRegistry(func(o *RegistryOptions) {
		o.InvokeTimeout = 20 * time.Millisecond
	})
	slow := NewFunctionTool("slow", "sleeps past the deadline", nil, func(ctx context.Context, _ string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "done", nil
		}
	})
	require.NoError(t, reg.Register(slow))

	_, err := reg.Invoke(context.Background(), "slow", "")
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeTimeout, toolErr.Code)
}

func TestRegistry_ToolErrorPassthrough(t *testing.T) {
	reg := NewRegistry()
	custom := NewFunctionTool("custom", "fails with a typed error", nil, func(_ context.Context, _ string) (string, error) {
		return "", NewToolError("custom", "bad arguments", "VALIDATION_ERROR")
	})
	require.NoError(t, reg.Register(custom))

	_, err := reg.Invoke(context.Background(), "custom", "")
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}
