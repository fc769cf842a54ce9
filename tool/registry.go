package tool

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/logging"
)

// RegistryOptions configures a Registry instance.
type RegistryOptions struct {
	// InvokeTimeout bounds each tool invocation. Zero disables the bound.
	InvokeTimeout time.Duration

	// Logger receives invocation diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Registry maps tool names to invocable capabilities. It is scoped to one
// runtime instance and passed by reference to every agent needing it, so
// multiple independently configured deployments can coexist in one process.
//
// The registry is safe for concurrent use. Invoke never escalates a tool
// failure into a fatal condition: every failure mode is wrapped as a
// *ToolError the caller can feed back to the model.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	timeout time.Duration
	logger  logging.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		InvokeTimeout: 15 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		tools:   make(map[string]Tool),
		timeout: opts.InvokeTimeout,
		logger:  logging.OrNoOp(opts.Logger),
	}
}

// Register adds t under its name. Registering a name twice fails with a
// ConfigurationError; tool names are unique per registry.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return core.NewConfigurationError("tool registry", "duplicate tool name %q", t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Tools returns a snapshot of the registered tools in name order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Invoke looks up name and executes it with args under the configured
// timeout. The returned error, when non-nil, is always a *ToolError:
// unknown names map to CodeNotFound, deadline hits to CodeTimeout and tool
// failures to CodeExecution (unless the tool already returned a *ToolError).
func (r *Registry) Invoke(ctx context.Context, name, args string) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		r.logger.Warn("tool.invoke.not_found", "tool", name)
		return "", NewToolError(name, "no tool registered under this name", CodeNotFound)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	r.logger.Debug("tool.invoke.start", "tool", name)

	result, err := t.Call(ctx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			r.logger.Error("tool.invoke.error", "tool", name, "code", toolErr.Code, "error", toolErr.Message)
			return "", toolErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			r.logger.Error("tool.invoke.timeout", "tool", name, "timeout", r.timeout)
			return "", NewToolError(name, "invocation exceeded timeout", CodeTimeout)
		}
		r.logger.Error("tool.invoke.error", "tool", name, "error", err.Error())
		return "", NewToolError(name, err.Error(), CodeExecution)
	}

	r.logger.Info("tool.invoke.success", "tool", name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}
