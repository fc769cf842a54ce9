// Package agent implements the single-agent runtime: instructions bound to a
// model capability, a session memory store and a tool registry, driven by a
// bounded tool-calling loop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/logging"
	"github.com/harshapalnati/agno/memory"
	"github.com/harshapalnati/agno/model"
	"github.com/harshapalnati/agno/tool"
)

// DefaultMaxTurns bounds the tool-calling loop when no override is given.
const DefaultMaxTurns = 8

// Options configures an Agent instance. Use functional options with New to
// override defaults.
type Options struct {
	// Instructions is the static system prompt for the model.
	Instructions string

	// Memory holds the session transcripts. Defaults to a volatile
	// in-memory store.
	Memory memory.Store

	// Tools is the registry of invocable capabilities. Defaults to an empty
	// registry.
	Tools *tool.Registry

	// MaxTurns bounds loop iterations per RunOnce call.
	MaxTurns int

	// ModelRetries bounds retries of a retryable model failure within one
	// turn before the response degrades.
	ModelRetries int

	// RetryBackoff is the pause between model retries.
	RetryBackoff time.Duration

	// Logger receives runtime diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Agent binds a name, static instructions, a model, a memory store and a
// tool set. It is immutable after construction except for memory contents;
// one Agent may serve many sessions concurrently.
type Agent struct {
	name         string
	instructions string
	model        model.Model
	memory       memory.Store
	tools        *tool.Registry
	maxTurns     int
	modelRetries int
	retryBackoff time.Duration
	logger       logging.Logger

	turns atomic.Uint64 // total model turns served, for status reporting
}

// Response is the outcome of one RunOnce call. A degraded response (turn
// bound exhausted or model retries spent) still carries text explaining the
// condition; it is a result, not a failure.
type Response struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	Turns     int    `json:"turns"`
	Exhausted bool   `json:"exhausted,omitempty"` // turn bound reached without a final answer
	Degraded  bool   `json:"degraded,omitempty"`  // exhaustion or spent model retries
}

// New constructs an Agent around the given model.
func New(name string, m model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Instructions: fmt.Sprintf("You are %s, a helpful assistant.", name),
		MaxTurns:     DefaultMaxTurns,
		ModelRetries: 2,
		RetryBackoff: 250 * time.Millisecond,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Memory == nil {
		opts.Memory = memory.NewInMemoryStore()
	}
	if opts.Tools == nil {
		opts.Tools = tool.NewRegistry()
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}

	return &Agent{
		name:         name,
		instructions: opts.Instructions,
		model:        m,
		memory:       opts.Memory,
		tools:        opts.Tools,
		maxTurns:     opts.MaxTurns,
		modelRetries: opts.ModelRetries,
		retryBackoff: opts.RetryBackoff,
		logger:       logging.OrNoOp(opts.Logger),
	}
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Instructions returns the agent's static instructions.
func (a *Agent) Instructions() string { return a.instructions }

// Memory returns the agent's memory store.
func (a *Agent) Memory() memory.Store { return a.memory }

// Tools returns the agent's tool registry.
func (a *Agent) Tools() *tool.Registry { return a.tools }

// TurnCount returns the total number of model turns this agent has served.
func (a *Agent) TurnCount() uint64 { return a.turns.Load() }

// RunOnce answers one input within the given session. It appends the input
// as a user message, then loops: invoke the model with the full transcript
// and tool descriptors; execute a requested tool and feed its result (or its
// recoverable failure) back as a tool message; stop on final text.
//
// Every message is appended durably as it occurs, never batched, so a crash
// mid-loop leaves a consistent partial transcript. The loop never blocks
// indefinitely: the turn bound produces a degraded response, tool failures
// are recoverable content and model failures degrade after the retry bound.
// An empty sessionID starts a fresh session whose id is echoed in the
// response.
func (a *Agent) RunOnce(ctx context.Context, sessionID, input string) (*Response, error) {
	if sessionID == "" {
		sessionID = core.NewID()
	}

	if err := a.memory.Append(ctx, sessionID, core.NewUserMessage(input)); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	descriptors := a.toolDescriptors()

	for turn := 1; turn <= a.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		transcript, err := a.memory.Read(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("read session %q: %w", sessionID, err)
		}

		a.logger.Debug("agent.turn.start", "agent", a.name, "session_id", sessionID, "turn", turn)
		a.turns.Add(1)

		resp, err := a.generate(ctx, model.Request{
			Instructions: a.instructions,
			Messages:     transcript,
			Tools:        descriptors,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Error("agent.model.degraded", "agent", a.name, "session_id", sessionID, "error", err.Error())
			return &Response{
				Text:      fmt.Sprintf("The model backend is unavailable: %v", err),
				SessionID: sessionID,
				Turns:     turn,
				Degraded:  true,
			}, nil
		}

		if resp.IsToolCall() {
			call := resp.ToolCall
			result, invokeErr := a.tools.Invoke(ctx, call.Name, call.Args)
			content := result
			if invokeErr != nil {
				// Recoverable: the failure becomes transcript content the
				// model sees on the next turn.
				content = invokeErr.Error()
				a.logger.Warn("agent.tool.recoverable", "agent", a.name, "tool", call.Name, "error", invokeErr.Error())
			}
			msg := core.NewToolMessage(call.Name, call.Args, content)
			if err := a.memory.Append(ctx, sessionID, msg); err != nil {
				return nil, fmt.Errorf("append tool message: %w", err)
			}
			continue
		}

		if err := a.memory.Append(ctx, sessionID, core.NewAgentMessage(resp.Text)); err != nil {
			return nil, fmt.Errorf("append agent message: %w", err)
		}
		a.logger.Info("agent.turn.final", "agent", a.name, "session_id", sessionID, "turns", turn)
		return &Response{Text: resp.Text, SessionID: sessionID, Turns: turn}, nil
	}

	a.logger.Warn("agent.loop.exhausted", "agent", a.name, "session_id", sessionID, "max_turns", a.maxTurns)
	return &Response{
		Text:      fmt.Sprintf("Reached the maximum of %d turns without a final answer.", a.maxTurns),
		SessionID: sessionID,
		Turns:     a.maxTurns,
		Exhausted: true,
		Degraded:  true,
	}, nil
}

// ClearSession evicts the session transcript from memory.
func (a *Agent) ClearSession(ctx context.Context, sessionID string) error {
	return a.memory.Clear(ctx, sessionID)
}

// Transcript returns the session transcript in append order.
func (a *Agent) Transcript(ctx context.Context, sessionID string) ([]core.Message, error) {
	return a.memory.Read(ctx, sessionID)
}

// generate invokes the model, retrying retryable failures up to the
// configured bound.
func (a *Agent) generate(ctx context.Context, req model.Request) (*model.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= a.modelRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.retryBackoff):
			}
		}

		resp, err := a.model.Generate(ctx, req)
		if err == nil {
			if resp == nil {
				// Contract violation; retrying a broken implementation
				// cannot help.
				return nil, &core.ModelError{
					Provider: a.model.Info().Provider,
					Message:  "model returned neither a response nor an error",
				}
			}
			return resp, nil
		}
		lastErr = err

		var modelErr *core.ModelError
		if !errors.As(err, &modelErr) || !modelErr.Retryable {
			break
		}
		a.logger.Warn("agent.model.retry", "agent", a.name, "attempt", attempt+1, "error", err.Error())
	}
	return nil, lastErr
}

// toolDescriptors snapshots the registry as model-facing descriptors.
func (a *Agent) toolDescriptors() []model.ToolDescriptor {
	tools := a.tools.Tools()
	if len(tools) == 0 {
		return nil
	}
	descriptors := make([]model.ToolDescriptor, 0, len(tools))
	for _, t := range tools {
		descriptors = append(descriptors, model.ToolDescriptor{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return descriptors
}
