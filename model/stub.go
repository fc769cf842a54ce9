package model

import (
	"context"
	"sync"

	"github.com/harshapalnati/agno/core"
)

// StubModel is a scripted in-memory Model for tests and examples. Each call
// consumes the next scripted step; when the script runs out the last step
// repeats, which makes "always requests tool X" stubs trivial to build.
type StubModel struct {
	mu    sync.Mutex
	steps []stubStep
	calls int
}

type stubStep struct {
	resp *Response
	err  error
	// fn, when set, computes the response from the incoming request.
	fn func(req Request) (*Response, error)
}

// NewStubModel constructs an empty stub. A stub with no script answers every
// request with empty final text.
func NewStubModel() *StubModel {
	return &StubModel{}
}

// QueueText scripts a final-text response.
func (m *StubModel) QueueText(text string) *StubModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, stubStep{resp: &Response{Text: text}})
	return m
}

// QueueToolCall scripts a tool request.
func (m *StubModel) QueueToolCall(name, args string) *StubModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, stubStep{resp: &Response{ToolCall: &ToolCall{Name: name, Args: args}}})
	return m
}

// QueueError scripts a failed invocation.
func (m *StubModel) QueueError(err error) *StubModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, stubStep{err: err})
	return m
}

// QueueFunc scripts a response computed from the incoming request, e.g. to
// build final text from the latest tool result in the transcript.
func (m *StubModel) QueueFunc(fn func(req Request) (*Response, error)) *StubModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, stubStep{fn: fn})
	return m
}

// Calls returns how many times Generate has been invoked.
func (m *StubModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model.
func (m *StubModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewModelError("stub", err)
	}

	m.mu.Lock()
	idx := m.calls
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	m.calls++
	var step stubStep
	if idx >= 0 {
		step = m.steps[idx]
	}
	m.mu.Unlock()

	if step.fn != nil {
		return step.fn(req)
	}
	if step.err != nil {
		return nil, step.err
	}
	if step.resp != nil {
		resp := *step.resp
		return &resp, nil
	}
	return &Response{}, nil
}

// Info implements Model.
func (m *StubModel) Info() Info {
	return Info{Name: "stub", Provider: "stub", SupportsTools: true}
}

var _ Model = (*StubModel)(nil)
