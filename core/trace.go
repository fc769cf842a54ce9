package core

import (
	"sync"
	"time"
)

// StepStatus records the outcome of one workflow step.
type StepStatus string

const (
	// StepCompleted means the agent produced an output.
	StepCompleted StepStatus = "completed"
	// StepFailed means the agent invocation returned an error.
	StepFailed StepStatus = "failed"
	// StepSkipped means the step was never invoked because a transitive
	// dependency failed.
	StepSkipped StepStatus = "skipped"
)

// StepRecord captures one per-agent invocation and its handoff payloads
// within a workflow run.
type StepRecord struct {
	Node     string        `json:"node"` // node id, state name or chain position
	Agent    string        `json:"agent"`
	Input    string        `json:"input,omitempty"`
	Output   string        `json:"output,omitempty"`
	Status   StepStatus    `json:"status"`
	Error    string        `json:"error,omitempty"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// ExecutionTrace is the ordered record of a single workflow run. It is safe
// for concurrent appends; the DAG driver records steps from multiple workers.
type ExecutionTrace struct {
	RunID   string
	Team    string
	Started time.Time

	mu    sync.Mutex
	steps []StepRecord
}

// NewExecutionTrace creates a trace for one workflow run.
func NewExecutionTrace(team string) *ExecutionTrace {
	return &ExecutionTrace{RunID: NewID(), Team: team, Started: time.Now().UTC()}
}

// Append records a step. Steps are kept in completion order.
func (t *ExecutionTrace) Append(rec StepRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, rec)
}

// Steps returns a defensive copy of the recorded steps.
func (t *ExecutionTrace) Steps() []StepRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StepRecord, len(t.steps))
	copy(out, t.steps)
	return out
}

// Len returns the number of recorded steps.
func (t *ExecutionTrace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.steps)
}
