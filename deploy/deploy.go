// Package deploy exposes an agent or team over HTTP. The server implements a
// small fixed contract (health, chat, status) so deployed agents are
// interchangeable from a caller's point of view and can address each other
// as peers.
package deploy

import (
	"context"
	"sync/atomic"

	"github.com/harshapalnati/agno/agent"
	"github.com/harshapalnati/agno/workflow"
)

// Target is the surface the server fronts. Both single agents and workflow
// engines satisfy it through the adapters below.
type Target interface {
	// Name identifies the deployment in status responses.
	Name() string

	// Respond answers one message within the given session. An empty
	// sessionID asks the target to start a new session; the effective id is
	// returned.
	Respond(ctx context.Context, sessionID, message string) (reply, outSession string, err error)

	// Turns reports the total model turns (or runs) served, for status.
	Turns() uint64
}

// AgentTarget fronts a single agent.
type AgentTarget struct {
	agent *agent.Agent
}

// NewAgentTarget wraps an agent for serving.
func NewAgentTarget(a *agent.Agent) *AgentTarget {
	return &AgentTarget{agent: a}
}

// Name implements Target.
func (t *AgentTarget) Name() string { return t.agent.Name() }

// Respond implements Target by running one bounded agent loop.
func (t *AgentTarget) Respond(ctx context.Context, sessionID, message string) (string, string, error) {
	resp, err := t.agent.RunOnce(ctx, sessionID, message)
	if err != nil {
		return "", "", err
	}
	return resp.Text, resp.SessionID, nil
}

// Turns implements Target.
func (t *AgentTarget) Turns() uint64 { return t.agent.TurnCount() }

// EngineTarget fronts a workflow engine. Each chat message triggers one full
// workflow run; the session id only correlates request and response since
// runs are independent.
type EngineTarget struct {
	engine *workflow.Engine
	runs   atomic.Uint64
}

// NewEngineTarget wraps eng for serving.
func NewEngineTarget(eng *workflow.Engine) *EngineTarget {
	return &EngineTarget{engine: eng}
}

// Name implements Target.
func (t *EngineTarget) Name() string { return t.engine.Team().Name() }

// Respond implements Target by executing one workflow run.
func (t *EngineTarget) Respond(ctx context.Context, sessionID, message string) (string, string, error) {
	res, err := t.engine.Run(ctx, message)
	if err != nil {
		return "", "", err
	}
	t.runs.Add(1)
	if sessionID == "" {
		sessionID = res.Trace.RunID
	}
	return res.Output, sessionID, nil
}

// Turns implements Target, counting completed runs.
func (t *EngineTarget) Turns() uint64 { return t.runs.Load() }

var (
	_ Target = (*AgentTarget)(nil)
	_ Target = (*EngineTarget)(nil)
)
