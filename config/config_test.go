package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func stubResolver(stub *model.StubModel) ModelResolver {
	return func(ref string) (model.Model, error) {
		return stub, nil
	}
}

const agentYAML = `
name: researcher
instructions: You research things.
model: openai:gpt-4o-mini
memory: memory
tools:
  - echo
  - uppercase
max_turns: 4
`

func TestLoadAgent(t *testing.T) {
	cfg, err := LoadAgent(writeFile(t, "agent.yaml", agentYAML))
	require.NoError(t, err)
	assert.Equal(t, "researcher", cfg.Name)
	assert.Equal(t, "openai:gpt-4o-mini", cfg.Model)
	assert.Equal(t, []string{"echo", "uppercase"}, cfg.Tools)
	assert.Equal(t, 4, cfg.MaxTurns)
}

func TestLoadAgentRejectsDefects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "model: openai:gpt-4o-mini\n"},
		{"missing model", "name: a\n"},
		{"sqlite without path", "name: a\nmodel: m\nmemory: sqlite\n"},
		{"unknown backend", "name: a\nmodel: m\nmemory: redis\n"},
		{"malformed yaml", "name: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAgent(writeFile(t, "agent.yaml", tt.yaml))
			require.Error(t, err)
			var cfgErr *core.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestBuildAgent(t *testing.T) {
	cfg, err := LoadAgent(writeFile(t, "agent.yaml", agentYAML))
	require.NoError(t, err)

	stub := model.NewStubModel()
	stub.QueueText("done")

	a, err := cfg.Build(stubResolver(stub))
	require.NoError(t, err)
	assert.Equal(t, "researcher", a.Name())
	assert.Equal(t, "You research things.", a.Instructions())
	assert.ElementsMatch(t, []string{"echo", "uppercase"}, a.Tools().Names())

	resp, err := a.RunOnce(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Text)
}

const teamYAML = `
name: editorial
description: write and review
model: openai:gpt-4o-mini
agents:
  - name: writer
    role: drafts text
    instructions: Write a draft, end with submit.
  - name: reviewer
    instructions: Review, end with approve or reject.
workflow:
  kind: fsm
  fsm:
    states:
      - name: Draft
        agent: writer
      - name: Review
        agent: reviewer
      - name: Done
    start: Draft
    terminals: [Done]
    transitions:
      - {from: Draft, signal: submit, to: Review}
      - {from: Review, signal: approve, to: Done}
      - {from: Review, signal: reject, to: Draft}
`

func TestLoadTeam(t *testing.T) {
	cfg, err := LoadTeam(writeFile(t, "team.yaml", teamYAML))
	require.NoError(t, err)
	assert.Equal(t, "editorial", cfg.Name)
	require.Len(t, cfg.Agents, 2)
	assert.Equal(t, "writer", cfg.Agents[0].Name)
	require.NotNil(t, cfg.Workflow.FSM)
	assert.Equal(t, "Draft", cfg.Workflow.FSM.Start)
}

func TestBuildTeamRunsWorkflow(t *testing.T) {
	cfg, err := LoadTeam(writeFile(t, "team.yaml", teamYAML))
	require.NoError(t, err)

	stub := model.NewStubModel()
	stub.QueueFunc(func(req model.Request) (*model.Response, error) {
		// Writer and reviewer share the stub; each state needs a signal the
		// table knows.
		if len(req.Messages) > 0 && req.Instructions == "Write a draft, end with submit." {
			return &model.Response{Text: "a draft\nsubmit"}, nil
		}
		return &model.Response{Text: "fine\napprove"}, nil
	})

	eng, err := cfg.Build(stubResolver(stub))
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "write about tides")
	require.NoError(t, err)
	assert.Equal(t, "fine\napprove", res.Output)
	assert.Equal(t, 2, res.Trace.Len())
}

func TestBuildTeamRejectsBadTopology(t *testing.T) {
	bad := `
name: broken
model: m
agents:
  - name: a
workflow:
  kind: dag
  dag:
    nodes:
      - {id: x, agent: a}
      - {id: y, agent: a}
    edges:
      - {from: x, to: y}
      - {from: y, to: x}
`
	cfg, err := LoadTeam(writeFile(t, "team.yaml", bad))
	require.NoError(t, err)

	_, err = cfg.Build(stubResolver(model.NewStubModel()))
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "cycle")
}

func TestLoadTeamRequiresModelSomewhere(t *testing.T) {
	bad := `
name: t
agents:
  - name: a
workflow:
  kind: chain
  chain: [a]
`
	_, err := LoadTeam(writeFile(t, "team.yaml", bad))
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
