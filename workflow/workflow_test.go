package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshapalnati/agno/agent"
	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/memory"
	"github.com/harshapalnati/agno/model"
	"github.com/harshapalnati/agno/team"
)

// scriptedRunner is a Runner test double driven by a callback receiving the
// 1-based call number and the input.
type scriptedRunner struct {
	mu       sync.Mutex
	calls    int
	sessions []string
	fn       func(call int, input string) (string, error)
}

func (r *scriptedRunner) RunOnce(_ context.Context, sessionID, input string) (*agent.Response, error) {
	r.mu.Lock()
	r.calls++
	call := r.calls
	r.sessions = append(r.sessions, sessionID)
	r.mu.Unlock()

	text, err := r.fn(call, input)
	if err != nil {
		return nil, err
	}
	return &agent.Response{Text: text, SessionID: sessionID, Turns: 1}, nil
}

func (r *scriptedRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *scriptedRunner) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sessions...)
}

func echoRunner() *scriptedRunner {
	return &scriptedRunner{fn: func(_ int, input string) (string, error) { return input, nil }}
}

func constRunner(text string) *scriptedRunner {
	return &scriptedRunner{fn: func(_ int, _ string) (string, error) { return text, nil }}
}

func failingRunner(msg string) *scriptedRunner {
	return &scriptedRunner{fn: func(_ int, _ string) (string, error) { return "", errors.New(msg) }}
}

func mustTeam(t *testing.T, name string, ms []team.Member, wf team.Workflow) *team.Team {
	t.Helper()
	tm, err := team.New(name, ms, wf)
	require.NoError(t, err)
	return tm
}

func TestNewRejectsMissingRunner(t *testing.T) {
	tm := mustTeam(t, "p",
		[]team.Member{{Name: "a"}, {Name: "b"}},
		team.Workflow{Kind: team.KindChain, Chain: []string{"a", "b"}})

	_, err := New(tm, map[string]Runner{"a": echoRunner()})
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, `"b"`)
}

func TestChainIdentity(t *testing.T) {
	tm := mustTeam(t, "echo-chain",
		[]team.Member{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		team.Workflow{Kind: team.KindChain, Chain: []string{"a", "b", "c"}})

	eng, err := New(tm, map[string]Runner{
		"a": echoRunner(), "b": echoRunner(), "c": echoRunner(),
	})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "unchanged")
	require.NoError(t, err)
	assert.Equal(t, "unchanged", res.Output)
	assert.Len(t, res.Outputs, 3)
	require.Equal(t, 3, res.Trace.Len())
	for _, step := range res.Trace.Steps() {
		assert.Equal(t, core.StepCompleted, step.Status)
	}
}

func TestChainPipesOutputs(t *testing.T) {
	mark := func(tag string) *scriptedRunner {
		return &scriptedRunner{fn: func(_ int, input string) (string, error) {
			return input + ">" + tag, nil
		}}
	}
	tm := mustTeam(t, "pipe",
		[]team.Member{{Name: "first"}, {Name: "second"}},
		team.Workflow{Kind: team.KindChain, Chain: []string{"first", "second"}})

	eng, err := New(tm, map[string]Runner{"first": mark("1"), "second": mark("2")})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "in")
	require.NoError(t, err)
	assert.Equal(t, "in>1>2", res.Output)
}

func TestChainStepFailureAborts(t *testing.T) {
	second := echoRunner()
	tm := mustTeam(t, "abort",
		[]team.Member{{Name: "boom"}, {Name: "after"}},
		team.Workflow{Kind: team.KindChain, Chain: []string{"boom", "after"}})

	eng, err := New(tm, map[string]Runner{"boom": failingRunner("nope"), "after": second})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "in")
	require.Error(t, err)
	var werr *core.WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, core.CodeNodeFailure, werr.Code)
	assert.Equal(t, 0, second.Calls())
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Trace.Len())
}

func editorialTeam(t *testing.T) *team.Team {
	return mustTeam(t, "editorial",
		[]team.Member{{Name: "writer"}, {Name: "reviewer"}},
		team.Workflow{
			Kind: team.KindFSM,
			FSM: &team.FSMSpec{
				States: []team.State{
					{Name: "Draft", Agent: "writer"},
					{Name: "Review", Agent: "reviewer"},
					{Name: "Done"},
				},
				Start:     "Draft",
				Terminals: []string{"Done"},
				Transitions: []team.Transition{
					{From: "Draft", Signal: "submit", To: "Review"},
					{From: "Review", Signal: "approve", To: "Done"},
					{From: "Review", Signal: "reject", To: "Draft"},
				},
			},
		})
}

func TestFSMHappyPath(t *testing.T) {
	writer := constRunner("a draft\nsubmit")
	reviewer := constRunner("reads well\napprove")

	eng, err := New(editorialTeam(t), map[string]Runner{"writer": writer, "reviewer": reviewer})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "write about rivers")
	require.NoError(t, err)
	assert.Equal(t, "reads well\napprove", res.Output)
	assert.Equal(t, 1, writer.Calls())
	assert.Equal(t, 1, reviewer.Calls())
	assert.Equal(t, 2, res.Trace.Len())
}

func TestFSMRejectLoopsBack(t *testing.T) {
	writer := constRunner("try again\nsubmit")
	reviewer := &scriptedRunner{fn: func(call int, _ string) (string, error) {
		if call == 1 {
			return "too short\nreject", nil
		}
		return "better\napprove", nil
	}}

	eng, err := New(editorialTeam(t), map[string]Runner{"writer": writer, "reviewer": reviewer})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, 2, writer.Calls())
	assert.Equal(t, 2, reviewer.Calls())
	assert.Equal(t, "better\napprove", res.Output)
}

func TestFSMUnknownSignal(t *testing.T) {
	writer := constRunner("done\nshrug")

	eng, err := New(editorialTeam(t), map[string]Runner{
		"writer": writer, "reviewer": echoRunner(),
	})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "go")
	require.Error(t, err)
	var werr *core.WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, core.CodeUnknownSignal, werr.Code)
	assert.Equal(t, "Draft", werr.Node)
	// The producing step is still recorded.
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Trace.Len())
}

func TestFSMNonTerminating(t *testing.T) {
	writer := constRunner("draft\nsubmit")
	reviewer := constRunner("no\nreject")

	eng, err := New(editorialTeam(t),
		map[string]Runner{"writer": writer, "reviewer": reviewer},
		func(o *Options) { o.StepLimit = 6 })
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), "go")
	var werr *core.WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, core.CodeNonTerminating, werr.Code)
	assert.Equal(t, 3, writer.Calls())
	assert.Equal(t, 3, reviewer.Calls())
}

func TestFSMTerminalReachedAtStepBound(t *testing.T) {
	writer := constRunner("a draft\nsubmit")
	reviewer := constRunner("ship it\napprove")

	// Done is reached by the last allowed transition; that is termination,
	// not exhaustion.
	eng, err := New(editorialTeam(t),
		map[string]Runner{"writer": writer, "reviewer": reviewer},
		func(o *Options) { o.StepLimit = 2 })
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "ship it\napprove", res.Output)
	assert.Equal(t, 1, writer.Calls())
	assert.Equal(t, 1, reviewer.Calls())
	assert.Equal(t, 2, res.Trace.Len())
}

func TestFSMSignalIsLastNonEmptyLine(t *testing.T) {
	assert.Equal(t, "approve", DefaultSignalPolicy("Looks good.\n\n  APPROVE  \n\n"))
	assert.Equal(t, "submit", DefaultSignalPolicy("submit"))
	assert.Equal(t, "", DefaultSignalPolicy("   \n"))
}

func TestChainStepsShareRunSession(t *testing.T) {
	first := echoRunner()
	second := echoRunner()
	tm := mustTeam(t, "pipeline",
		[]team.Member{{Name: "first"}, {Name: "second"}},
		team.Workflow{Kind: team.KindChain, Chain: []string{"first", "second"}})

	eng, err := New(tm, map[string]Runner{"first": first, "second": second})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "in")
	require.NoError(t, err)
	require.Equal(t, []string{res.Trace.RunID}, first.Sessions())
	require.Equal(t, []string{res.Trace.RunID}, second.Sessions())
}

func TestFSMStatesShareRunSession(t *testing.T) {
	writer := constRunner("a draft\nsubmit")
	reviewer := constRunner("fine\napprove")

	eng, err := New(editorialTeam(t), map[string]Runner{"writer": writer, "reviewer": reviewer})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, []string{res.Trace.RunID}, writer.Sessions())
	assert.Equal(t, []string{res.Trace.RunID}, reviewer.Sessions())
}

func TestSharedStoreAccumulatesRunTranscript(t *testing.T) {
	shared := memory.NewInMemoryStore()

	newMember := func(name, reply string) *agent.Agent {
		stub := model.NewStubModel()
		stub.QueueText(reply)
		return agent.New(name, stub, func(o *agent.Options) {
			o.Memory = shared
		})
	}

	tm := mustTeam(t, "pair",
		[]team.Member{{Name: "first"}, {Name: "second"}},
		team.Workflow{Kind: team.KindChain, Chain: []string{"first", "second"}})

	eng, err := New(tm, RunnersFor(map[string]*agent.Agent{
		"first":  newMember("first", "one"),
		"second": newMember("second", "two"),
	}))
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "start")
	require.NoError(t, err)

	// Both members wrote into the run's session, so the shared store holds
	// the whole handoff under one key.
	transcript, err := shared.Read(context.Background(), res.Trace.RunID)
	require.NoError(t, err)
	require.Len(t, transcript, 4)
	assert.Equal(t, "start", transcript[0].Content)
	assert.Equal(t, "one", transcript[1].Content)
	assert.Equal(t, "one", transcript[2].Content)
	assert.Equal(t, "two", transcript[3].Content)
}

func diamondTeam(t *testing.T) *team.Team {
	return mustTeam(t, "diamond",
		[]team.Member{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}},
		team.Workflow{
			Kind: team.KindDAG,
			DAG: &team.DAGSpec{
				Nodes: []team.DAGNode{
					{ID: "fetch", Agent: "a"},
					{ID: "left", Agent: "b"},
					{ID: "right", Agent: "c"},
					{ID: "join", Agent: "d"},
				},
				Edges: []team.DAGEdge{
					{From: "fetch", To: "left"},
					{From: "fetch", To: "right"},
					{From: "left", To: "join"},
					{From: "right", To: "join"},
				},
			},
		})
}

func TestDAGDiamond(t *testing.T) {
	root := constRunner("base")
	join := echoRunner()
	eng, err := New(diamondTeam(t), map[string]Runner{
		"a": root,
		"b": constRunner("L"),
		"c": constRunner("R"),
		"d": join,
	})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "start")
	require.NoError(t, err)
	// Join sees both branch outputs, in edge declaration order.
	assert.Equal(t, "L\n\nR", res.Output)
	assert.Len(t, res.Outputs, 4)
	assert.Equal(t, "base", res.Outputs["fetch"])
	assert.Equal(t, 4, res.Trace.Len())

	// Node sessions derive from the run id, so concurrent nodes stay on
	// separate transcripts that remain correlated to the run.
	assert.Equal(t, []string{res.Trace.RunID + ":fetch"}, root.Sessions())
	assert.Equal(t, []string{res.Trace.RunID + ":join"}, join.Sessions())
}

func TestDAGFailureSkipsDependentsOnly(t *testing.T) {
	tm := mustTeam(t, "branches",
		[]team.Member{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}},
		team.Workflow{
			Kind: team.KindDAG,
			DAG: &team.DAGSpec{
				Nodes: []team.DAGNode{
					{ID: "root", Agent: "a"},
					{ID: "bad", Agent: "b"},
					{ID: "good", Agent: "c"},
					{ID: "tail", Agent: "d"},
				},
				Edges: []team.DAGEdge{
					{From: "root", To: "bad"},
					{From: "root", To: "good"},
					{From: "bad", To: "tail"},
				},
			},
		})

	tail := echoRunner()
	eng, err := New(tm, map[string]Runner{
		"a": constRunner("root out"),
		"b": failingRunner("branch broke"),
		"c": constRunner("good out"),
		"d": tail,
	})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "start")
	var werr *core.WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, core.CodeNodeFailure, werr.Code)
	assert.Equal(t, "bad", werr.Node)

	// The skipped dependent was never invoked; the healthy branch completed.
	assert.Equal(t, 0, tail.Calls())
	require.NotNil(t, res)
	assert.Equal(t, "good out", res.Outputs["good"])
	assert.NotContains(t, res.Outputs, "tail")

	statuses := make(map[string]core.StepStatus)
	for _, step := range res.Trace.Steps() {
		statuses[step.Node] = step.Status
	}
	assert.Equal(t, core.StepCompleted, statuses["root"])
	assert.Equal(t, core.StepFailed, statuses["bad"])
	assert.Equal(t, core.StepCompleted, statuses["good"])
	assert.Equal(t, core.StepSkipped, statuses["tail"])
}

func TestDAGSingleNode(t *testing.T) {
	tm := mustTeam(t, "solo",
		[]team.Member{{Name: "a"}},
		team.Workflow{
			Kind: team.KindDAG,
			DAG:  &team.DAGSpec{Nodes: []team.DAGNode{{ID: "only", Agent: "a"}}},
		})

	only := &scriptedRunner{fn: func(_ int, input string) (string, error) {
		return strings.ToUpper(input), nil
	}}
	eng, err := New(tm, map[string]Runner{"a": only})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", res.Output)
}
