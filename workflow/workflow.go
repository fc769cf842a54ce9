// Package workflow executes validated team topologies: sequential chains,
// signal-driven state machines and parallel dependency graphs. The Engine
// binds a team definition to live agent runners and drives one run at a
// time, recording every step in an execution trace.
package workflow

import (
	"context"
	"strings"

	"github.com/harshapalnati/agno/agent"
	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/logging"
	"github.com/harshapalnati/agno/team"
)

// Runner is the execution surface the engine needs from a member agent.
// *agent.Agent satisfies it.
type Runner interface {
	RunOnce(ctx context.Context, sessionID, input string) (*agent.Response, error)
}

// SignalPolicy extracts the routing signal from an agent's output. The
// default policy takes the last non-empty line, trimmed and lowercased, so
// agents can end a verbose answer with a bare signal word.
type SignalPolicy func(output string) string

// DefaultSignalPolicy returns the trimmed, lowercased last non-empty line of
// output.
func DefaultSignalPolicy(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			return strings.ToLower(line)
		}
	}
	return ""
}

// Options configures an Engine.
type Options struct {
	// Logger receives per-step diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// MaxWorkers caps concurrent node execution in DAG runs.
	MaxWorkers int

	// StepLimit bounds FSM transitions per run, turning livelocked state
	// machines into a NON_TERMINATING failure.
	StepLimit int

	// Signal overrides the routing-signal extraction for FSM runs.
	Signal SignalPolicy
}

// Result is the outcome of one workflow run. Outputs holds the per-node (or
// per-state, or per-chain-step) outputs keyed by node id; on a partial DAG
// failure it contains every node that completed before the run was cut short.
type Result struct {
	Output  string
	Outputs map[string]string
	Trace   *core.ExecutionTrace
}

// Engine executes one team's workflow. It is safe for concurrent Run calls;
// each run gets its own trace and sessions.
type Engine struct {
	team       *team.Team
	runners    map[string]Runner
	logger     logging.Logger
	maxWorkers int
	stepLimit  int
	signal     SignalPolicy
}

// New binds a validated team to its member runners. Every member the
// workflow references must have a runner; a missing binding is a
// *core.ConfigurationError.
func New(t *team.Team, runners map[string]Runner, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		MaxWorkers: 4,
		StepLimit:  32,
		Signal:     DefaultSignalPolicy,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 4
	}
	if opts.StepLimit <= 0 {
		opts.StepLimit = 32
	}
	if opts.Signal == nil {
		opts.Signal = DefaultSignalPolicy
	}

	for _, name := range referencedMembers(t) {
		if runners[name] == nil {
			return nil, core.NewConfigurationError("workflow", "no runner bound for member %q", name)
		}
	}

	return &Engine{
		team:       t,
		runners:    runners,
		logger:     logging.OrNoOp(opts.Logger),
		maxWorkers: opts.MaxWorkers,
		stepLimit:  opts.StepLimit,
		signal:     opts.Signal,
	}, nil
}

// Team returns the engine's team definition.
func (e *Engine) Team() *team.Team { return e.team }

// Run executes the team workflow on input. Member failures inside a run
// surface as *core.WorkflowError; the returned Result always carries the
// trace and any outputs produced before the failure.
func (e *Engine) Run(ctx context.Context, input string) (*Result, error) {
	trace := core.NewExecutionTrace(e.team.Name())
	e.logger.Info("workflow.run.start",
		"team", e.team.Name(), "kind", string(e.team.Workflow().Kind), "run_id", trace.RunID)

	var (
		res *Result
		err error
	)
	switch e.team.Workflow().Kind {
	case team.KindChain:
		res, err = e.runChain(ctx, input, trace)
	case team.KindFSM:
		res, err = e.runFSM(ctx, input, trace)
	case team.KindDAG:
		res, err = e.runDAG(ctx, input, trace)
	default:
		// Unreachable for a validated team.
		return nil, core.NewConfigurationError("workflow", "unknown workflow kind %q", e.team.Workflow().Kind)
	}

	if err != nil {
		e.logger.Error("workflow.run.failed", "team", e.team.Name(), "run_id", trace.RunID, "error", err.Error())
	} else {
		e.logger.Info("workflow.run.done", "team", e.team.Name(), "run_id", trace.RunID, "steps", trace.Len())
	}
	return res, err
}

// RunnersFor adapts a set of named agents to the runner map New expects.
func RunnersFor(agents map[string]*agent.Agent) map[string]Runner {
	runners := make(map[string]Runner, len(agents))
	for name, a := range agents {
		runners[name] = a
	}
	return runners
}

// referencedMembers returns the member names the workflow actually invokes.
func referencedMembers(t *team.Team) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	wf := t.Workflow()
	switch wf.Kind {
	case team.KindChain:
		for _, name := range wf.Chain {
			add(name)
		}
	case team.KindFSM:
		for _, s := range wf.FSM.States {
			add(s.Agent)
		}
	case team.KindDAG:
		for _, n := range wf.DAG.Nodes {
			add(n.Agent)
		}
	}
	return out
}
