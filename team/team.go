// Package team defines declarative multi-agent teams: a set of named member
// agents plus a workflow topology (chain, state machine or dependency graph)
// describing how work moves between them. A Team is fully validated at
// construction; a valid Team can always be executed.
package team

import (
	"fmt"

	"github.com/harshapalnati/agno/core"
)

// WorkflowKind selects the coordination topology of a team.
type WorkflowKind string

const (
	// KindChain runs members sequentially, piping each output into the next.
	KindChain WorkflowKind = "chain"
	// KindFSM routes between states based on signals in member outputs.
	KindFSM WorkflowKind = "fsm"
	// KindDAG runs members in dependency order, parallelizing independent nodes.
	KindDAG WorkflowKind = "dag"
)

// Member describes one agent slot inside a team. The runtime that executes
// the team binds each member to a live agent by name.
type Member struct {
	// Name identifies the member within the team. Must be unique.
	Name string `yaml:"name" json:"name"`

	// Role is a short human-readable description of the member's purpose.
	Role string `yaml:"role,omitempty" json:"role,omitempty"`

	// Instructions is the member's system prompt.
	Instructions string `yaml:"instructions,omitempty" json:"instructions,omitempty"`

	// Tools names the builtin or registered tools available to the member.
	Tools []string `yaml:"tools,omitempty" json:"tools,omitempty"`

	// Model optionally overrides the team default model, as
	// "provider:model-id".
	Model string `yaml:"model,omitempty" json:"model,omitempty"`
}

// Workflow is a tagged union over the three topology specs. Exactly the spec
// matching Kind must be populated.
type Workflow struct {
	Kind  WorkflowKind `yaml:"kind" json:"kind"`
	Chain []string     `yaml:"chain,omitempty" json:"chain,omitempty"`
	FSM   *FSMSpec     `yaml:"fsm,omitempty" json:"fsm,omitempty"`
	DAG   *DAGSpec     `yaml:"dag,omitempty" json:"dag,omitempty"`
}

// State binds an FSM state name to the member that handles it. Terminal
// states may leave Agent empty.
type State struct {
	Name  string `yaml:"name" json:"name"`
	Agent string `yaml:"agent,omitempty" json:"agent,omitempty"`
}

// Transition is one row of the FSM transition table.
type Transition struct {
	From   string `yaml:"from" json:"from"`
	Signal string `yaml:"signal" json:"signal"`
	To     string `yaml:"to" json:"to"`
}

// FSMSpec describes a state machine topology. Every non-terminal state must
// have at least one outgoing transition, and at least one terminal must be
// reachable from the start state.
type FSMSpec struct {
	States      []State      `yaml:"states" json:"states"`
	Start       string       `yaml:"start" json:"start"`
	Terminals   []string     `yaml:"terminals" json:"terminals"`
	Transitions []Transition `yaml:"transitions" json:"transitions"`
}

// DAGNode binds a graph node id to the member that executes it.
type DAGNode struct {
	ID    string `yaml:"id" json:"id"`
	Agent string `yaml:"agent" json:"agent"`
}

// DAGEdge declares that To depends on From.
type DAGEdge struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// DAGSpec describes a dependency-graph topology. The graph must be acyclic.
type DAGSpec struct {
	Nodes []DAGNode `yaml:"nodes" json:"nodes"`
	Edges []DAGEdge `yaml:"edges" json:"edges"`
}

// Options configures a Team.
type Options struct {
	// Description is a short human-readable summary of the team.
	Description string
}

// Team is an immutable, validated team definition.
type Team struct {
	name        string
	description string
	members     []Member
	workflow    Workflow
	memberIdx   map[string]int
}

// New constructs a Team and validates it. Validation covers member name
// uniqueness, workflow references and topology well-formedness (acyclic DAG,
// complete FSM transition table, reachable terminals). All defects surface
// as *core.ConfigurationError at construction time.
func New(name string, members []Member, workflow Workflow, optFns ...func(o *Options)) (*Team, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if name == "" {
		return nil, core.NewConfigurationError("team", "team name must not be empty")
	}
	if len(members) == 0 {
		return nil, core.NewConfigurationError("team", "team %q has no members", name)
	}

	idx := make(map[string]int, len(members))
	for i, m := range members {
		if m.Name == "" {
			return nil, core.NewConfigurationError("team", "member %d of team %q has no name", i, name)
		}
		if _, dup := idx[m.Name]; dup {
			return nil, core.NewConfigurationError("team", "duplicate member name %q in team %q", m.Name, name)
		}
		idx[m.Name] = i
	}

	t := &Team{
		name:        name,
		description: opts.Description,
		members:     append([]Member(nil), members...),
		workflow:    workflow,
		memberIdx:   idx,
	}

	if err := t.validateWorkflow(); err != nil {
		return nil, err
	}
	return t, nil
}

// Name returns the team name.
func (t *Team) Name() string { return t.name }

// Description returns the team description.
func (t *Team) Description() string { return t.description }

// Members returns the team members in declaration order.
func (t *Team) Members() []Member {
	out := make([]Member, len(t.members))
	copy(out, t.members)
	return out
}

// Member looks up a member by name.
func (t *Team) Member(name string) (Member, bool) {
	i, ok := t.memberIdx[name]
	if !ok {
		return Member{}, false
	}
	return t.members[i], true
}

// Workflow returns the team's workflow spec.
func (t *Team) Workflow() Workflow { return t.workflow }

func (t *Team) validateWorkflow() error {
	switch t.workflow.Kind {
	case KindChain:
		return t.validateChain()
	case KindFSM:
		return t.validateFSM()
	case KindDAG:
		return t.validateDAG()
	default:
		return core.NewConfigurationError("workflow", "unknown workflow kind %q", t.workflow.Kind)
	}
}

func (t *Team) validateChain() error {
	chain := t.workflow.Chain
	if len(chain) == 0 {
		return core.NewConfigurationError("workflow", "chain workflow has no steps")
	}
	for _, name := range chain {
		if _, ok := t.memberIdx[name]; !ok {
			return core.NewConfigurationError("workflow", "chain step %q is not a team member", name)
		}
	}
	return nil
}

func (t *Team) validateFSM() error {
	spec := t.workflow.FSM
	if spec == nil {
		return core.NewConfigurationError("workflow", "fsm workflow has no spec")
	}
	if len(spec.States) == 0 {
		return core.NewConfigurationError("workflow", "fsm has no states")
	}

	states := make(map[string]State, len(spec.States))
	for _, s := range spec.States {
		if _, dup := states[s.Name]; dup {
			return core.NewConfigurationError("workflow", "duplicate fsm state %q", s.Name)
		}
		states[s.Name] = s
	}

	if _, ok := states[spec.Start]; !ok {
		return core.NewConfigurationError("workflow", "fsm start state %q is not declared", spec.Start)
	}
	if len(spec.Terminals) == 0 {
		return core.NewConfigurationError("workflow", "fsm declares no terminal states")
	}
	terminals := make(map[string]bool, len(spec.Terminals))
	for _, name := range spec.Terminals {
		if _, ok := states[name]; !ok {
			return core.NewConfigurationError("workflow", "fsm terminal state %q is not declared", name)
		}
		terminals[name] = true
	}

	outgoing := make(map[string]map[string]string) // from -> signal -> to
	for _, tr := range spec.Transitions {
		if _, ok := states[tr.From]; !ok {
			return core.NewConfigurationError("workflow", "fsm transition from unknown state %q", tr.From)
		}
		if _, ok := states[tr.To]; !ok {
			return core.NewConfigurationError("workflow", "fsm transition to unknown state %q", tr.To)
		}
		if terminals[tr.From] {
			return core.NewConfigurationError("workflow", "fsm terminal state %q has an outgoing transition", tr.From)
		}
		row := outgoing[tr.From]
		if row == nil {
			row = make(map[string]string)
			outgoing[tr.From] = row
		}
		if _, dup := row[tr.Signal]; dup {
			return core.NewConfigurationError("workflow", "fsm state %q has duplicate transition on signal %q", tr.From, tr.Signal)
		}
		row[tr.Signal] = tr.To
	}

	for _, s := range spec.States {
		if terminals[s.Name] {
			continue
		}
		if len(outgoing[s.Name]) == 0 {
			return core.NewConfigurationError("workflow", "fsm state %q has no outgoing transitions and is not terminal", s.Name)
		}
		if s.Agent == "" {
			return core.NewConfigurationError("workflow", "fsm state %q has no agent bound", s.Name)
		}
		if _, ok := t.memberIdx[s.Agent]; !ok {
			return core.NewConfigurationError("workflow", "fsm state %q references unknown member %q", s.Name, s.Agent)
		}
	}

	// At least one terminal must be reachable from the start state.
	reached := map[string]bool{spec.Start: true}
	frontier := []string{spec.Start}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, to := range outgoing[cur] {
			if !reached[to] {
				reached[to] = true
				frontier = append(frontier, to)
			}
		}
	}
	terminalReachable := false
	for name := range terminals {
		if reached[name] {
			terminalReachable = true
			break
		}
	}
	if !terminalReachable {
		return core.NewConfigurationError("workflow", "no terminal state is reachable from fsm start state %q", spec.Start)
	}
	return nil
}

func (t *Team) validateDAG() error {
	spec := t.workflow.DAG
	if spec == nil {
		return core.NewConfigurationError("workflow", "dag workflow has no spec")
	}
	if len(spec.Nodes) == 0 {
		return core.NewConfigurationError("workflow", "dag has no nodes")
	}

	nodes := make(map[string]bool, len(spec.Nodes))
	for _, n := range spec.Nodes {
		if nodes[n.ID] {
			return core.NewConfigurationError("workflow", "duplicate dag node %q", n.ID)
		}
		nodes[n.ID] = true
		if n.Agent == "" {
			return core.NewConfigurationError("workflow", "dag node %q has no agent bound", n.ID)
		}
		if _, ok := t.memberIdx[n.Agent]; !ok {
			return core.NewConfigurationError("workflow", "dag node %q references unknown member %q", n.ID, n.Agent)
		}
	}

	indegree := make(map[string]int, len(spec.Nodes))
	succ := make(map[string][]string)
	seen := make(map[DAGEdge]bool, len(spec.Edges))
	for _, e := range spec.Edges {
		if !nodes[e.From] {
			return core.NewConfigurationError("workflow", "dag edge from unknown node %q", e.From)
		}
		if !nodes[e.To] {
			return core.NewConfigurationError("workflow", "dag edge to unknown node %q", e.To)
		}
		if e.From == e.To {
			return core.NewConfigurationError("workflow", "dag node %q depends on itself", e.From)
		}
		if seen[e] {
			return core.NewConfigurationError("workflow", "duplicate dag edge %q -> %q", e.From, e.To)
		}
		seen[e] = true
		succ[e.From] = append(succ[e.From], e.To)
		indegree[e.To]++
	}

	// Kahn's algorithm: a cycle leaves nodes unprocessed.
	var ready []string
	for _, n := range spec.Nodes {
		if indegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}
	processed := 0
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		processed++
		for _, next := range succ[cur] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	if processed != len(spec.Nodes) {
		return core.NewConfigurationError("workflow", "dag for team %q contains a cycle", t.name)
	}
	return nil
}

// String implements fmt.Stringer.
func (t *Team) String() string {
	return fmt.Sprintf("Team(%s, %d members, %s)", t.name, len(t.members), t.workflow.Kind)
}
