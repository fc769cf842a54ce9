// Package agno provides a high-level façade for building and running
// multi-agent systems: single agents with a bounded tool-calling loop,
// teams coordinated by chain, state-machine or dependency-graph workflows,
// and an HTTP deployment contract that lets agents address each other as
// peers. Most applications interact with it by:
//  1. Constructing agents via agent.New (model, memory, tools)
//  2. Optionally declaring a team via team.New and binding it to runners
//     with workflow.New
//  3. Invoking RunOnce / Run directly, or serving over HTTP via deploy
//
// All defaults are safe for local development and testing: volatile
// in-memory session stores, a no-op logger and the builtin tool set.
// Production deployments typically supply a durable memory store
// (memory/sqlite), a structured logger and provider-backed models
// (model/openai, model/anthropic).
package agno

import (
	"github.com/harshapalnati/agno/agent"
	"github.com/harshapalnati/agno/logging"
	"github.com/harshapalnati/agno/memory"
	"github.com/harshapalnati/agno/model"
	"github.com/harshapalnati/agno/tool"
)

// Options configures the façade.
type Options struct {
	// Memory is shared by every agent created through this façade, so
	// teammates can read each other's transcripts. Defaults to a volatile
	// in-memory store.
	Memory memory.Store

	// Tools is the shared registry handed to every agent that does not
	// bring its own. Defaults to an empty registry.
	Tools *tool.Registry

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Agno aggregates the shared services agents are constructed with. It holds
// no global state; multiple independently configured instances can coexist
// in one process.
type Agno struct {
	memory memory.Store
	tools  *tool.Registry
	logger logging.Logger
}

// New creates a façade with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Agno {
	opts := Options{
		Memory: memory.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Tools == nil {
		opts.Tools = tool.NewRegistry(func(o *tool.RegistryOptions) {
			o.Logger = opts.Logger
		})
	}

	return &Agno{memory: opts.Memory, tools: opts.Tools, logger: opts.Logger}
}

// Memory returns the shared session store.
func (a *Agno) Memory() memory.Store { return a.memory }

// Tools returns the shared tool registry.
func (a *Agno) Tools() *tool.Registry { return a.tools }

// NewAgent constructs an agent wired to the façade's shared memory, tools
// and logger. Per-agent overrides still apply through optFns.
func (a *Agno) NewAgent(name string, m model.Model, optFns ...func(o *agent.Options)) *agent.Agent {
	base := func(o *agent.Options) {
		o.Memory = a.memory
		o.Tools = a.tools
		o.Logger = a.logger
	}
	return agent.New(name, m, append([]func(o *agent.Options){base}, optFns...)...)
}
