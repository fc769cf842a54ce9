// Package config loads agent and team definitions from YAML files and turns
// them into runnable agents and workflow engines. Model references stay
// symbolic ("provider:model-id") until a ModelResolver binds them, so config
// files carry no credentials or SDK specifics.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harshapalnati/agno/agent"
	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/logging"
	"github.com/harshapalnati/agno/memory"
	"github.com/harshapalnati/agno/memory/sqlite"
	"github.com/harshapalnati/agno/model"
	"github.com/harshapalnati/agno/team"
	"github.com/harshapalnati/agno/tool"
	"github.com/harshapalnati/agno/tool/builtin"
	"github.com/harshapalnati/agno/workflow"
)

// Memory backend selectors accepted in config files.
const (
	MemoryInMemory = "memory"
	MemorySQLite   = "sqlite"
)

// ModelResolver binds a symbolic model reference like "openai:gpt-4o-mini"
// to a live model.
type ModelResolver func(ref string) (model.Model, error)

// AgentConfig is the YAML surface for a single agent.
type AgentConfig struct {
	Name         string   `yaml:"name"`
	Instructions string   `yaml:"instructions"`
	Model        string   `yaml:"model"`
	Memory       string   `yaml:"memory,omitempty"`
	MemoryPath   string   `yaml:"memory_path,omitempty"`
	Tools        []string `yaml:"tools,omitempty"`
	MaxTurns     int      `yaml:"max_turns,omitempty"`
}

// TeamConfig is the YAML surface for a team. Members reuse the team.Member
// shape; a member without its own model falls back to the team default.
type TeamConfig struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Model       string        `yaml:"model"`
	Memory      string        `yaml:"memory,omitempty"`
	MemoryPath  string        `yaml:"memory_path,omitempty"`
	Agents      []team.Member `yaml:"agents"`
	Workflow    team.Workflow `yaml:"workflow"`
}

// LoadAgent reads and validates an agent config file.
func LoadAgent(path string) (*AgentConfig, error) {
	var cfg AgentConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadTeam reads and validates a team config file.
func LoadTeam(path string) (*TeamConfig, error) {
	var cfg TeamConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return core.NewConfigurationError("config", "parse %s: %v", path, err)
	}
	return nil
}

// Validate checks the fields that can be checked without a resolver.
func (c *AgentConfig) Validate() error {
	if c.Name == "" {
		return core.NewConfigurationError("config", "agent name must not be empty")
	}
	if c.Model == "" {
		return core.NewConfigurationError("config", "agent %q has no model reference", c.Name)
	}
	return validateMemory(c.Memory, c.MemoryPath, c.Name)
}

// Validate checks the fields that can be checked without a resolver. Workflow
// topology defects surface later, from team.New.
func (c *TeamConfig) Validate() error {
	if c.Name == "" {
		return core.NewConfigurationError("config", "team name must not be empty")
	}
	if len(c.Agents) == 0 {
		return core.NewConfigurationError("config", "team %q has no agents", c.Name)
	}
	for _, m := range c.Agents {
		if m.Model == "" && c.Model == "" {
			return core.NewConfigurationError("config",
				"member %q of team %q has no model and the team sets no default", m.Name, c.Name)
		}
	}
	return validateMemory(c.Memory, c.MemoryPath, c.Name)
}

func validateMemory(backend, path, owner string) error {
	switch backend {
	case "", MemoryInMemory:
		return nil
	case MemorySQLite:
		if path == "" {
			return core.NewConfigurationError("config", "%q selects sqlite memory but sets no memory_path", owner)
		}
		return nil
	default:
		return core.NewConfigurationError("config", "%q selects unknown memory backend %q", owner, backend)
	}
}

// BuildOptions configures agent and engine construction from config.
type BuildOptions struct {
	// Logger is handed to every constructed component. Defaults to NoOp.
	Logger logging.Logger
}

// Build constructs the configured agent. Tool names resolve against the
// builtin set.
func (c *AgentConfig) Build(resolve ModelResolver, optFns ...func(o *BuildOptions)) (*agent.Agent, error) {
	opts := BuildOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	m, err := resolve(c.Model)
	if err != nil {
		return nil, fmt.Errorf("resolve model %q: %w", c.Model, err)
	}

	store, err := newStore(c.Memory, c.MemoryPath)
	if err != nil {
		return nil, err
	}

	reg := tool.NewRegistry(func(o *tool.RegistryOptions) {
		o.Logger = opts.Logger
	})
	if err := builtin.Register(reg, c.Tools...); err != nil {
		return nil, err
	}

	return agent.New(c.Name, m, func(o *agent.Options) {
		if c.Instructions != "" {
			o.Instructions = c.Instructions
		}
		o.Memory = store
		o.Tools = reg
		o.MaxTurns = c.MaxTurns
		o.Logger = opts.Logger
	}), nil
}

// Build constructs the configured team and a workflow engine over it. All
// member agents share one memory store, so teammates can read each other's
// transcripts when handed a common session id.
func (c *TeamConfig) Build(resolve ModelResolver, optFns ...func(o *BuildOptions)) (*workflow.Engine, error) {
	opts := BuildOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	tm, err := team.New(c.Name, c.Agents, c.Workflow, func(o *team.Options) {
		o.Description = c.Description
	})
	if err != nil {
		return nil, err
	}

	shared, err := newStore(c.Memory, c.MemoryPath)
	if err != nil {
		return nil, err
	}

	agents := make(map[string]*agent.Agent, len(c.Agents))
	for _, member := range c.Agents {
		ref := member.Model
		if ref == "" {
			ref = c.Model
		}
		m, err := resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("resolve model %q for member %q: %w", ref, member.Name, err)
		}

		reg := tool.NewRegistry(func(o *tool.RegistryOptions) {
			o.Logger = opts.Logger
		})
		if err := builtin.Register(reg, member.Tools...); err != nil {
			return nil, err
		}

		instructions := member.Instructions
		agents[member.Name] = agent.New(member.Name, m, func(o *agent.Options) {
			if instructions != "" {
				o.Instructions = instructions
			}
			o.Memory = shared
			o.Tools = reg
			o.Logger = opts.Logger
		})
	}

	return workflow.New(tm, workflow.RunnersFor(agents), func(o *workflow.Options) {
		o.Logger = opts.Logger
	})
}

func newStore(backend, path string) (memory.Store, error) {
	switch backend {
	case "", MemoryInMemory:
		return memory.NewInMemoryStore(), nil
	case MemorySQLite:
		return sqlite.New(path)
	default:
		return nil, core.NewConfigurationError("config", "unknown memory backend %q", backend)
	}
}
