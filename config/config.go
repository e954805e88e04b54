// Package config loads the YAML run configuration and expands it into the
// immutable per-agent configurations handed to the scheduler.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/solvegrid/solvegrid/core"
)

// Duration wraps time.Duration so YAML values like "30s" parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// OracleConfig selects and parameterizes the oracle provider.
type OracleConfig struct {
	// Provider is "anthropic", "openai" or "mock".
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the provider key;
	// empty falls back to the SDK default.
	APIKeyEnv string `yaml:"api_key_env"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// SandboxConfig parameterizes the docker executor.
type SandboxConfig struct {
	Image string `yaml:"image"`
	// MaxConcurrent bounds concurrent executions; 1 serializes the sandbox,
	// 0 leaves it unbounded.
	MaxConcurrent int64    `yaml:"max_concurrent"`
	CPULimit      float64  `yaml:"cpu_limit"`
	MemoryMB      int64    `yaml:"memory_mb"`
	ExecTimeout   Duration `yaml:"exec_timeout"`
}

// AgentSpec is the YAML shape of one agent configuration. Zero fields fall
// back to the run defaults.
type AgentSpec struct {
	ID string `yaml:"id"`
	// Prompt overrides the iteration-0 template for this agent.
	Prompt               string   `yaml:"prompt"`
	Temperature          *float64 `yaml:"temperature"`
	CallTimeout          Duration `yaml:"call_timeout"`
	Retries              *int     `yaml:"retries"`
	MaxIterations        *int     `yaml:"max_iterations"`
	MaxTotalTimeouts     *int     `yaml:"max_total_timeouts"`
	MaxTotalTime         Duration `yaml:"max_total_time"`
	SelectionProbability *float64 `yaml:"selection_probability"`
	MaxSolutions         *int     `yaml:"max_solutions"`
	ImprovingOrder       *bool    `yaml:"improving_order"`
	ReturnBestResult     *bool    `yaml:"return_best_result"`
}

// RunConfig is the top-level YAML document.
type RunConfig struct {
	Seed    uint64        `yaml:"seed"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	// Count expands Defaults into that many agents when Agents is empty.
	Count    int       `yaml:"count"`
	Defaults AgentSpec `yaml:"defaults"`
	// Agents lists explicit per-agent overrides layered on Defaults.
	Agents []AgentSpec `yaml:"agents"`
	Voting struct {
		CountFailedMatches  bool `yaml:"count_failed_matches"`
		IterationTiebreak   bool `yaml:"iteration_tiebreak"`
		LowToHighIterations bool `yaml:"low_to_high_iterations"`
	} `yaml:"voting"`
	// MaxConcurrentAgents bounds the scheduler; 0 runs all agents at once.
	MaxConcurrentAgents int64 `yaml:"max_concurrent_agents"`
}

// Load reads and validates a run configuration file.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.Count <= 0 && len(cfg.Agents) == 0 {
		return nil, fmt.Errorf("config needs count > 0 or an agents list")
	}
	if cfg.Sandbox.Image == "" {
		cfg.Sandbox.Image = "python:3.12-slim"
	}
	return &cfg, nil
}

// AgentConfigs expands the run configuration into one immutable AgentConfig
// per agent, in declaration order. Seeds are left zero; the scheduler
// derives them from the global seed.
func (c *RunConfig) AgentConfigs() []core.AgentConfig {
	specs := c.Agents
	if len(specs) == 0 {
		specs = make([]AgentSpec, c.Count)
	}

	out := make([]core.AgentConfig, len(specs))
	for i, spec := range specs {
		out[i] = c.expand(spec, i)
	}
	return out
}

func (c *RunConfig) expand(spec AgentSpec, index int) core.AgentConfig {
	cfg := core.AgentConfig{
		ID:               spec.ID,
		Temperature:      0.7,
		CallTimeout:      60 * time.Second,
		ExecTimeout:      10 * time.Second,
		Retries:          2,
		MaxIterations:    5,
		MaxTotalTimeouts: 3,
		Feedback: core.FeedbackConfig{
			SelectionProbability: 0.5,
			MaxSolutions:         3,
			ImprovingOrder:       true,
		},
		ReturnBestResult: true,
		Voting: core.VotingOptions{
			CountFailedMatches:  c.Voting.CountFailedMatches,
			IterationTiebreak:   c.Voting.IterationTiebreak,
			LowToHighIterations: c.Voting.LowToHighIterations,
		},
	}
	if cfg.ID == "" {
		cfg.ID = fmt.Sprintf("agent-%d", index)
	}
	if c.Sandbox.ExecTimeout > 0 {
		cfg.ExecTimeout = time.Duration(c.Sandbox.ExecTimeout)
	}

	for _, s := range []AgentSpec{c.Defaults, spec} {
		if s.Prompt != "" {
			cfg.Prompt = s.Prompt
		}
		if s.Temperature != nil {
			cfg.Temperature = *s.Temperature
		}
		if s.CallTimeout > 0 {
			cfg.CallTimeout = time.Duration(s.CallTimeout)
		}
		if s.Retries != nil {
			cfg.Retries = *s.Retries
		}
		if s.MaxIterations != nil {
			cfg.MaxIterations = *s.MaxIterations
		}
		if s.MaxTotalTimeouts != nil {
			cfg.MaxTotalTimeouts = *s.MaxTotalTimeouts
		}
		if s.MaxTotalTime > 0 {
			cfg.MaxTotalTime = time.Duration(s.MaxTotalTime)
		}
		if s.SelectionProbability != nil {
			cfg.Feedback.SelectionProbability = *s.SelectionProbability
		}
		if s.MaxSolutions != nil {
			cfg.Feedback.MaxSolutions = *s.MaxSolutions
		}
		if s.ImprovingOrder != nil {
			cfg.Feedback.ImprovingOrder = *s.ImprovingOrder
		}
		if s.ReturnBestResult != nil {
			cfg.ReturnBestResult = *s.ReturnBestResult
		}
	}
	return cfg
}

// VotingOptions returns the aggregation flags as core options.
func (c *RunConfig) VotingOptions() core.VotingOptions {
	return core.VotingOptions{
		CountFailedMatches:  c.Voting.CountFailedMatches,
		IterationTiebreak:   c.Voting.IterationTiebreak,
		LowToHighIterations: c.Voting.LowToHighIterations,
	}
}
