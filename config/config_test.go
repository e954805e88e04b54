package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
seed: 42
oracle:
  provider: anthropic
  model: claude-sonnet-4-20250514
  max_tokens: 4096
sandbox:
  image: python:3.11-slim
  max_concurrent: 4
  cpu_limit: 0.5
  memory_mb: 256
  exec_timeout: 15s
count: 3
defaults:
  temperature: 0.9
  max_iterations: 8
voting:
  count_failed_matches: true
max_concurrent_agents: 6
`))
	require.NoError(t, err)

	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "anthropic", cfg.Oracle.Provider)
	assert.Equal(t, "python:3.11-slim", cfg.Sandbox.Image)
	assert.Equal(t, 15*time.Second, time.Duration(cfg.Sandbox.ExecTimeout))
	assert.Equal(t, int64(6), cfg.MaxConcurrentAgents)
	assert.True(t, cfg.VotingOptions().CountFailedMatches)
}

func TestLoadRejectsEmptyRun(t *testing.T) {
	_, err := Load(writeConfig(t, `seed: 1`))
	assert.ErrorContains(t, err, "count")
}

func TestLoadDefaultsSandboxImage(t *testing.T) {
	cfg, err := Load(writeConfig(t, `count: 1`))
	require.NoError(t, err)
	assert.Equal(t, "python:3.12-slim", cfg.Sandbox.Image)
}

func TestLoadInvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
count: 1
sandbox:
  exec_timeout: soon
`))
	assert.ErrorContains(t, err, "invalid duration")
}

func TestAgentConfigsCountExpansion(t *testing.T) {
	cfg := &RunConfig{Count: 4}
	configs := cfg.AgentConfigs()
	require.Len(t, configs, 4)

	for i, ac := range configs {
		assert.Equal(t, uint64(0), ac.Seed)
		assert.Equal(t, 0.7, ac.Temperature)
		assert.Equal(t, 5, ac.MaxIterations)
		assert.Equal(t, 3, ac.MaxTotalTimeouts)
		assert.Equal(t, 60*time.Second, ac.CallTimeout)
		assert.True(t, ac.ReturnBestResult)
		assert.Equal(t, 0.5, ac.Feedback.SelectionProbability)
		assert.Equal(t, 3, ac.Feedback.MaxSolutions)
		assert.Equal(t, fmt.Sprintf("agent-%d", i), ac.ID)
	}
}

func TestAgentConfigsLayersDefaultsThenOverrides(t *testing.T) {
	temp := 1.2
	iters := 9
	retries := 0
	off := false
	cfg := &RunConfig{
		Defaults: AgentSpec{Temperature: &temp, MaxIterations: &iters},
		Agents: []AgentSpec{
			{ID: "hot", Prompt: "Think boldly.\n\n{{.Problem}}"},
			{ID: "careful", Retries: &retries, ReturnBestResult: &off},
		},
	}

	configs := cfg.AgentConfigs()
	require.Len(t, configs, 2)

	assert.Equal(t, "hot", configs[0].ID)
	assert.Equal(t, "Think boldly.\n\n{{.Problem}}", configs[0].Prompt)
	assert.Equal(t, 1.2, configs[0].Temperature)
	assert.Equal(t, 9, configs[0].MaxIterations)
	assert.Equal(t, 2, configs[0].Retries)

	assert.Equal(t, "careful", configs[1].ID)
	assert.Equal(t, 1.2, configs[1].Temperature)
	assert.Equal(t, 0, configs[1].Retries)
	assert.False(t, configs[1].ReturnBestResult)
}

func TestAgentConfigsSandboxTimeoutPropagates(t *testing.T) {
	cfg := &RunConfig{Count: 1, Sandbox: SandboxConfig{ExecTimeout: Duration(3 * time.Second)}}
	configs := cfg.AgentConfigs()
	require.Len(t, configs, 1)
	assert.Equal(t, 3*time.Second, configs[0].ExecTimeout)
}

func TestAgentConfigsVotingFlags(t *testing.T) {
	cfg := &RunConfig{Count: 1}
	cfg.Voting.IterationTiebreak = true
	cfg.Voting.LowToHighIterations = true

	configs := cfg.AgentConfigs()
	require.Len(t, configs, 1)
	assert.True(t, configs[0].Voting.IterationTiebreak)
	assert.True(t, configs[0].Voting.LowToHighIterations)
	assert.False(t, configs[0].Voting.CountFailedMatches)
}
