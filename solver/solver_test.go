package solver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvegrid/solvegrid/core"
	"github.com/solvegrid/solvegrid/oracle"
	"github.com/solvegrid/solvegrid/sandbox"
	"github.com/solvegrid/solvegrid/scoring"
)

func identityTask() core.Task {
	return core.Task{
		ID: "identity",
		Train: []core.Pair{
			{Input: core.Grid{{1, 2}, {3, 4}}, Output: core.Grid{{1, 2}, {3, 4}}},
		},
		Test: []core.TestCase{
			{Input: core.Grid{{7, 8}}},
		},
	}
}

// markerExecutor interprets programs by marker comments.
func markerExecutor() *sandbox.MockExecutor {
	return sandbox.NewMockExecutor(func(code string, input core.Grid) (core.Grid, error) {
		if strings.Contains(code, "IDENTITY") {
			return input.Clone(), nil
		}
		out := input.Clone()
		for i := range out {
			for j := range out[i] {
				out[i][j] = 0
			}
		}
		return out, nil
	})
}

func respond(marker string) string {
	return "```python\ndef transform(grid):\n    # " + marker + "\n    return grid\n```"
}

func configs(n int) []core.AgentConfig {
	out := make([]core.AgentConfig, n)
	for i := range out {
		out[i] = core.AgentConfig{
			MaxIterations:    1,
			MaxTotalTimeouts: 2,
			ReturnBestResult: true,
		}
	}
	return out
}

func TestSolvePasserRankedFirst(t *testing.T) {
	// The oracle script is shared across agents: two solve the task, one
	// produces the zeroed grid. With one iteration each, three agents
	// consume exactly three responses in scheduling order.
	orc := oracle.NewMockOracle().
		AddResponse(respond("IDENTITY")).
		AddResponse(respond("ZERO")).
		AddResponse(respond("IDENTITY"))
	s := New(orc, markerExecutor(), scoring.CellSimilarity{}, func(o *Options) {
		o.MaxConcurrentAgents = 1
	})

	ranked, results := s.Solve(context.Background(), configs(3), identityTask(), 42)
	require.Len(t, results, 3)
	require.Len(t, ranked, 3)

	assert.True(t, ranked[0].Record.Success)
	require.Len(t, ranked[0].Record.Test, 1)
	assert.Equal(t, core.Grid{{7, 8}}, ranked[0].Record.Test[0].Output)
}

func TestSolveNoPasserStillRanksEveryAgent(t *testing.T) {
	orc := oracle.NewMockOracle().AddResponse(respond("ZERO"))
	s := New(orc, markerExecutor(), scoring.CellSimilarity{})

	ranked, results := s.Solve(context.Background(), configs(4), identityTask(), 7)
	require.Len(t, results, 4)
	require.Len(t, ranked, 4)
	for _, e := range ranked {
		assert.False(t, e.Record.Success)
	}
	for _, res := range results {
		assert.Equal(t, core.StatusExhaustedIterations, res.Status)
	}
}

func TestSolveResultsMatchConfigOrder(t *testing.T) {
	orc := oracle.NewMockOracle().AddResponse(respond("IDENTITY"))
	s := New(orc, markerExecutor(), scoring.CellSimilarity{})

	cfgs := configs(3)
	cfgs[0].ID = "a"
	cfgs[1].ID = "b"
	cfgs[2].ID = "c"
	_, results := s.Solve(context.Background(), cfgs, identityTask(), 1)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].AgentID)
	assert.Equal(t, "b", results[1].AgentID)
	assert.Equal(t, "c", results[2].AgentID)
}

func TestSolveEmptyConfigs(t *testing.T) {
	orc := oracle.NewMockOracle().AddResponse(respond("IDENTITY"))
	s := New(orc, markerExecutor(), scoring.CellSimilarity{})

	ranked, results := s.Solve(context.Background(), nil, identityTask(), 0)
	assert.Empty(t, ranked)
	assert.Empty(t, results)
}
