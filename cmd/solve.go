package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	ansdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/solvegrid/solvegrid/config"
	"github.com/solvegrid/solvegrid/core"
	"github.com/solvegrid/solvegrid/logging"
	"github.com/solvegrid/solvegrid/oracle"
	"github.com/solvegrid/solvegrid/oracle/anthropic"
	"github.com/solvegrid/solvegrid/oracle/openai"
	"github.com/solvegrid/solvegrid/ranking"
	"github.com/solvegrid/solvegrid/sandbox"
	"github.com/solvegrid/solvegrid/sandbox/docker"
	"github.com/solvegrid/solvegrid/scoring"
	"github.com/solvegrid/solvegrid/solver"
	"github.com/solvegrid/solvegrid/task"
)

var (
	flagTask    string
	flagSeed    uint64
	flagTopK    int
	flagVerbose bool
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run the agent ensemble against one task file",
		RunE:  runSolve,
	}
	cmd.Flags().StringVar(&flagTask, "task", "", "path to the task JSON file")
	cmd.Flags().Uint64Var(&flagSeed, "seed", 0, "global seed (overrides config)")
	cmd.Flags().IntVar(&flagTopK, "top", 0, "print only the top K answers (0 = all)")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "log at debug level")
	cmd.MarkFlagRequired("task")
	return cmd
}

// answer is the serialized form of one ranked candidate.
type answer struct {
	Rank      int         `json:"rank"`
	AgentID   string      `json:"agent_id"`
	Iteration int         `json:"iteration"`
	Passed    bool        `json:"passed"`
	Score     float64     `json:"score"`
	Outputs   []core.Grid `json:"outputs"`
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	t, err := task.Load(flagTask)
	if err != nil {
		return err
	}

	level := logging.LogLevelInfo
	if flagVerbose {
		level = logging.LogLevelDebug
	}
	logger := logging.NewSlogLogger(level, "text", false)

	orc, err := buildOracle(cfg.Oracle)
	if err != nil {
		return err
	}

	exec, err := docker.New(func(o *docker.Options) {
		o.Image = cfg.Sandbox.Image
		if cfg.Sandbox.CPULimit > 0 {
			o.CPULimit = cfg.Sandbox.CPULimit
		}
		if cfg.Sandbox.MemoryMB > 0 {
			o.MemoryLimit = cfg.Sandbox.MemoryMB << 20
		}
	})
	if err != nil {
		return fmt.Errorf("creating sandbox: %w", err)
	}
	defer exec.Close()

	var executor sandbox.Executor = exec
	if cfg.Sandbox.MaxConcurrent > 0 {
		executor = sandbox.Bounded(exec, cfg.Sandbox.MaxConcurrent)
	}

	s := solver.New(orc, executor, scoring.CellSimilarity{}, func(o *solver.Options) {
		o.MaxConcurrentAgents = cfg.MaxConcurrentAgents
		o.Logger = logger
	})

	seed := cfg.Seed
	if flagSeed != 0 {
		seed = flagSeed
	}

	ranked, results := s.Solve(context.Background(), cfg.AgentConfigs(), t, seed)
	printSummary(results)
	return printAnswers(ranked)
}

func anthropicModel(s string) ansdk.Model { return ansdk.Model(s) }

func buildOracle(cfg config.OracleConfig) (oracle.Oracle, error) {
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	switch cfg.Provider {
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicModel(cfg.Model)
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
			o.APIKey = apiKey
		}), nil
	case "openai":
		return openai.New(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.MaxTokens
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}

func printSummary(results []core.AgentResult) {
	byStatus := map[core.Status]int{}
	for _, r := range results {
		byStatus[r.Status]++
	}
	fmt.Fprintf(os.Stderr, "agents: %d", len(results))
	for _, st := range []core.Status{core.StatusSuccess, core.StatusExhaustedIterations, core.StatusExhaustedTimeouts, core.StatusExceededTimeBudget, core.StatusFatalError} {
		if n := byStatus[st]; n > 0 {
			fmt.Fprintf(os.Stderr, "  %s=%d", st, n)
		}
	}
	fmt.Fprintln(os.Stderr)
}

func printAnswers(ranked []ranking.Entry) error {
	if flagTopK > 0 && len(ranked) > flagTopK {
		ranked = ranked[:flagTopK]
	}
	answers := make([]answer, len(ranked))
	for i, e := range ranked {
		answers[i] = answer{
			Rank:      i + 1,
			AgentID:   e.AgentID,
			Iteration: e.Record.Index,
			Passed:    e.Record.Success,
			Score:     e.Record.Score,
			Outputs:   e.Record.TestOutputs(),
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(answers)
}
