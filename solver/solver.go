// Package solver ties the pipeline together: it schedules every configured
// agent against a task, waits for all of them to terminate, and ranks their
// outputs into one answer list. This is the library's top-level entry point;
// process concerns (files, flags, serialization) live in cmd.
package solver

import (
	"context"

	"github.com/solvegrid/solvegrid/agent"
	"github.com/solvegrid/solvegrid/core"
	"github.com/solvegrid/solvegrid/logging"
	"github.com/solvegrid/solvegrid/oracle"
	"github.com/solvegrid/solvegrid/prompt"
	"github.com/solvegrid/solvegrid/ranking"
	"github.com/solvegrid/solvegrid/sandbox"
	"github.com/solvegrid/solvegrid/scheduler"
	"github.com/solvegrid/solvegrid/scoring"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Ranker orders the terminal results; defaults to ranking.Diversity.
	Ranker ranking.Ranker
	// Builder assembles prompts; defaults to prompt.New().
	Builder *prompt.Builder
	// MaxConcurrentAgents bounds the scheduler; 0 runs all agents at once.
	MaxConcurrentAgents int64
	// Logger receives pipeline observability; defaults to NoOpLogger.
	Logger logging.Logger
}

// Solver runs the full configs × task × seed → ranked answers pipeline.
type Solver struct {
	sched  *scheduler.Scheduler
	ranker ranking.Ranker
	logger logging.Logger
}

// New constructs a Solver with optional overrides.
func New(orc oracle.Oracle, exec sandbox.Executor, scorer scoring.Scorer, optFns ...func(o *Options)) *Solver {
	opts := Options{
		Ranker: ranking.Diversity{},
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	runner := agent.New(orc, exec, scorer, func(o *agent.Options) {
		if opts.Builder != nil {
			o.Builder = opts.Builder
		}
		o.Logger = opts.Logger
	})
	sched := scheduler.New(runner, func(o *scheduler.Options) {
		o.MaxConcurrentAgents = opts.MaxConcurrentAgents
		o.Logger = opts.Logger
	})

	return &Solver{sched: sched, ranker: opts.Ranker, logger: opts.Logger}
}

// Solve runs every agent to a terminal state and returns the ranked answer
// list plus the raw per-agent results, one per config in config order.
// Aggregation begins only after every agent has terminated; the voting flags
// are read from the first configuration. Even when no agent passes, the
// ranked list still covers every non-fatal agent.
func (s *Solver) Solve(ctx context.Context, configs []core.AgentConfig, t core.Task, globalSeed uint64) ([]ranking.Entry, []core.AgentResult) {
	results := s.sched.Solve(ctx, configs, t, globalSeed)

	var opts core.VotingOptions
	if len(configs) > 0 {
		opts = configs[0].Voting
	}
	ranked := s.ranker.Rank(results, opts)
	s.logger.Info("solve completed", "task_id", t.ID, "agents", len(configs), "ranked", len(ranked))
	return ranked, results
}
