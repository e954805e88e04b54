// Package scheduler provides parallel execution coordination for agents.
//
// The Scheduler runs one agent per configuration concurrently with no shared
// mutable state, joins on a single barrier, and never lets one agent's
// failure affect its siblings: a panicking agent is converted into a
// fatal_error result in place.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/solvegrid/solvegrid/agent"
	"github.com/solvegrid/solvegrid/core"
	"github.com/solvegrid/solvegrid/logging"
)

// Options configure a Scheduler.
type Options struct {
	// MaxConcurrentAgents bounds how many agents run at once; 0 means all.
	MaxConcurrentAgents int64
	// Logger receives scheduling observability; defaults to NoOpLogger.
	Logger logging.Logger
}

// Scheduler launches one agent per configuration and joins on completion.
type Scheduler struct {
	runner *agent.Runner
	sem    *semaphore.Weighted
	logger logging.Logger
}

// New constructs a Scheduler around a shared (stateless) agent runner.
func New(runner *agent.Runner, optFns ...func(o *Options)) *Scheduler {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &Scheduler{runner: runner, logger: opts.Logger}
	if opts.MaxConcurrentAgents > 0 {
		s.sem = semaphore.NewWeighted(opts.MaxConcurrentAgents)
	}
	return s
}

// Solve runs every configuration concurrently and returns one AgentResult
// per config, in config order. The call as a whole never fails; a fault
// inside one agent becomes a fatal_error result with empty history. Solve
// returns only once every agent has reached a terminal state.
//
// Each agent's seed is derived deterministically from globalSeed and the
// agent's index, so runs are reproducible regardless of goroutine
// interleaving.
func (s *Scheduler) Solve(ctx context.Context, configs []core.AgentConfig, task core.Task, globalSeed uint64) []core.AgentResult {
	runID := uuid.NewString()
	results := make([]core.AgentResult, len(configs))

	var wg sync.WaitGroup
	for i, cfg := range configs {
		cfg.Seed = DeriveSeed(globalSeed, i)
		if cfg.ID == "" {
			cfg.ID = fmt.Sprintf("agent-%d", i)
		}

		wg.Add(1)
		go func(idx int, cfg core.AgentConfig) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					s.logger.Error("agent panicked", "run_id", runID, "agent_id", cfg.ID, "panic", fmt.Sprintf("%v", rec))
					results[idx] = core.AgentResult{AgentID: cfg.ID, Status: core.StatusFatalError, BestIndex: -1}
				}
			}()

			if s.sem != nil {
				if err := s.sem.Acquire(ctx, 1); err != nil {
					results[idx] = core.AgentResult{AgentID: cfg.ID, Status: core.StatusFatalError, BestIndex: -1}
					return
				}
				defer s.sem.Release(1)
			}

			s.logger.Debug("agent starting", "run_id", runID, "agent_id", cfg.ID, "seed", cfg.Seed)
			results[idx] = s.runner.Run(ctx, cfg, task)
		}(i, cfg)
	}

	wg.Wait()
	return results
}

// DeriveSeed maps (globalSeed, agent index) to a well-mixed per-agent seed
// using the splitmix64 finalizer. Distinct indices always produce distinct
// streams for the same global seed.
func DeriveSeed(globalSeed uint64, index int) uint64 {
	z := globalSeed + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
