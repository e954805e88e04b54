package agent

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/solvegrid/solvegrid/core"
	"github.com/solvegrid/solvegrid/logging"
	"github.com/solvegrid/solvegrid/metrics"
	"github.com/solvegrid/solvegrid/oracle"
	"github.com/solvegrid/solvegrid/prompt"
	"github.com/solvegrid/solvegrid/sandbox"
	"github.com/solvegrid/solvegrid/scoring"
)

// Options holds dependency overrides passed to New().
type Options struct {
	// Builder assembles prompts; defaults to prompt.New().
	Builder *prompt.Builder
	// Logger receives per-iteration observability; defaults to NoOpLogger.
	Logger logging.Logger
}

// Runner drives one agent's iterate-generate-validate-feedback loop. A
// single Runner is safe to share across concurrent agents: all mutable
// state lives in the per-call frame.
type Runner struct {
	oracle  oracle.Oracle
	exec    sandbox.Executor
	scorer  scoring.Scorer
	builder *prompt.Builder
	logger  logging.Logger
}

// New constructs a Runner with optional overrides.
func New(orc oracle.Oracle, exec sandbox.Executor, scorer scoring.Scorer, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Builder: prompt.New(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{
		oracle:  orc,
		exec:    exec,
		scorer:  scorer,
		builder: opts.Builder,
		logger:  opts.Logger,
	}
}

// Run executes the refinement loop to a terminal state. It never returns an
// error: oracle, parse and execution failures are recorded in the result.
//
// The loop owns its RNG stream, seeded from cfg.Seed, and its wall clock
// starts at the first iteration. An oracle call whose local retries are all
// exhausted consumes an attempt slot without appending a record, so recorded
// iteration indices stay contiguous from 0.
func (r *Runner) Run(ctx context.Context, cfg core.AgentConfig, task core.Task) core.AgentResult {
	rng := rand.New(rand.NewPCG(cfg.Seed, 0))
	start := time.Now()
	result := core.AgentResult{AgentID: cfg.ID, BestIndex: -1}
	timeouts := 0

	for attempt := 0; attempt < cfg.MaxIterations; attempt++ {
		if cfg.MaxTotalTime > 0 && time.Since(start) > cfg.MaxTotalTime {
			return r.finalize(result, cfg, core.StatusExceededTimeBudget, start)
		}

		promptText, err := r.builder.Build(cfg, task, result.Iterations, rng)
		if err != nil {
			// A template that cannot render is a contract violation, not a
			// recoverable iteration failure.
			r.logger.Error("prompt assembly failed", "agent_id", cfg.ID, "error", err)
			return r.finalize(result, cfg, core.StatusFatalError, start)
		}

		response, errKind := r.callOracle(ctx, cfg, promptText, len(result.Iterations))
		if errKind == core.ErrorKindTimeout {
			timeouts++
			if cfg.MaxTotalTimeouts > 0 && timeouts >= cfg.MaxTotalTimeouts {
				return r.finalize(result, cfg, core.StatusExhaustedTimeouts, start)
			}
			continue
		}

		record := core.IterationRecord{Index: len(result.Iterations)}
		switch {
		case errKind != core.ErrorKindNone:
			record.ErrorKind = errKind
		default:
			code, perr := ExtractCode(response)
			if perr != nil {
				record.ErrorKind = core.ErrorKindParse
			} else {
				record = r.evaluate(ctx, cfg, task, code, record.Index)
			}
		}

		result.Iterations = append(result.Iterations, record)
		metrics.Iterations.Inc()

		if record.Success {
			result.BestIndex = record.Index
			return r.finalize(result, cfg, core.StatusSuccess, start)
		}
	}

	return r.finalize(result, cfg, core.StatusExhaustedIterations, start)
}

// callOracle performs one oracle call with bounded local retries on timeout.
// It returns the response text, or the error kind that ended the call:
// ErrorKindTimeout when every attempt timed out, ErrorKindTransport on a
// non-retryable failure.
func (r *Runner) callOracle(ctx context.Context, cfg core.AgentConfig, promptText string, iteration int) (string, core.ErrorKind) {
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		callCtx := ctx
		cancel := func() {}
		if cfg.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, cfg.CallTimeout)
		}

		callStart := time.Now()
		metrics.OracleCalls.Inc()
		text, err := r.oracle.Complete(callCtx, oracle.Request{Prompt: promptText, Temperature: cfg.Temperature})
		cancel()
		r.logOracle(cfg, iteration, time.Since(callStart), err)

		if err == nil {
			return text, core.ErrorKindNone
		}
		if oracle.IsTimeout(err) {
			metrics.OracleTimeouts.Inc()
			continue
		}
		return "", core.ErrorKindTransport
	}
	return "", core.ErrorKindTimeout
}

// evaluate runs the candidate against every train and test example and
// aggregates the outcome. Per-example failures are captured in the
// RunResults, never propagated.
func (r *Runner) evaluate(ctx context.Context, cfg core.AgentConfig, task core.Task, code string, index int) core.IterationRecord {
	record := core.IterationRecord{Index: index, Code: code}

	for _, pair := range task.Train {
		rr := r.runExample(ctx, cfg, code, pair.Input, pair.Output)
		record.Train = append(record.Train, rr)
	}
	for _, tc := range task.Test {
		rr := r.runExample(ctx, cfg, code, tc.Input, tc.Expected)
		record.Test = append(record.Test, rr)
	}

	record.Success = len(record.Train) > 0
	total := 0.0
	for _, rr := range record.Train {
		if !rr.Success {
			record.Success = false
		}
		total += rr.Score
	}
	if len(record.Train) > 0 {
		record.Score = total / float64(len(record.Train))
	}
	if !record.Success && record.ErrorKind == core.ErrorKindNone {
		for _, rr := range record.Train {
			if rr.ErrorKind != core.ErrorKindNone {
				record.ErrorKind = rr.ErrorKind
				break
			}
		}
	}
	return record
}

// runExample executes code against one input and, when an expected output is
// known, grades the result. Expected may be nil for test inputs.
func (r *Runner) runExample(ctx context.Context, cfg core.AgentConfig, code string, input, expected core.Grid) core.RunResult {
	metrics.SandboxRuns.Inc()
	rr := r.exec.Execute(ctx, code, input, cfg.ExecTimeout)
	if rr.ErrorKind != core.ErrorKindNone {
		rr.Score = 0
		rr.Success = false
		return rr
	}
	if expected == nil {
		return rr
	}
	rr.Score = r.scorer.Score(rr.Output, expected)
	rr.Success = rr.Output.Equal(expected)
	return rr
}

// finalize stamps the terminal status and, on non-success termination,
// selects the best-scoring iteration (earliest on ties) as the
// representative when the configuration asks for it.
func (r *Runner) finalize(result core.AgentResult, cfg core.AgentConfig, status core.Status, start time.Time) core.AgentResult {
	result.Status = status
	if status != core.StatusSuccess && cfg.ReturnBestResult && len(result.Iterations) > 0 {
		best := 0
		for i, it := range result.Iterations {
			if it.Score > result.Iterations[best].Score {
				best = i
			}
		}
		result.BestIndex = best
	}
	metrics.AgentsByStatus.WithLabelValues(string(status)).Inc()
	if sl, ok := r.logger.(*logging.SolveLogger); ok {
		sl.LogAgentTerminal(string(status), len(result.Iterations), time.Since(start))
	} else {
		r.logger.Info("agent reached terminal state", "agent_id", cfg.ID, "status", string(status), "iterations", len(result.Iterations))
	}
	return result
}

func (r *Runner) logOracle(cfg core.AgentConfig, iteration int, dur time.Duration, err error) {
	if sl, ok := r.logger.(*logging.SolveLogger); ok {
		sl.LogOracleCall(r.oracle.Info().Name, iteration, dur, err == nil, err)
		return
	}
	if err != nil {
		r.logger.Warn("oracle call failed", "agent_id", cfg.ID, "iteration", iteration, "error", err)
	}
}
