// Package metrics exposes Prometheus counters for the solve pipeline.
// Everything is registered on the default registry; embed promhttp.Handler
// in a process that wants to scrape them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OracleCalls counts oracle requests, including local retries.
	OracleCalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solvegrid_oracle_calls_total",
		Help: "Oracle completion requests issued, including retries.",
	})

	// OracleTimeouts counts oracle calls that exceeded their deadline.
	OracleTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solvegrid_oracle_timeouts_total",
		Help: "Oracle calls that timed out.",
	})

	// Iterations counts recorded refinement iterations across all agents.
	Iterations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solvegrid_iterations_total",
		Help: "Iteration records appended across all agents.",
	})

	// SandboxRuns counts sandbox executions of candidate programs.
	SandboxRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solvegrid_sandbox_runs_total",
		Help: "Sandbox executions of candidate programs.",
	})

	// AgentsByStatus counts agents reaching each terminal status.
	AgentsByStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solvegrid_agents_total",
		Help: "Agents reaching a terminal state, by status.",
	}, []string{"status"})
)
