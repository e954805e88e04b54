package core

import "strings"

// Status is the terminal state of an agent's refinement loop.
type Status string

const (
	// StatusSuccess means an iteration solved every train example.
	StatusSuccess Status = "success"
	// StatusExhaustedIterations means the iteration budget ran out.
	StatusExhaustedIterations Status = "exhausted_iterations"
	// StatusExhaustedTimeouts means the cumulative oracle-timeout budget ran out.
	StatusExhaustedTimeouts Status = "exhausted_timeouts"
	// StatusExceededTimeBudget means the agent's own wall-clock budget ran out.
	StatusExceededTimeBudget Status = "exceeded_time_budget"
	// StatusFatalError means a collaborator contract violation killed the
	// agent; its history is empty.
	StatusFatalError Status = "fatal_error"
)

// ErrorKind classifies recoverable and terminal failures. Parse and execution
// errors are local events recorded in an IterationRecord; the loop continues.
type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindParse     ErrorKind = "parse"
	ErrorKindExecution ErrorKind = "execution"
	ErrorKindFatal     ErrorKind = "fatal"
)

// RunResult is the outcome of executing one candidate program against one
// example. Produced once, immutable thereafter.
type RunResult struct {
	// Success is true iff the program ran cleanly and its output matched the
	// expected grid exactly.
	Success bool `json:"success"`
	// Output is the grid parsed from the program's stdout; nil when execution
	// failed or produced nothing parseable.
	Output Grid `json:"output,omitempty"`
	// Raw is the untouched stdout.
	Raw string `json:"raw,omitempty"`
	// Score is the similarity to the expected output in [0,1]; 0 on crash or
	// when no expected output is known.
	Score     float64   `json:"score"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// IterationRecord is one entry of an agent's append-only history.
type IterationRecord struct {
	Index int    `json:"index"`
	Code  string `json:"code"`
	// Train holds one RunResult per train example, in example order; Test
	// likewise for test cases. Both are empty when the iteration failed
	// before execution (for example on a parse error).
	Train []RunResult `json:"train"`
	Test  []RunResult `json:"test"`
	// Success is true iff every train RunResult succeeded.
	Success bool `json:"success"`
	// Score is the mean train score, 0 when there are no train results.
	Score     float64   `json:"score"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
}

// TestOutputs returns the ordered predicted test grids.
func (r IterationRecord) TestOutputs() []Grid {
	out := make([]Grid, len(r.Test))
	for i, t := range r.Test {
		out[i] = t.Output
	}
	return out
}

// OutputKey is the canonical encoding of the record's ordered test outputs.
// Two records with bit-identical predicted test outputs share a key
// regardless of their train performance.
func (r IterationRecord) OutputKey() string {
	parts := make([]string, len(r.Test))
	for i, t := range r.Test {
		parts[i] = t.Output.Encode()
	}
	return strings.Join(parts, "|")
}

// AgentResult is the finalized outcome of one agent. It is created exactly
// once, when the loop reaches a terminal state.
type AgentResult struct {
	AgentID    string            `json:"agent_id"`
	Iterations []IterationRecord `json:"iterations"`
	Status     Status            `json:"status"`
	// BestIndex is the index of the selected iteration, -1 when none was
	// selected.
	BestIndex int `json:"best_index"`
}

// Representative returns the record that stands for this agent at
// aggregation time: its success iteration if one exists, else the selected
// best iteration, else the last one. ok is false for fatal or empty results.
func (a AgentResult) Representative() (IterationRecord, bool) {
	if len(a.Iterations) == 0 {
		return IterationRecord{}, false
	}
	for _, it := range a.Iterations {
		if it.Success {
			return it, true
		}
	}
	if a.BestIndex >= 0 && a.BestIndex < len(a.Iterations) {
		return a.Iterations[a.BestIndex], true
	}
	return a.Iterations[len(a.Iterations)-1], true
}
