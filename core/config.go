package core

import "time"

// FeedbackConfig controls how prior iterations are sampled into the feedback
// block of a refinement prompt.
type FeedbackConfig struct {
	// SelectionProbability is the independent inclusion probability applied
	// to each prior iteration. 0 disables feedback entirely.
	SelectionProbability float64 `json:"selection_probability" yaml:"selection_probability"`
	// MaxSolutions caps how many prior iterations a single prompt may carry.
	MaxSolutions int `json:"max_solutions" yaml:"max_solutions"`
	// ImprovingOrder orders the sampled iterations by ascending score so the
	// oracle sees a worst-to-best progression; otherwise recency order is kept.
	ImprovingOrder bool `json:"improving_order" yaml:"improving_order"`
}

// VotingOptions are the aggregation-time flags carried alongside an agent
// configuration. They never influence the agent's own loop.
type VotingOptions struct {
	// CountFailedMatches lets failing attempts that reproduced a bucket's
	// exact output count as votes for that bucket.
	CountFailedMatches bool `json:"count_failed_matches" yaml:"count_failed_matches"`
	// IterationTiebreak breaks passer-bucket vote ties by the representative's
	// iteration index.
	IterationTiebreak bool `json:"iteration_tiebreak" yaml:"iteration_tiebreak"`
	// LowToHighIterations makes the iteration tiebreak prefer earlier
	// iterations; otherwise later ones win.
	LowToHighIterations bool `json:"low_to_high_iterations" yaml:"low_to_high_iterations"`
}

// AgentConfig is the immutable parameter set for one agent. It is supplied
// once at scheduling time and never mutated afterwards; the scheduler fills
// Seed before launch.
type AgentConfig struct {
	ID   string `json:"id" yaml:"id"`
	Seed uint64 `json:"seed" yaml:"seed"`

	// Prompt identifies the base prompt template for iteration 0.
	Prompt      string  `json:"prompt" yaml:"prompt"`
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// CallTimeout bounds a single oracle request; ExecTimeout bounds a single
	// sandbox execution.
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`
	ExecTimeout time.Duration `json:"exec_timeout" yaml:"exec_timeout"`

	// Retries is the number of additional oracle attempts after a timed-out
	// call before the call counts as one exhausted timeout.
	Retries int `json:"retries" yaml:"retries"`
	// MaxIterations bounds the number of refinement attempts.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// MaxTotalTimeouts bounds the cumulative exhausted-timeout count; reaching
	// it terminates the agent.
	MaxTotalTimeouts int `json:"max_total_timeouts" yaml:"max_total_timeouts"`
	// MaxTotalTime bounds the agent's own wall clock, measured from its first
	// iteration. 0 means unlimited.
	MaxTotalTime time.Duration `json:"max_total_time" yaml:"max_total_time"`

	Feedback FeedbackConfig `json:"feedback" yaml:"feedback"`

	// ReturnBestResult selects the best-scoring iteration as the
	// representative on non-success termination instead of the last one.
	ReturnBestResult bool `json:"return_best_result" yaml:"return_best_result"`

	Voting VotingOptions `json:"voting" yaml:"voting"`
}
