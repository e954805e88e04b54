package testutil

import "github.com/solvegrid/solvegrid/core"

// RecordBuilder provides a fluent helper for constructing iteration records
// in tests. Example:
//
//	rec := NewRecordBuilder().Index(2).Score(0.5).TestOutput(grid).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type RecordBuilder struct {
	rec core.IterationRecord
}

// NewRecordBuilder creates a builder for a failing, zero-score record.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{rec: core.IterationRecord{Code: "def transform(grid):\n    return grid"}}
}

// Index sets the iteration index (chainable).
func (b *RecordBuilder) Index(i int) *RecordBuilder { b.rec.Index = i; return b }

// Code sets the candidate program text (chainable).
func (b *RecordBuilder) Code(code string) *RecordBuilder { b.rec.Code = code; return b }

// Score sets the aggregate train score (chainable).
func (b *RecordBuilder) Score(s float64) *RecordBuilder { b.rec.Score = s; return b }

// Passed marks the record as an all-train success with score 1 (chainable).
func (b *RecordBuilder) Passed() *RecordBuilder {
	b.rec.Success = true
	b.rec.Score = 1
	return b
}

// ErrorKind sets the record's error kind (chainable).
func (b *RecordBuilder) ErrorKind(k core.ErrorKind) *RecordBuilder { b.rec.ErrorKind = k; return b }

// TestOutput appends one predicted test output (chainable).
func (b *RecordBuilder) TestOutput(g core.Grid) *RecordBuilder {
	b.rec.Test = append(b.rec.Test, core.RunResult{Output: g, Raw: g.String()})
	return b
}

// TrainResult appends one train run result (chainable).
func (b *RecordBuilder) TrainResult(rr core.RunResult) *RecordBuilder {
	b.rec.Train = append(b.rec.Train, rr)
	return b
}

// Build returns the constructed record.
func (b *RecordBuilder) Build() core.IterationRecord { return b.rec }

// ResultBuilder constructs terminal agent results in tests.
type ResultBuilder struct {
	res core.AgentResult
}

// NewResultBuilder creates a builder with the given agent id, no iterations
// and status exhausted_iterations.
func NewResultBuilder(agentID string) *ResultBuilder {
	return &ResultBuilder{res: core.AgentResult{
		AgentID:   agentID,
		Status:    core.StatusExhaustedIterations,
		BestIndex: -1,
	}}
}

// Status sets the terminal status (chainable).
func (b *ResultBuilder) Status(s core.Status) *ResultBuilder { b.res.Status = s; return b }

// BestIndex sets the selected iteration index (chainable).
func (b *ResultBuilder) BestIndex(i int) *ResultBuilder { b.res.BestIndex = i; return b }

// Record appends an iteration record, fixing up its index to stay contiguous
// (chainable).
func (b *ResultBuilder) Record(rec core.IterationRecord) *ResultBuilder {
	rec.Index = len(b.res.Iterations)
	if rec.Success {
		b.res.Status = core.StatusSuccess
		b.res.BestIndex = rec.Index
	}
	b.res.Iterations = append(b.res.Iterations, rec)
	return b
}

// Build returns the constructed result.
func (b *ResultBuilder) Build() core.AgentResult { return b.res }

// SimpleGrid returns a small distinct grid keyed by n, handy for giving
// buckets distinct canonical keys.
func SimpleGrid(n int) core.Grid {
	return core.Grid{{n, n}, {n, 0}}
}
