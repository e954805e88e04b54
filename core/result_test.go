package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridEqualAndEncode(t *testing.T) {
	a := Grid{{1, 2}, {3, 4}}
	b := Grid{{1, 2}, {3, 4}}
	c := Grid{{1, 2}, {3, 5}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Grid{{1, 2}}))

	assert.Equal(t, "1,2;3,4", a.Encode())
	assert.Equal(t, "<none>", Grid(nil).Encode())
	assert.NotEqual(t, Grid{}.Encode(), Grid(nil).Encode())
}

func TestGridClone(t *testing.T) {
	a := Grid{{1, 2}, {3, 4}}
	b := a.Clone()
	b[0][0] = 9
	assert.Equal(t, 1, a[0][0])
}

func TestOutputKeySharedAcrossTrainOutcomes(t *testing.T) {
	out := Grid{{5, 5}, {5, 5}}
	passing := IterationRecord{
		Success: true,
		Test:    []RunResult{{Output: out}},
	}
	failing := IterationRecord{
		Success: false,
		Test:    []RunResult{{Output: out.Clone()}},
	}
	other := IterationRecord{
		Test: []RunResult{{Output: Grid{{5, 5}, {5, 4}}}},
	}

	assert.Equal(t, passing.OutputKey(), failing.OutputKey())
	assert.NotEqual(t, passing.OutputKey(), other.OutputKey())
}

func TestOutputKeyDistinguishesMissingOutput(t *testing.T) {
	produced := IterationRecord{Test: []RunResult{{Output: Grid{}}}}
	missing := IterationRecord{Test: []RunResult{{Output: nil}}}
	assert.NotEqual(t, produced.OutputKey(), missing.OutputKey())
}

func TestRepresentativePrefersSuccess(t *testing.T) {
	res := AgentResult{
		AgentID: "a",
		Iterations: []IterationRecord{
			{Index: 0, Score: 0.9},
			{Index: 1, Success: true, Score: 1},
		},
		Status:    StatusSuccess,
		BestIndex: 1,
	}
	rec, ok := res.Representative()
	assert.True(t, ok)
	assert.Equal(t, 1, rec.Index)
}

func TestRepresentativeUsesBestIndexThenLast(t *testing.T) {
	withBest := AgentResult{
		Iterations: []IterationRecord{{Index: 0, Score: 0.8}, {Index: 1, Score: 0.2}},
		Status:     StatusExhaustedIterations,
		BestIndex:  0,
	}
	rec, ok := withBest.Representative()
	assert.True(t, ok)
	assert.Equal(t, 0, rec.Index)

	withoutBest := withBest
	withoutBest.BestIndex = -1
	rec, ok = withoutBest.Representative()
	assert.True(t, ok)
	assert.Equal(t, 1, rec.Index)
}

func TestRepresentativeEmptyHistory(t *testing.T) {
	res := AgentResult{Status: StatusFatalError, BestIndex: -1}
	_, ok := res.Representative()
	assert.False(t, ok)
}
