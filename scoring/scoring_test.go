package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solvegrid/solvegrid/core"
)

func TestCellSimilarityIdentical(t *testing.T) {
	g := core.Grid{{1, 2}, {3, 4}}
	assert.Equal(t, 1.0, CellSimilarity{}.Score(g, g.Clone()))
}

func TestCellSimilarityPartial(t *testing.T) {
	predicted := core.Grid{{1, 2}, {3, 0}}
	expected := core.Grid{{1, 2}, {3, 4}}
	assert.InDelta(t, 0.75, CellSimilarity{}.Score(predicted, expected), 1e-9)
}

func TestCellSimilarityShapeMismatchDegrades(t *testing.T) {
	predicted := core.Grid{{1, 2}}
	expected := core.Grid{{1, 2}, {3, 4}}
	score := CellSimilarity{}.Score(predicted, expected)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}

func TestCellSimilarityNilPredicted(t *testing.T) {
	assert.Equal(t, 0.0, CellSimilarity{}.Score(nil, core.Grid{{1}}))
}

func TestCellSimilarityDeterministic(t *testing.T) {
	predicted := core.Grid{{0, 1, 2}, {3, 4, 5}}
	expected := core.Grid{{0, 1, 0}, {3, 0, 5}}
	first := CellSimilarity{}.Score(predicted, expected)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CellSimilarity{}.Score(predicted, expected))
	}
}

func TestExact(t *testing.T) {
	g := core.Grid{{7}}
	assert.Equal(t, 1.0, Exact{}.Score(g, core.Grid{{7}}))
	assert.Equal(t, 0.0, Exact{}.Score(g, core.Grid{{8}}))
	assert.Equal(t, 0.0, Exact{}.Score(nil, core.Grid{{8}}))
}
