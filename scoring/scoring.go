// Package scoring defines the similarity collaborator used to grade a
// predicted grid against an expected one.
package scoring

import "github.com/solvegrid/solvegrid/core"

// Scorer computes a deterministic similarity in [0,1]. The argument order
// matters: predicted first, expected second.
type Scorer interface {
	Score(predicted, expected core.Grid) float64
}

// CellSimilarity scores the fraction of cells that match over the larger
// bounding shape, so shape mismatches degrade the score proportionally
// instead of zeroing it. Identical grids score exactly 1.
type CellSimilarity struct{}

// Score implements Scorer.
func (CellSimilarity) Score(predicted, expected core.Grid) float64 {
	if predicted == nil {
		return 0
	}

	rows := max(predicted.Rows(), expected.Rows())
	cols := 0
	for _, g := range []core.Grid{predicted, expected} {
		for _, row := range g {
			if len(row) > cols {
				cols = len(row)
			}
		}
	}
	if rows == 0 || cols == 0 {
		return 0
	}

	matches := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			pv, pok := cellAt(predicted, i, j)
			ev, eok := cellAt(expected, i, j)
			if pok && eok && pv == ev {
				matches++
			}
		}
	}
	return float64(matches) / float64(rows*cols)
}

func cellAt(g core.Grid, i, j int) (int, bool) {
	if i >= len(g) || j >= len(g[i]) {
		return 0, false
	}
	return g[i][j], true
}

// Exact scores 1 for an identical grid and 0 otherwise.
type Exact struct{}

// Score implements Scorer.
func (Exact) Score(predicted, expected core.Grid) float64 {
	if predicted == nil {
		return 0
	}
	if predicted.Equal(expected) {
		return 1
	}
	return 0
}
