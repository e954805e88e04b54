package core

import (
	"strconv"
	"strings"
)

// Grid is a rectangular matrix of small non-negative integers (cell colors).
// A nil Grid means "no output produced" and encodes differently from the
// empty grid.
type Grid [][]int

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the number of columns of the first row, or 0 for an empty grid.
// Grids are expected to be rectangular; ragged rows are tolerated but compare
// cell by cell.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}

// Equal reports whether two grids have identical shape and cells.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i, row := range g {
		if len(row) != len(other[i]) {
			return false
		}
		for j, v := range row {
			if v != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Encode renders the grid as a compact deterministic string: cells joined by
// commas, rows joined by semicolons. A nil grid encodes as "<none>" so an
// absent output never collides with a produced one.
func (g Grid) Encode() string {
	if g == nil {
		return "<none>"
	}
	var sb strings.Builder
	for i, row := range g {
		if i > 0 {
			sb.WriteByte(';')
		}
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(v))
		}
	}
	return sb.String()
}

// String renders the grid with one row per line and space-separated cells,
// the form used inside prompts.
func (g Grid) String() string {
	if g == nil {
		return ""
	}
	var sb strings.Builder
	for i, row := range g {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(v))
		}
	}
	return sb.String()
}
