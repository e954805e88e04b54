// Package task loads puzzle files in the ARC JSON format: a "train" array
// of {input, output} grid pairs and a "test" array of {input[, output]}.
package task

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/solvegrid/solvegrid/core"
)

// Load reads and parses one task file. The task id is the file name without
// its extension.
func Load(path string) (core.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Task{}, fmt.Errorf("reading task file: %w", err)
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(data, id)
}

// Parse decodes task JSON. Expected outputs on test cases are optional and
// only used for offline evaluation.
func Parse(data []byte, id string) (core.Task, error) {
	if !gjson.ValidBytes(data) {
		return core.Task{}, fmt.Errorf("task %s: invalid JSON", id)
	}
	root := gjson.ParseBytes(data)

	t := core.Task{ID: id}

	train := root.Get("train")
	if !train.IsArray() {
		return core.Task{}, fmt.Errorf("task %s: missing train array", id)
	}
	for i, item := range train.Array() {
		input, err := parseGrid(item.Get("input"))
		if err != nil {
			return core.Task{}, fmt.Errorf("task %s: train[%d].input: %w", id, i, err)
		}
		output, err := parseGrid(item.Get("output"))
		if err != nil {
			return core.Task{}, fmt.Errorf("task %s: train[%d].output: %w", id, i, err)
		}
		t.Train = append(t.Train, core.Pair{Input: input, Output: output})
	}

	test := root.Get("test")
	if !test.IsArray() {
		return core.Task{}, fmt.Errorf("task %s: missing test array", id)
	}
	for i, item := range test.Array() {
		input, err := parseGrid(item.Get("input"))
		if err != nil {
			return core.Task{}, fmt.Errorf("task %s: test[%d].input: %w", id, i, err)
		}
		tc := core.TestCase{Input: input}
		if out := item.Get("output"); out.Exists() {
			expected, err := parseGrid(out)
			if err != nil {
				return core.Task{}, fmt.Errorf("task %s: test[%d].output: %w", id, i, err)
			}
			tc.Expected = expected
		}
		t.Test = append(t.Test, tc)
	}

	if len(t.Train) == 0 || len(t.Test) == 0 {
		return core.Task{}, fmt.Errorf("task %s: needs at least one train pair and one test input", id)
	}
	return t, nil
}

func parseGrid(v gjson.Result) (core.Grid, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("expected a grid array")
	}
	var grid core.Grid
	for _, rowVal := range v.Array() {
		if !rowVal.IsArray() {
			return nil, fmt.Errorf("expected a row array")
		}
		var row []int
		for _, cell := range rowVal.Array() {
			if cell.Type != gjson.Number {
				return nil, fmt.Errorf("expected a numeric cell, got %s", cell.Type)
			}
			row = append(row, int(cell.Int()))
		}
		grid = append(grid, row)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("grid is empty")
	}
	return grid, nil
}
