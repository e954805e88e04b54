package core

// Pair is one worked example: an input grid and the output it should map to.
type Pair struct {
	Input  Grid `json:"input"`
	Output Grid `json:"output"`
}

// TestCase is one held-out input. Expected is optional and only used for
// offline evaluation; the pipeline never feeds it to agents.
type TestCase struct {
	Input    Grid `json:"input"`
	Expected Grid `json:"expected,omitempty"`
}

// Task bundles the ordered train pairs and ordered test cases of one puzzle.
type Task struct {
	ID    string     `json:"id,omitempty"`
	Train []Pair     `json:"train"`
	Test  []TestCase `json:"test"`
}
