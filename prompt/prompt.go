// Package prompt assembles oracle prompts as a pure function of the agent
// configuration, the task and the iteration history. No hidden state: the
// same inputs and RNG state always yield the same prompt text.
package prompt

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/solvegrid/solvegrid/core"
	"github.com/solvegrid/solvegrid/internal/util"
)

// DefaultBase is the iteration-0 prompt template. {{.Problem}} is replaced
// with the rendered train pairs and test inputs.
const DefaultBase = `You are given a visual reasoning puzzle. Each training example maps an input grid of digits to an output grid by one hidden transformation rule.

{{.Problem}}

Write a Python function transform(grid) that implements the rule. grid is a list of lists of ints; return the output as a list of lists of ints. Reply with a single fenced python code block and nothing else.`

const feedbackHeader = `

Earlier attempts and how they scored on the training examples (1.0 means solved):`

// Builder renders prompts. The zero value is not usable; construct with New.
type Builder struct {
	base string
}

// Options configure a Builder.
type Options struct {
	// Base overrides the iteration-0 template.
	Base string
}

// New constructs a Builder.
func New(optFns ...func(o *Options)) *Builder {
	opts := Options{Base: DefaultBase}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{base: opts.Base}
}

// Build renders the prompt for the next iteration. Iteration 0 is the bare
// base prompt (cfg.Prompt when set, the builder's template otherwise); later
// iterations append a feedback block sampled from prior records according to
// cfg.Feedback. rng is the agent's own stream, so sampling never touches
// shared state.
func (b *Builder) Build(cfg core.AgentConfig, task core.Task, history []core.IterationRecord, rng *rand.Rand) (string, error) {
	tmpl := b.base
	if cfg.Prompt != "" {
		tmpl = cfg.Prompt
	}
	base, err := util.RenderTemplate(tmpl, map[string]any{"Problem": RenderTask(task)})
	if err != nil {
		return "", fmt.Errorf("rendering base prompt: %w", err)
	}
	if len(history) == 0 {
		return base, nil
	}

	sampled := sampleFeedback(cfg.Feedback, history, rng)
	if len(sampled) == 0 {
		return base, nil
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString(feedbackHeader)
	for _, rec := range sampled {
		fmt.Fprintf(&sb, "\n\nAttempt (train score %.2f):\n```python\n%s\n```", rec.Score, strings.TrimSpace(rec.Code))
		for i, tr := range rec.Train {
			if tr.Success {
				continue
			}
			fmt.Fprintf(&sb, "\nTraining example %d: expected\n%s\ngot\n%s", i+1, task.Train[i].Output, renderOutput(tr))
		}
	}
	sb.WriteString("\n\nWrite an improved transform. Reply with a single fenced python code block and nothing else.")
	return sb.String(), nil
}

// sampleFeedback draws prior records independently with the configured
// probability, keeps at most MaxSolutions of the most recently drawn ones,
// then orders the survivors: ascending score when ImprovingOrder is set,
// most recent first otherwise.
func sampleFeedback(cfg core.FeedbackConfig, history []core.IterationRecord, rng *rand.Rand) []core.IterationRecord {
	if cfg.SelectionProbability <= 0 || cfg.MaxSolutions == 0 {
		return nil
	}

	var sampled []core.IterationRecord
	for _, rec := range history {
		if rng.Float64() < cfg.SelectionProbability {
			sampled = append(sampled, rec)
		}
	}
	if cfg.MaxSolutions > 0 && len(sampled) > cfg.MaxSolutions {
		sampled = sampled[len(sampled)-cfg.MaxSolutions:]
	}

	if cfg.ImprovingOrder {
		sort.SliceStable(sampled, func(i, j int) bool { return sampled[i].Score < sampled[j].Score })
	} else {
		for i, j := 0, len(sampled)-1; i < j; i, j = i+1, j-1 {
			sampled[i], sampled[j] = sampled[j], sampled[i]
		}
	}
	return sampled
}

// RenderTask renders the train pairs and test inputs in the textual form fed
// to the oracle.
func RenderTask(task core.Task) string {
	var sb strings.Builder
	for i, pair := range task.Train {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Training example %d\nInput:\n%s\nOutput:\n%s", i+1, pair.Input, pair.Output)
	}
	for i, tc := range task.Test {
		fmt.Fprintf(&sb, "\n\nTest input %d:\n%s", i+1, tc.Input)
	}
	return sb.String()
}

func renderOutput(r core.RunResult) string {
	if r.Output != nil {
		return r.Output.String()
	}
	if r.Detail != "" {
		return "(failed: " + r.Detail + ")"
	}
	return "(no output)"
}
