// Package sandbox defines the isolated-execution collaborator boundary.
//
// An Executor runs a candidate program against one input grid and reports
// the outcome as a core.RunResult. Executors never return an error: crashes,
// timeouts and unparseable output all land in the result's ErrorKind and
// Detail fields so the refinement loop can record them and move on. The
// Execute contract fills Output, Raw, ErrorKind and Detail; Success and
// Score are assigned later during evaluation against the expected output.
package sandbox

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/solvegrid/solvegrid/core"
)

// Executor runs one candidate program against one input under a timeout.
type Executor interface {
	Execute(ctx context.Context, code string, input core.Grid, timeout time.Duration) core.RunResult
}

// Bounded wraps exec so at most n executions run concurrently. Use n=1 for
// executors that are not safely reentrant; callers acquire in arrival order
// with no ordering guarantee across agents.
func Bounded(exec Executor, n int64) Executor {
	return &bounded{exec: exec, sem: semaphore.NewWeighted(n)}
}

// Serialized wraps exec so executions never overlap.
func Serialized(exec Executor) Executor {
	return Bounded(exec, 1)
}

type bounded struct {
	exec Executor
	sem  *semaphore.Weighted
}

func (b *bounded) Execute(ctx context.Context, code string, input core.Grid, timeout time.Duration) core.RunResult {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return core.RunResult{
			ErrorKind: core.ErrorKindExecution,
			Detail:    fmt.Sprintf("sandbox slot acquisition: %v", err),
		}
	}
	defer b.sem.Release(1)
	return b.exec.Execute(ctx, code, input, timeout)
}

// ParseGrid parses program stdout into a grid: one row per line, cells
// separated by spaces or commas. Blank lines are skipped. Returns nil and
// false when nothing parseable is present.
func ParseGrid(raw string) (core.Grid, bool) {
	var grid core.Grid
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
		row := make([]int, 0, len(fields))
		ok := true
		for _, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				ok = false
				break
			}
			row = append(row, v)
		}
		if !ok || len(row) == 0 {
			// A non-numeric line invalidates the whole parse; programs are
			// expected to print the grid and nothing else.
			return nil, false
		}
		grid = append(grid, row)
	}
	if len(grid) == 0 {
		return nil, false
	}
	return grid, true
}

// TransformFunc is the behavior of a MockExecutor: it receives the candidate
// code and the input grid and returns the produced grid or an error.
type TransformFunc func(code string, input core.Grid) (core.Grid, error)

// MockExecutor is a lightweight in-memory Executor useful for tests &
// examples. Safe for concurrent use.
type MockExecutor struct {
	mu    sync.Mutex
	fn    TransformFunc
	delay time.Duration
	calls int
}

// NewMockExecutor constructs a MockExecutor around fn. A nil fn echoes the
// input back unchanged.
func NewMockExecutor(fn TransformFunc) *MockExecutor {
	if fn == nil {
		fn = func(_ string, input core.Grid) (core.Grid, error) { return input.Clone(), nil }
	}
	return &MockExecutor{fn: fn}
}

// SetDelay makes every execution sleep first, for exercising timeouts.
func (m *MockExecutor) SetDelay(d time.Duration) { m.mu.Lock(); m.delay = d; m.mu.Unlock() }

// Calls returns how many times Execute has been invoked.
func (m *MockExecutor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Execute implements Executor.
func (m *MockExecutor) Execute(ctx context.Context, code string, input core.Grid, timeout time.Duration) core.RunResult {
	m.mu.Lock()
	m.calls++
	fn := m.fn
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		deadline := delay
		if timeout > 0 && timeout < deadline {
			deadline = timeout
		}
		select {
		case <-ctx.Done():
			return core.RunResult{ErrorKind: core.ErrorKindExecution, Detail: ctx.Err().Error()}
		case <-time.After(deadline):
		}
		if timeout > 0 && delay >= timeout {
			return core.RunResult{ErrorKind: core.ErrorKindExecution, Detail: "execution timed out"}
		}
	}

	out, err := fn(code, input)
	if err != nil {
		return core.RunResult{ErrorKind: core.ErrorKindExecution, Detail: err.Error()}
	}
	return core.RunResult{Output: out, Raw: out.String()}
}
