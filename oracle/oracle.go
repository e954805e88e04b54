package oracle

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Kind classifies oracle failures.
type Kind string

const (
	// KindTimeout means the call exceeded its deadline. Timeouts are locally
	// retryable and count against an agent's cumulative timeout budget.
	KindTimeout Kind = "timeout"
	// KindTransport covers every other provider or network failure.
	KindTransport Kind = "transport"
)

// Error is the typed failure returned by oracle implementations.
type Error struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("oracle %s error", e.Kind)
	}
	return fmt.Sprintf("oracle %s error: %v", e.Kind, e.Err)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// IsTimeout reports whether err is an oracle timeout.
func IsTimeout(err error) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Kind == KindTimeout
}

// Classify wraps a raw provider error as an *Error, mapping context deadline
// expiry to KindTimeout and everything else to KindTransport.
func Classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindTransport, Err: err}
}

// Request captures the normalized oracle input produced by an agent.
type Request struct {
	Prompt string `json:"prompt"`
	// Temperature is the sampling temperature from the agent's configuration.
	Temperature float64 `json:"temperature"`
}

// Info contains metadata about an oracle implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Oracle is the minimal interface required by agents to obtain candidate
// programs. Complete must honor ctx cancellation and deadline; failures are
// reported as *Error.
type Oracle interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Info returns information about the oracle implementation.
	Info() Info
}

// MockOracle is a lightweight in-memory Oracle useful for tests & examples.
// Responses are consumed in call order; a scripted error entry takes the
// place of a response for that call. Safe for concurrent use.
type MockOracle struct {
	mu        sync.Mutex
	info      Info
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

// NewMockOracle constructs a MockOracle.
func NewMockOracle() *MockOracle {
	return &MockOracle{info: Info{Name: "mock", Provider: "mock"}}
}

// AddResponse appends a canned completion returned by a future call.
func (m *MockOracle) AddResponse(text string) *MockOracle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, text)
	m.errs = append(m.errs, nil)
	return m
}

// AddError appends a scripted failure returned by a future call.
func (m *MockOracle) AddError(err error) *MockOracle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, "")
	m.errs = append(m.errs, err)
	return m
}

// Calls returns how many times Complete has been invoked.
func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of every prompt seen so far, in call order.
func (m *MockOracle) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Complete implements Oracle. Once the script is exhausted the last entry
// repeats, so "always times out" scenarios need only one scripted error.
func (m *MockOracle) Complete(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", Classify(ctx, ctx.Err())
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.calls
	m.calls++
	m.prompts = append(m.prompts, req.Prompt)

	if len(m.responses) == 0 {
		return "", &Error{Kind: KindTransport, Err: fmt.Errorf("mock oracle has no scripted responses")}
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	if err := m.errs[idx]; err != nil {
		return "", err
	}
	return m.responses[idx], nil
}

// Info implements Oracle.
func (m *MockOracle) Info() Info { return m.info }
