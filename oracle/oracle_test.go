package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, Classify(context.Background(), nil))
}

func TestClassifyDeadlineIsTimeout(t *testing.T) {
	err := Classify(context.Background(), context.DeadlineExceeded)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestClassifyExpiredContextIsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	err := Classify(ctx, errors.New("request aborted"))
	assert.True(t, IsTimeout(err))
}

func TestClassifyOtherIsTransport(t *testing.T) {
	err := Classify(context.Background(), errors.New("connection refused"))
	require.Error(t, err)
	assert.False(t, IsTimeout(err))

	var oe *Error
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, KindTransport, oe.Kind)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Kind: KindTransport, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "transport")
}

func TestMockOracleScriptOrder(t *testing.T) {
	m := NewMockOracle().
		AddResponse("first").
		AddError(&Error{Kind: KindTransport, Err: errors.New("flaky")}).
		AddResponse("third")

	out, err := m.Complete(context.Background(), Request{Prompt: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	_, err = m.Complete(context.Background(), Request{Prompt: "p2"})
	assert.Error(t, err)

	out, err = m.Complete(context.Background(), Request{Prompt: "p3"})
	require.NoError(t, err)
	assert.Equal(t, "third", out)

	assert.Equal(t, 3, m.Calls())
	assert.Equal(t, []string{"p1", "p2", "p3"}, m.Prompts())
}

func TestMockOracleLastEntryRepeats(t *testing.T) {
	m := NewMockOracle().AddResponse("only")
	for i := 0; i < 3; i++ {
		out, err := m.Complete(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "only", out)
	}
}

func TestMockOracleEmptyScript(t *testing.T) {
	_, err := NewMockOracle().Complete(context.Background(), Request{})
	assert.Error(t, err)
}

func TestMockOracleHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMockOracle().AddResponse("unused")
	_, err := m.Complete(ctx, Request{})
	assert.Error(t, err)
	assert.Equal(t, 0, m.Calls())
}
