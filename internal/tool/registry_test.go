package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool() Tool {
	return Tool{
		Name:        "echo",
		Description: "repeat the input",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {"text": {"type": "string"}},
			"required": ["text"],
			"additionalProperties": false
		}`),
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			var in struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return "", err
			}
			return in.Text, nil
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	assert.Error(t, reg.Register(echoTool()), "duplicate names are rejected")
	assert.Error(t, reg.Register(Tool{}), "empty names are rejected")
	assert.Error(t, reg.Register(Tool{
		Name:        "broken",
		InputSchema: json.RawMessage(`{"type": 17}`),
	}), "invalid schemas are rejected")
}

func TestRegistry_InvokeSuccess(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	res := reg.Invoke(context.Background(), "echo", json.RawMessage(`{"text": "hello"}`))
	require.True(t, res.OK())
	assert.Equal(t, "hello", res.Content)
	assert.Equal(t, "hello", res.Text())
}

func TestRegistry_InvokeUnknownTool(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	res := reg.Invoke(context.Background(), "nope", nil)
	require.False(t, res.OK())
	assert.Equal(t, FailUnknownTool, res.Failure.Kind)
	assert.Contains(t, res.Failure.Message, "echo", "the failure lists the available tools")
}

func TestRegistry_InvokeValidationFailure(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	res := reg.Invoke(context.Background(), "echo", json.RawMessage(`{"text": 42}`))
	require.False(t, res.OK())
	assert.Equal(t, FailValidation, res.Failure.Kind)

	res = reg.Invoke(context.Background(), "echo", json.RawMessage(`{"text": "x", "extra": true}`))
	require.False(t, res.OK())
	assert.Equal(t, FailValidation, res.Failure.Kind)
}

func TestRegistry_InvokeEmptyArgs(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Tool{
		Name: "noargs",
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			return string(args), nil
		},
	}))

	res := reg.Invoke(context.Background(), "noargs", nil)
	require.True(t, res.OK())
	assert.Equal(t, "{}", res.Content)
}

func TestRegistry_InvokeTimeout(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Tool{
		Name:    "sleepy",
		Timeout: 20 * time.Millisecond,
		Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}))

	res := reg.Invoke(context.Background(), "sleepy", nil)
	require.False(t, res.OK())
	assert.Equal(t, FailTimeout, res.Failure.Kind)
}

func TestRegistry_InvokeHandlerError(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Tool{
		Name: "failing",
		Handler: func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("boom")
		},
	}))

	res := reg.Invoke(context.Background(), "failing", nil)
	require.False(t, res.OK())
	assert.Equal(t, FailExecution, res.Failure.Kind)
	assert.Equal(t, "error (execution): boom", res.Text())
}

func TestRegistry_InvokePanicRecovered(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Tool{
		Name: "panicky",
		Handler: func(context.Context, json.RawMessage) (string, error) {
			panic("unexpected")
		},
	}))

	res := reg.Invoke(context.Background(), "panicky", nil)
	require.False(t, res.OK())
	assert.Equal(t, FailExecution, res.Failure.Kind)
	assert.Contains(t, res.Failure.Message, "panicked")
}

func TestRegistry_Scope(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))
	require.NoError(t, reg.Register(Tool{
		Name: "other",
		Handler: func(context.Context, json.RawMessage) (string, error) {
			return "", nil
		},
	}))

	scoped := reg.Scope([]string{"echo", "missing"})
	assert.Equal(t, []string{"echo"}, scoped.Names())

	res := scoped.Invoke(context.Background(), "other", nil)
	require.False(t, res.OK())
	assert.Equal(t, FailUnknownTool, res.Failure.Kind)

	assert.Same(t, reg, reg.Scope(nil), "empty scope is the full registry")
}
