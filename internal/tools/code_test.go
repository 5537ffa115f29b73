package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeArgs(t *testing.T, code string) json.RawMessage {
	t.Helper()
	args, err := json.Marshal(map[string]string{"code": code})
	require.NoError(t, err)
	return args
}

func TestCodeExec_ConsoleOutput(t *testing.T) {
	ce := CodeExec(0)
	got, err := ce.Handler(context.Background(),
		codeArgs(t, "let s = 0; for (let i = 1; i <= 10; i++) s += i; console.log(s)"))
	require.NoError(t, err)
	assert.Equal(t, "55\n", got)
}

func TestCodeExec_FinalExpressionValue(t *testing.T) {
	ce := CodeExec(0)
	got, err := ce.Handler(context.Background(), codeArgs(t, "6 * 7"))
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestCodeExec_NoOutput(t *testing.T) {
	ce := CodeExec(0)
	got, err := ce.Handler(context.Background(), codeArgs(t, "let x = 1;"))
	require.NoError(t, err)
	assert.Equal(t, "code executed successfully (no output)", got)
}

func TestCodeExec_SyntaxError(t *testing.T) {
	ce := CodeExec(0)
	_, err := ce.Handler(context.Background(), codeArgs(t, "let ="))
	require.Error(t, err)
}

func TestCodeExec_InterruptedOnContextEnd(t *testing.T) {
	ce := CodeExec(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := ce.Handler(ctx, codeArgs(t, "while (true) {}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interrupted")
}

func TestCodeExec_NoHostAccess(t *testing.T) {
	ce := CodeExec(0)
	for _, code := range []string{"require('fs')", "fetch('http://example.com')", "process.exit(1)"} {
		_, err := ce.Handler(context.Background(), codeArgs(t, code))
		assert.Error(t, err, code)
	}
}
