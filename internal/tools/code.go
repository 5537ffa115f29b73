package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dop251/goja"

	"switchboard/internal/tool"
)

// CodeExec returns a sandboxed JavaScript execution tool. Each invocation
// gets a fresh goja runtime with only console.log bound; there is no module
// loader, filesystem or network access inside the VM. The runtime is
// interrupted when the invocation context ends.
func CodeExec(timeout time.Duration) tool.Tool {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return tool.Tool{
		Name: "code_exec",
		Description: "Execute JavaScript code in a sandbox and return its output. " +
			"Use console.log to print; the value of the final expression is " +
			"returned when nothing is printed. " +
			"Example: {\"code\": \"let s = 0; for (let i = 1; i <= 10; i++) s += i; console.log(s)\"}",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {
					"type": "string",
					"description": "JavaScript source to run"
				}
			},
			"required": ["code"],
			"additionalProperties": false
		}`),
		Timeout: timeout,
		Handler: runCode,
	}
}

func runCode(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("parsing code input: %w", err)
	}

	vm := goja.New()
	var out strings.Builder

	console := vm.NewObject()
	if err := console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		out.WriteString(strings.Join(parts, " "))
		out.WriteString("\n")
		return goja.Undefined()
	}); err != nil {
		return "", err
	}
	if err := vm.Set("console", console); err != nil {
		return "", err
	}

	// Interrupt the VM when the invocation context ends, so runaway
	// scripts cannot outlive their budget.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt("execution interrupted")
		case <-done:
		}
	}()

	slog.Debug("code_exec: running", "bytes", len(in.Code))
	value, err := vm.RunString(in.Code)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return "", errors.New("execution interrupted")
		}
		return "", fmt.Errorf("running code: %w", err)
	}

	result := out.String()
	if result == "" && value != nil && !goja.IsUndefined(value) && !goja.IsNull(value) {
		result = value.String()
	}
	if result == "" {
		result = "code executed successfully (no output)"
	}
	return truncate([]byte(result)), nil
}
