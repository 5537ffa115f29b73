package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/cel-go/cel"

	"switchboard/internal/tool"
)

// Calculator evaluates arithmetic expressions in a CEL environment with no
// declared variables, so only literals and operators are reachable.
func Calculator() tool.Tool {
	return tool.Tool{
		Name: "calculator",
		Description: "Evaluate an arithmetic expression. " +
			"Supports +, -, *, /, %, parentheses and comparison operators. " +
			"Example: {\"expression\": \"(10 * 5) / 2\"}",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"expression": {
					"type": "string",
					"description": "The expression to evaluate"
				}
			},
			"required": ["expression"],
			"additionalProperties": false
		}`),
		Timeout: 5 * time.Second,
		Handler: evalExpression,
	}
}

func evalExpression(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("parsing calculator input: %w", err)
	}

	env, err := cel.NewEnv()
	if err != nil {
		return "", fmt.Errorf("creating evaluation environment: %w", err)
	}

	ast, iss := env.Compile(in.Expression)
	if iss.Err() != nil {
		return "", fmt.Errorf("invalid expression: %w", iss.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return "", fmt.Errorf("building program: %w", err)
	}

	out, _, err := prg.ContextEval(ctx, cel.NoVars())
	if err != nil {
		return "", fmt.Errorf("evaluating expression: %w", err)
	}
	return formatValue(out.Value()), nil
}

func formatValue(v any) string {
	switch n := v.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	case string:
		return n
	default:
		return fmt.Sprintf("%v", v)
	}
}
