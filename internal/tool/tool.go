package tool

import (
	"context"
	"encoding/json"
	"time"
)

// Handler executes a tool against already-validated JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool declares one capability: its name, the JSON schema its arguments
// must satisfy, the handler that performs it and the timeout the handler
// runs under.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Timeout     time.Duration
	Handler     Handler
}

// FailureKind classifies recoverable invocation failures. All of them are
// fed back into the run transcript as observations, never raised.
type FailureKind string

const (
	FailValidation  FailureKind = "validation"
	FailUnknownTool FailureKind = "unknown_tool"
	FailTimeout     FailureKind = "timeout"
	FailExecution   FailureKind = "execution"
)

// Failure describes why an invocation produced no payload.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Result carries either a success payload or a failure, never both.
type Result struct {
	Content string
	Failure *Failure
}

func (r Result) OK() bool { return r.Failure == nil }

// Text renders the result the way it is fed back into the transcript.
func (r Result) Text() string {
	if r.Failure != nil {
		return "error (" + string(r.Failure.Kind) + "): " + r.Failure.Message
	}
	return r.Content
}

func fail(kind FailureKind, msg string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: msg}}
}
