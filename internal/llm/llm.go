package llm

import (
	"context"
	"errors"
)

// Message is one entry of the prompt context sent to the reasoning backend.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// ErrUnavailable marks transport-level failures of the reasoning backend.
// Callers surface it as a retryable condition; the loop never invents an
// answer on top of it.
var ErrUnavailable = errors.New("llm: backend unavailable")

// Provider generates one completion for the given prompt context.
type Provider interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}
