package agent

import "context"

type EventType string

const (
	EventThought     EventType = "thought"
	EventToolCall    EventType = "tool_call"
	EventObservation EventType = "observation"
	EventDone        EventType = "done"
	EventError       EventType = "error"
)

type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Runner executes one request against one agent profile. emit may be nil.
type Runner interface {
	Run(ctx context.Context, sessionID string, message string, emit func(Event)) (*Result, error)
}
