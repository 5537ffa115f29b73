package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

type StepKind string

const (
	StepThought     StepKind = "thought"
	StepToolCall    StepKind = "tool_call"
	StepObservation StepKind = "observation"
	StepFinalAnswer StepKind = "final_answer"
)

// Step is one entry of a run transcript.
type Step struct {
	Kind      StepKind        `json:"kind"`
	Text      string          `json:"text,omitempty"`
	Tool      string          `json:"tool,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	// FailureKind is set on observations recording a failed tool call or
	// a parse correction.
	FailureKind string `json:"failure_kind,omitempty"`
}

// Transcript is the append-only record of one run. It is owned by exactly
// one in-flight execution and is not safe for concurrent use.
type Transcript struct {
	steps []Step
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(s Step) {
	t.steps = append(t.steps, s)
}

func (t *Transcript) Len() int { return len(t.steps) }

func (t *Transcript) Last() (Step, bool) {
	if len(t.steps) == 0 {
		return Step{}, false
	}
	return t.steps[len(t.steps)-1], true
}

// Steps returns a copy of the recorded steps.
func (t *Transcript) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Render writes the transcript back out in the protocol's textual form, so
// a chained run can pick up where an earlier one left off.
func (t *Transcript) Render() string {
	var b strings.Builder
	for _, s := range t.steps {
		switch s.Kind {
		case StepThought:
			fmt.Fprintf(&b, "%s\n", strings.TrimSpace(s.Text))
		case StepToolCall:
			fmt.Fprintf(&b, "Action: %s(%s)\n", s.Tool, string(s.Arguments))
		case StepObservation:
			fmt.Fprintf(&b, "Observation: %s\n", s.Text)
		case StepFinalAnswer:
			fmt.Fprintf(&b, "Final Answer: %s\n", s.Text)
		}
	}
	return b.String()
}
