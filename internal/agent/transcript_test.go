package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_AppendAndLast(t *testing.T) {
	tr := NewTranscript()
	_, ok := tr.Last()
	assert.False(t, ok)

	tr.Append(Step{Kind: StepThought, Text: "first"})
	tr.Append(Step{Kind: StepFinalAnswer, Text: "done"})

	assert.Equal(t, 2, tr.Len())
	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, StepFinalAnswer, last.Kind)
}

func TestTranscript_StepsReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(Step{Kind: StepThought, Text: "original"})

	steps := tr.Steps()
	steps[0].Text = "mutated"

	fresh := tr.Steps()
	assert.Equal(t, "original", fresh[0].Text)
}

func TestTranscript_Render(t *testing.T) {
	tr := NewTranscript()
	tr.Append(Step{Kind: StepThought, Text: "Thought: need math."})
	tr.Append(Step{Kind: StepToolCall, Tool: "calculator", Arguments: json.RawMessage(`{"expression": "15 * 23"}`)})
	tr.Append(Step{Kind: StepObservation, Text: "345"})
	tr.Append(Step{Kind: StepFinalAnswer, Text: "345"})

	want := "Thought: need math.\n" +
		`Action: calculator({"expression": "15 * 23"})` + "\n" +
		"Observation: 345\n" +
		"Final Answer: 345\n"
	assert.Equal(t, want, tr.Render())
}
