package agent

import (
	"fmt"
	"strings"

	"switchboard/internal/tool"
)

// buildSystemPrompt assembles the protocol instructions for a profile,
// enumerating the tools its registry view exposes.
func buildSystemPrompt(p *Profile, reg *tool.Registry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a specialist for %s.\n\n", p.Name, p.Description)

	tools := reg.All()
	if len(tools) > 0 {
		b.WriteString("You have access to the following tools:\n")
		for _, t := range tools {
			fmt.Fprintf(&b, "- %s: %s\n  Argument schema: %s\n", t.Name, t.Description, string(t.InputSchema))
		}
		b.WriteString("\n")
	}

	b.WriteString(`Reason and act in this exact format:

Thought: think about what to do next
Action: tool_name({"argument": "value"})

The action's arguments must be a single JSON object matching the tool's
schema. After each Action you will receive an Observation with the result.
Repeat Thought/Action until you can answer, then reply:

Thought: I have enough information
Final Answer: your complete response

Reply with exactly one Action or one Final Answer per message, never both.
`)

	if p.SystemPrompt != "" {
		b.WriteString("\n")
		b.WriteString(p.SystemPrompt)
		b.WriteString("\n")
	}
	return b.String()
}
