package agent

import "time"

// Profile is a named agent configuration: the tool subset a run may use,
// the budgets it is granted and how much conversation history it sees.
// Profiles are built once from config and never mutated.
type Profile struct {
	Name             string
	Description      string
	SystemPrompt     string
	Tools            []string // tool names; empty = all tools
	MaxIterations    int
	MaxExecutionTime time.Duration
	MemoryWindow     int
}
