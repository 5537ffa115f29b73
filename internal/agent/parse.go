package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// The reasoning backend speaks a three-marker text protocol:
//
//	Thought: free-form reasoning
//	Action: tool_name({"key": "value"})
//	Final Answer: terminal response text
//
// parseThought decodes one completion into exactly one of a tool call or a
// final answer. Anything else is a parse failure that the loop feeds back
// as a corrective observation rather than guessing at intent. When a
// completion carries both an Action and a Final Answer, the Action wins:
// acting is preferred over terminating early.

var (
	actionMarkerRe = regexp.MustCompile(`(?mi)^\s*Action:`)
	finalMarkerRe  = regexp.MustCompile(`(?si)final answer:\s*(.*)\z`)
	toolNameRe     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ErrNoDirective reports a completion with neither an Action nor a Final
// Answer marker.
var ErrNoDirective = errors.New("no Action or Final Answer directive")

// directive is the decoded intent of one thought.
type directive struct {
	tool  string          // non-empty for tool calls
	args  json.RawMessage // raw argument text; validated by the registry
	final string          // final answer text when tool is empty
}

func parseThought(text string) (directive, error) {
	if loc := actionMarkerRe.FindStringIndex(text); loc != nil {
		return parseAction(text[loc[1]:])
	}
	if m := finalMarkerRe.FindStringSubmatch(text); m != nil {
		return directive{final: strings.TrimSpace(m[1])}, nil
	}
	return directive{}, ErrNoDirective
}

// parseAction decodes `tool_name(arguments)` from the text following an
// Action marker. Arguments run to the last closing parenthesis so JSON
// objects containing parentheses survive.
func parseAction(rest string) (directive, error) {
	open := strings.Index(rest, "(")
	if open < 0 {
		return directive{}, errors.New("Action is missing its argument list; expected Action: tool_name({...})")
	}
	name := strings.TrimSpace(rest[:open])
	if !toolNameRe.MatchString(name) {
		return directive{}, fmt.Errorf("Action names an invalid tool %q; expected Action: tool_name({...})", name)
	}
	closing := strings.LastIndex(rest, ")")
	if closing < open {
		return directive{}, errors.New("Action argument list is not closed; expected Action: tool_name({...})")
	}
	args := strings.TrimSpace(rest[open+1 : closing])
	if args == "" {
		args = "{}"
	}
	return directive{tool: name, args: json.RawMessage(args)}, nil
}
