package agent

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"switchboard/internal/llm"
	"switchboard/internal/memory"
	"switchboard/internal/tool"
	"switchboard/internal/trace"
)

// Result is the terminal outcome of one run. Incomplete marks runs that
// exhausted their budget before the backend produced a final answer; the
// partial transcript and a best-effort answer are still returned.
type Result struct {
	Answer     string
	Transcript *Transcript
	Iterations int
	Incomplete bool
}

// ReactRunner drives the ReAct loop for one profile: ask the backend for a
// thought, decode it as a tool call or a final answer, dispatch tool calls
// through the registry, feed the observation back, repeat. Tool failures
// are observations the next thought can react to, not hard stops; only
// backend failures and budget exhaustion end a run without an answer from
// the model.
type ReactRunner struct {
	profile  *Profile
	provider llm.Provider
	registry *tool.Registry // already scoped to the profile
	store    memory.Store
	prompt   string
}

func NewReactRunner(p *Profile, provider llm.Provider, registry *tool.Registry, store memory.Store) *ReactRunner {
	scoped := registry.Scope(p.Tools)
	return &ReactRunner{
		profile:  p,
		provider: provider,
		registry: scoped,
		store:    store,
		prompt:   buildSystemPrompt(p, scoped),
	}
}

const incompleteNotice = "I reached my execution budget before completing this task."

func (r *ReactRunner) Run(ctx context.Context, sessionID string, message string, emit func(Event)) (*Result, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	ctx, span := trace.Tracer().Start(ctx, "agent.run",
		oteltrace.WithAttributes(
			attribute.String("agent.name", r.profile.Name),
			attribute.String("session.id", sessionID),
		),
	)
	defer span.End()

	transcript := NewTranscript()
	budget := NewBudget(r.profile.MaxIterations, r.profile.MaxExecutionTime)
	msgs := r.promptContext(ctx, sessionID, message)

	for {
		// Time is checked before an iteration begins; a step already in
		// flight runs to completion but nothing new starts after expiry.
		if budget.TimeRemaining() <= 0 {
			slog.Warn("agent: time budget exhausted", "agent", r.profile.Name, "iterations", budget.Used())
			break
		}
		if !budget.ConsumeIteration() {
			break
		}
		if err := ctx.Err(); err != nil {
			emit(Event{Type: EventError, Data: "request cancelled"})
			return nil, err
		}

		raw, err := r.think(ctx, budget.Used(), msgs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			emit(Event{Type: EventError, Data: err.Error()})
			return nil, err
		}

		transcript.Append(Step{Kind: StepThought, Text: raw})
		emit(Event{Type: EventThought, Data: raw})
		msgs = append(msgs, llm.Message{Role: "assistant", Content: raw})

		dir, perr := parseThought(raw)
		if perr != nil {
			// Malformed output self-loops with a corrective observation,
			// bounded by the same iteration budget.
			correction := "your reply could not be interpreted: " + perr.Error() +
				". Reply with exactly one Action: tool_name({...}) or one Final Answer."
			slog.Debug("agent: unparsable thought", "agent", r.profile.Name, "error", perr)
			transcript.Append(Step{Kind: StepObservation, Text: correction, FailureKind: "parse"})
			emit(Event{Type: EventObservation, Data: correction})
			msgs = append(msgs, llm.Message{Role: "user", Content: "Observation: " + correction})
			continue
		}

		if dir.tool == "" {
			transcript.Append(Step{Kind: StepFinalAnswer, Text: dir.final})
			emit(Event{Type: EventDone, Data: dir.final})
			return &Result{
				Answer:     dir.final,
				Transcript: transcript,
				Iterations: budget.Used(),
			}, nil
		}

		// The wall clock is checked before dispatch; a call already in
		// flight is the last permitted step, never cancelled mid-way.
		if budget.TimeRemaining() <= 0 {
			slog.Warn("agent: time budget exhausted", "agent", r.profile.Name, "iterations", budget.Used())
			break
		}

		transcript.Append(Step{Kind: StepToolCall, Tool: dir.tool, Arguments: dir.args})
		emit(Event{Type: EventToolCall, Data: map[string]string{
			"name":      dir.tool,
			"arguments": string(dir.args),
		}})

		res := invokeTraced(ctx, r.registry, dir.tool, dir.args)
		obs := Step{Kind: StepObservation, Text: res.Text()}
		if res.Failure != nil {
			obs.FailureKind = string(res.Failure.Kind)
			slog.Warn("agent: tool failed",
				"agent", r.profile.Name, "tool", dir.tool,
				"kind", res.Failure.Kind, "error", res.Failure.Message)
		}
		transcript.Append(obs)
		emit(Event{Type: EventObservation, Data: res.Text()})
		msgs = append(msgs, llm.Message{Role: "user", Content: "Observation: " + res.Text()})
	}

	// Budget exhausted without a final answer: terminate with a clearly
	// labeled incomplete result instead of truncating silently.
	answer := incompleteAnswer(transcript)
	transcript.Append(Step{Kind: StepFinalAnswer, Text: answer})
	emit(Event{Type: EventDone, Data: answer})
	span.SetStatus(codes.Error, "budget exhausted")
	return &Result{
		Answer:     answer,
		Transcript: transcript,
		Iterations: budget.Used(),
		Incomplete: true,
	}, nil
}

// promptContext assembles the system prompt, the session's memory window
// and the user message. The window is read-only context; the loop never
// writes history itself.
func (r *ReactRunner) promptContext(ctx context.Context, sessionID, message string) []llm.Message {
	msgs := []llm.Message{{Role: "system", Content: r.prompt}}

	if r.store != nil && sessionID != "" && r.profile.MemoryWindow > 0 {
		window, err := r.store.Load(ctx, sessionID, r.profile.MemoryWindow)
		if err != nil {
			slog.Warn("agent: failed to load memory", "session_id", sessionID, "error", err)
		} else {
			for _, t := range window.Turns() {
				msgs = append(msgs,
					llm.Message{Role: "user", Content: t.User},
					llm.Message{Role: "assistant", Content: t.Assistant},
				)
			}
			slog.Debug("agent: memory recalled", "session_id", sessionID, "turns", window.Len())
		}
	}

	return append(msgs, llm.Message{Role: "user", Content: message})
}

// think performs one completion inside its own span.
func (r *ReactRunner) think(ctx context.Context, iteration int, msgs []llm.Message) (string, error) {
	ctx, span := trace.Tracer().Start(ctx, "llm.think",
		oteltrace.WithAttributes(attribute.Int("llm.iteration", iteration)),
	)
	defer span.End()

	raw, err := r.provider.Complete(ctx, msgs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return raw, nil
}

// incompleteAnswer synthesizes the deterministic best-effort answer for a
// run that ran out of budget.
func incompleteAnswer(t *Transcript) string {
	steps := t.Steps()
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Kind == StepObservation && steps[i].FailureKind == "" {
			return incompleteNotice + " The last observation was: " + steps[i].Text
		}
	}
	return incompleteNotice
}
