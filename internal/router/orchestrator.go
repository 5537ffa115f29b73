package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"switchboard/internal/agent"
	"switchboard/internal/history"
	"switchboard/internal/memory"
	"switchboard/internal/trace"
)

// Request is one inbound chat request. Immutable once accepted.
type Request struct {
	Message   string
	AgentType string
	SessionID string
}

// Response is the terminal outcome of routing and running a request.
type Response struct {
	Response   string
	Transcript []agent.Step
	AgentUsed  string
	Iterations int
	Incomplete bool
	SessionID  string
}

// Orchestrator is the single route+run entry point: it routes a request to
// one or more profiles, executes the runs sequentially and persists the
// completed turn. Chained runs receive the prior run's transcript as
// context so sub-goals are not re-derived with repeated tool calls.
type Orchestrator struct {
	router  *Router
	factory *agent.Factory
	history *history.Store
}

func NewOrchestrator(router *Router, factory *agent.Factory, store *history.Store) *Orchestrator {
	return &Orchestrator{
		router:  router,
		factory: factory,
		history: store,
	}
}

func (o *Orchestrator) Handle(ctx context.Context, req Request, emit func(agent.Event)) (*Response, error) {
	ctx, span := trace.Tracer().Start(ctx, "orchestrator.handle",
		oteltrace.WithAttributes(attribute.String("agent.requested", req.AgentType)),
	)
	defer span.End()

	decision, err := o.router.Route(ctx, req.AgentType, req.Message)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp := &Response{
		AgentUsed: strings.Join(decision.Profiles, "+"),
		SessionID: sessionID,
	}

	message := req.Message
	for i, name := range decision.Profiles {
		runner, err := o.factory.Build(name)
		if err != nil {
			return nil, err
		}

		result, err := runner.Run(ctx, sessionID, message, emit)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}

		resp.Transcript = append(resp.Transcript, result.Transcript.Steps()...)
		resp.Iterations += result.Iterations
		resp.Incomplete = resp.Incomplete || result.Incomplete
		resp.Response = result.Answer

		if i < len(decision.Profiles)-1 {
			message = chainMessage(req.Message, name, result.Transcript)
		}
	}

	o.persist(ctx, sessionID, resp.AgentUsed, req.Message, resp.Response)

	span.SetAttributes(
		attribute.String("agent.used", resp.AgentUsed),
		attribute.Int("agent.iterations", resp.Iterations),
		attribute.Bool("agent.incomplete", resp.Incomplete),
	)
	return resp, nil
}

// chainMessage hands a prior specialist's full transcript to the next one.
func chainMessage(original, priorAgent string, transcript *agent.Transcript) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original request: %s\n\n", original)
	fmt.Fprintf(&b, "The %s specialist already worked on this. Its transcript:\n\n%s\n", priorAgent, transcript.Render())
	b.WriteString("Continue from its findings and complete the original request. Do not repeat tool calls whose results appear above.")
	return b.String()
}

func (o *Orchestrator) persist(ctx context.Context, sessionID, agentUsed, user, assistant string) {
	if o.history == nil {
		return
	}
	if err := o.history.EnsureSession(ctx, sessionID, agentUsed); err != nil {
		slog.Warn("orchestrator: failed to ensure session", "session_id", sessionID, "error", err)
	}
	if err := o.history.Append(ctx, sessionID, memory.Turn{User: user, Assistant: assistant}); err != nil {
		slog.Warn("orchestrator: failed to save turn", "session_id", sessionID, "error", err)
	}
}
