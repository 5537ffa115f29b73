package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchboard/internal/agent"
	"switchboard/internal/llm"
	"switchboard/internal/tool"
)

// scriptProvider replays completions in order across every runner sharing it
// and records the prompts it received.
type scriptProvider struct {
	replies  []string
	calls    int
	received [][]llm.Message
}

func (s *scriptProvider) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	s.received = append(s.received, msgs)
	if s.calls >= len(s.replies) {
		return "", errors.New("script exhausted")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

func testOrchestrator(t *testing.T, runProvider llm.Provider, classifier llm.Provider, chaining bool) *Orchestrator {
	t.Helper()
	profiles := map[string]*agent.Profile{
		"research": {Name: "research", Description: "web search and facts", MaxIterations: 5},
		"code":     {Name: "code", Description: "programming and execution", MaxIterations: 5},
	}
	factory := agent.NewFactory(runProvider, tool.NewRegistry(), nil, profiles)
	rtr, err := New(factory, classifier, "research", chaining, 8)
	require.NoError(t, err)
	return NewOrchestrator(rtr, factory, nil)
}

func TestOrchestrator_ExplicitAgent(t *testing.T) {
	provider := &scriptProvider{replies: []string{"Final Answer: hi there"}}
	orch := testOrchestrator(t, provider, &verdictProvider{}, true)

	resp, err := orch.Handle(context.Background(), Request{
		Message:   "say hi",
		AgentType: "research",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Response)
	assert.Equal(t, "research", resp.AgentUsed)
	assert.Equal(t, 1, resp.Iterations)
	assert.False(t, resp.Incomplete)
	assert.NotEmpty(t, resp.SessionID, "a session id is generated when none is supplied")
}

func TestOrchestrator_UnknownAgent(t *testing.T) {
	orch := testOrchestrator(t, &scriptProvider{}, &verdictProvider{}, true)

	_, err := orch.Handle(context.Background(), Request{
		Message:   "hello",
		AgentType: "poetry",
	}, nil)
	require.ErrorIs(t, err, ErrUnknownAgent)
}

func TestOrchestrator_SessionIDPreserved(t *testing.T) {
	provider := &scriptProvider{replies: []string{"Final Answer: ok"}}
	orch := testOrchestrator(t, provider, &verdictProvider{}, true)

	resp, err := orch.Handle(context.Background(), Request{
		Message:   "hello",
		AgentType: "research",
		SessionID: "fixed-session",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed-session", resp.SessionID)
}

func TestOrchestrator_Chain(t *testing.T) {
	provider := &scriptProvider{replies: []string{
		"Final Answer: the population is 8 million",
		"Final Answer: per capita value computed",
	}}
	classifier := &verdictProvider{verdict: "CHAIN: research, code"}
	orch := testOrchestrator(t, provider, classifier, true)

	resp, err := orch.Handle(context.Background(), Request{
		Message: "find the population and compute the per capita value",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "per capita value computed", resp.Response, "the final agent's answer wins")
	assert.Equal(t, "research+code", resp.AgentUsed)
	assert.Equal(t, 2, resp.Iterations)

	// The second run sees the first run's transcript, not the bare message.
	require.Len(t, provider.received, 2)
	second := provider.received[1]
	handoff := second[len(second)-1].Content
	assert.Contains(t, handoff, "Original request:")
	assert.Contains(t, handoff, "research specialist")
	assert.Contains(t, handoff, "the population is 8 million")
}

func TestOrchestrator_ChainTranscriptAccumulates(t *testing.T) {
	provider := &scriptProvider{replies: []string{
		"Final Answer: step one done",
		"Final Answer: step two done",
	}}
	classifier := &verdictProvider{verdict: "CHAIN: research, code"}
	orch := testOrchestrator(t, provider, classifier, true)

	resp, err := orch.Handle(context.Background(), Request{Message: "two steps"}, nil)
	require.NoError(t, err)

	var finals int
	for _, s := range resp.Transcript {
		if s.Kind == agent.StepFinalAnswer {
			finals++
		}
	}
	assert.Equal(t, 2, finals)
}

func TestOrchestrator_RunFailureNamesAgent(t *testing.T) {
	orch := testOrchestrator(t, &scriptProvider{}, &verdictProvider{}, true)

	_, err := orch.Handle(context.Background(), Request{
		Message:   "hello",
		AgentType: "code",
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent code")
}
