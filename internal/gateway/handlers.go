package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"switchboard/internal/agent"
	"switchboard/internal/llm"
	"switchboard/internal/router"
)

type chatRequest struct {
	Message   string `json:"message"`
	AgentType string `json:"agent_type,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response       string       `json:"response"`
	Transcript     []agent.Step `json:"transcript,omitempty"`
	AgentUsed      string       `json:"agent_used"`
	IterationsUsed int          `json:"iterations_used"`
	Incomplete     bool         `json:"incomplete,omitempty"`
	SessionID      string       `json:"session_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := s.orch.Handle(r.Context(), router.Request{
		Message:   req.Message,
		AgentType: req.AgentType,
		SessionID: req.SessionID,
	}, nil)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       resp.Response,
		Transcript:     resp.Transcript,
		AgentUsed:      resp.AgentUsed,
		IterationsUsed: resp.Iterations,
		Incomplete:     resp.Incomplete,
		SessionID:      resp.SessionID,
	})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sse := NewSSEWriter(w)
	resp, err := s.orch.Handle(r.Context(), router.Request{
		Message:   req.Message,
		AgentType: req.AgentType,
		SessionID: req.SessionID,
	}, func(ev agent.Event) {
		switch ev.Type {
		case agent.EventThought:
			sse.Send("thought", map[string]any{"text": ev.Data})
		case agent.EventToolCall:
			sse.Send("tool_call", ev.Data)
		case agent.EventObservation:
			sse.Send("observation", map[string]any{"text": ev.Data})
		case agent.EventError:
			sse.Send("error", map[string]any{"error": ev.Data})
		}
	})
	if err != nil {
		sse.Send("error", map[string]string{"error": err.Error()})
		return
	}

	sse.Send("done", map[string]any{
		"response":        resp.Response,
		"agent_used":      resp.AgentUsed,
		"iterations_used": resp.Iterations,
		"incomplete":      resp.Incomplete,
		"session_id":      resp.SessionID,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.Sessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	turns, err := s.store.Turns(r.Context(), r.PathValue("id"), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(turns) == 0 {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "switchboard",
		"model":   s.model,
	})
}

// statusFor maps error kinds to HTTP statuses: routing mistakes are the
// caller's, backend unavailability is retryable.
func statusFor(err error) int {
	switch {
	case errors.Is(err, router.ErrUnknownAgent):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
