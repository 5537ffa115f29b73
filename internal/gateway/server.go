package gateway

import (
	"context"
	"net/http"

	"switchboard/internal/agent"
	"switchboard/internal/history"
	"switchboard/internal/router"
)

// ChatHandler is the orchestrator seam the gateway is built against.
type ChatHandler interface {
	Handle(ctx context.Context, req router.Request, emit func(agent.Event)) (*router.Response, error)
}

type Server struct {
	orch    ChatHandler
	store   *history.Store
	model   string
	handler http.Handler
}

func NewServer(orch ChatHandler, store *history.Store, token, model string) *Server {
	s := &Server{
		orch:  orch,
		store: store,
		model: model,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("POST /v1/chat/stream", s.handleChatStream)
	mux.HandleFunc("GET /v1/sessions", s.handleListSessions)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.handler = withLogging(withAuth(token, mux))
	return s
}

// Handler exposes the full middleware-wrapped handler chain.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
