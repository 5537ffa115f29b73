package memory

import "context"

// Turn is one completed user/assistant exchange.
type Turn struct {
	User      string
	Assistant string
}

// Window is a bounded FIFO buffer of prior turns. Once the cap is exceeded
// the oldest turn is evicted first.
type Window struct {
	cap   int
	turns []Turn
}

func NewWindow(cap int) *Window {
	return &Window{cap: cap}
}

func (w *Window) Add(t Turn) {
	w.turns = append(w.turns, t)
	if w.cap > 0 && len(w.turns) > w.cap {
		w.turns = w.turns[len(w.turns)-w.cap:]
	}
}

func (w *Window) Len() int { return len(w.turns) }

// Turns returns the buffered turns, oldest first.
func (w *Window) Turns() []Turn {
	out := make([]Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Store supplies and receives conversation turns for a session. Load
// returns at most n of the most recent turns, oldest first. Implementations
// must serialize Append per session; unrelated sessions may proceed in
// parallel.
type Store interface {
	Load(ctx context.Context, sessionID string, n int) (*Window, error)
	Append(ctx context.Context, sessionID string, turn Turn) error
}
