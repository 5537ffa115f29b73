package history

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"switchboard/internal/db"
	"switchboard/internal/memory"
)

const lockStripes = 64

// Store persists conversation turns in sqlite. It implements memory.Store;
// appends are serialized per session by hashing the session id onto a fixed
// set of lock stripes, so one session's history cannot be interleaved by
// concurrent requests while unrelated sessions proceed in parallel and the
// lock table stays bounded no matter how many sessions come and go.
type Store struct {
	db    *db.DB
	locks [lockStripes]sync.Mutex
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

func (s *Store) sessionLock(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

// EnsureSession creates the session row if needed and records which agent
// served it last.
func (s *Store) EnsureSession(ctx context.Context, sessionID, agent string) error {
	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO sessions (id, agent) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET agent = excluded.agent, updated_at = CURRENT_TIMESTAMP`,
		sessionID, agent)
	return err
}

// Append stores one completed turn. Part of the memory.Store contract.
func (s *Store) Append(ctx context.Context, sessionID string, turn memory.Turn) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO sessions (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, sessionID); err != nil {
		return err
	}
	if _, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO turns (session_id, user_message, assistant_message) VALUES (?, ?, ?)`,
		sessionID, turn.User, turn.Assistant); err != nil {
		return err
	}
	_, err := s.db.Conn().ExecContext(ctx, `
		UPDATE sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, sessionID)
	return err
}

// Load returns at most n of the session's most recent turns, oldest first.
// Part of the memory.Store contract.
func (s *Store) Load(ctx context.Context, sessionID string, n int) (*memory.Window, error) {
	if n <= 0 {
		return memory.NewWindow(0), nil
	}
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT user_message, assistant_message FROM turns
		WHERE session_id = ? ORDER BY id DESC LIMIT ?`, sessionID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []memory.Turn
	for rows.Next() {
		var t memory.Turn
		if err := rows.Scan(&t.User, &t.Assistant); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	window := memory.NewWindow(n)
	// Rows came newest-first; replay oldest-first.
	for i := len(turns) - 1; i >= 0; i-- {
		window.Add(turns[i])
	}
	return window, nil
}

// SessionRecord summarizes one stored session.
type SessionRecord struct {
	ID        string    `json:"id"`
	Agent     string    `json:"agent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TurnRecord is one stored turn as exposed over the API.
type TurnRecord struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	CreatedAt time.Time `json:"created_at"`
}

// Sessions lists stored sessions, most recently active first.
func (s *Store) Sessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, agent, created_at, updated_at FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(&r.ID, &r.Agent, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Turns returns up to n of a session's most recent turns, oldest first.
func (s *Store) Turns(ctx context.Context, sessionID string, n int) ([]TurnRecord, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, user_message, assistant_message, created_at FROM turns
		WHERE session_id = ? ORDER BY id DESC LIMIT ?`, sessionID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var r TurnRecord
		if err := rows.Scan(&r.ID, &r.User, &r.Assistant, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
