package session

import (
	"context"
	"sync"
	"time"
)

// Session holds the conversation state for one user interaction. Each
// caller owns its own Session; exchanges are appended locally and,
// when a history store is attached, persisted as well.
type Session struct {
	mu        sync.Mutex
	user      string
	exchanges []Record
	history   HistoryStore
}

// NewSession creates a session for user. An empty user becomes "guest".
// history may be nil for ephemeral sessions.
func NewSession(user string, history HistoryStore) *Session {
	if user == "" {
		user = "guest"
	}
	return &Session{user: user, history: history}
}

// User returns the session's user identity.
func (s *Session) User() string {
	return s.user
}

// Record appends an exchange to the session and, if attached, the
// history store. The in-memory transcript is kept even when
// persistence fails so the conversation can continue.
func (s *Session) Record(ctx context.Context, question, answer string, sources []string) error {
	rec := Record{
		User:      s.user,
		Question:  question,
		Answer:    answer,
		Sources:   sources,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	s.exchanges = append(s.exchanges, rec)
	s.mu.Unlock()

	if s.history != nil {
		return s.history.Append(ctx, rec)
	}
	return nil
}

// Transcript returns a copy of the session's exchanges in order.
func (s *Session) Transcript() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

// Len returns the number of exchanges in this session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exchanges)
}
