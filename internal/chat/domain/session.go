package domain

import (
	"sync"
	"time"
)

// SessionContext biases how the next turn is interpreted.
//
// AwaitingResponse is true only right after a reply that asked a yes/no
// question; the router clears it on the following turn whatever the answer.
type SessionContext struct {
	LastIntention    string `json:"lastIntention,omitempty"`
	LastRoute        string `json:"lastRoute,omitempty"`
	AwaitingResponse bool   `json:"awaitingResponse"`
}

// Session is the server-held state of one conversation.
//
// Callers must hold the session lock (Lock/Unlock) for the duration of a
// turn; this serializes concurrent requests that share a session id.
type Session struct {
	mu sync.Mutex

	ID           string
	CreatedAt    time.Time
	LastActivity time.Time
	Context      SessionContext
	Quote        QuoteFormState

	messages []ChatMessage
}

// NewSession creates an empty session.
func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, LastActivity: now}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Append adds a message to the history. History is append-only.
func (s *Session) Append(m ChatMessage) {
	s.messages = append(s.messages, m)
	if m.Timestamp.After(s.LastActivity) {
		s.LastActivity = m.Timestamp
	}
}

// Len returns the number of messages in the history.
func (s *Session) Len() int { return len(s.messages) }

// Messages returns a copy of the full history.
func (s *Session) Messages() []ChatMessage {
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Recent returns a copy of the last n messages (all of them if n <= 0).
func (s *Session) Recent(n int) []ChatMessage {
	msgs := s.messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

// SessionSummary is the diagnostic view of a session.
type SessionSummary struct {
	ID           string         `json:"id"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastActivity time.Time      `json:"lastActivity"`
	Messages     int            `json:"messages"`
	Context      SessionContext `json:"context"`
	QuoteActive  bool           `json:"quoteActive"`
}

// Summary snapshots the session. The caller must hold the lock.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		Messages:     len(s.messages),
		Context:      s.Context,
		QuoteActive:  s.Quote.Active,
	}
}
