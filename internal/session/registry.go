// Package session keeps conversation state in memory, keyed by an opaque
// session id, and forgets sessions that stay inactive longer than a TTL.
// Nothing is persisted: a restart drops every session.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/cache"

	"github.com/google/uuid"
)

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now for both the registry and its cache.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithIDGenerator replaces the uuid-based session id generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) { r.newID = gen }
}

// Registry maps session ids to sessions.
type Registry struct {
	createMu sync.Mutex
	store    *cache.InMemory[*domain.Session]
	now      func() time.Time
	newID    func() string
}

// NewRegistry creates a registry whose sessions expire after ttl of inactivity.
func NewRegistry(ttl time.Duration, opts ...Option) *Registry {
	r := &Registry{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	r.store = cache.New[*domain.Session](ttl, cache.WithClock(r.now))
	return r
}

// TTL returns the inactivity threshold.
func (r *Registry) TTL() time.Duration { return r.store.TTL() }

// GetOrCreate returns the live session for id. An empty id gets a fresh
// random one; an unknown or expired id is recreated under the same id.
func (r *Registry) GetOrCreate(id string) (*domain.Session, bool) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	if id == "" {
		id = r.newID()
	} else if s, ok := r.store.Get(id); ok {
		r.store.Touch(id)
		return s, false
	}

	s := domain.NewSession(id, r.now())
	r.store.Set(id, s)
	return s, true
}

// Get returns a live session without creating one.
func (r *Registry) Get(id string) (*domain.Session, bool) {
	return r.store.Get(id)
}

// Touch marks the session as active now.
func (r *Registry) Touch(s *domain.Session) {
	r.store.Set(s.ID, s)
}

// Delete drops a session. It reports whether the session was live.
func (r *Registry) Delete(id string) bool {
	_, ok := r.store.Get(id)
	r.store.Delete(id)
	return ok
}

// Sweep evicts every session inactive beyond the TTL and returns their ids.
func (r *Registry) Sweep() []string {
	removed := r.store.EvictExpired()
	sort.Strings(removed)
	return removed
}

// Count returns the number of stored sessions.
func (r *Registry) Count() int { return r.store.Len() }

// List snapshots every live session, most recently active first.
func (r *Registry) List() []domain.SessionSummary {
	sessions := r.store.Values()
	out := make([]domain.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		s.Lock()
		out = append(out, s.Summary())
		s.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}
