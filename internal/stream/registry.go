package stream

import (
	"fmt"
	"sync"
	"time"

	"github.com/gosuda/parley/internal/domain"
)

// Registry maps chat identifiers to their sessions. The registry lock only
// guards the map; chunk and listener mutations lock the individual session,
// so independent sessions never contend.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create registers a new empty session under id.
func (r *Registry) Create(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return nil, fmt.Errorf("stream.Registry.Create(%q): %w", id, domain.ErrAlreadyExists)
	}

	s := newSession(id)
	r.sessions[id] = s
	return s, nil
}

// Get returns the session registered under id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("stream.Registry.Get(%q): %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// Delete removes the session and cancels its pending removal. Listeners that
// are still attached are not closed; they simply receive nothing further.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if ok {
		s.stopExpiry()
	}
	return ok
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Append logs c on the session and pushes it to every attached listener.
// Unknown sessions and appends after the terminal chunk are no-ops; the
// result reports whether the chunk was logged.
func (r *Registry) Append(id string, c Chunk) bool {
	s, err := r.Get(id)
	if err != nil {
		return false
	}
	return s.append(c)
}

// Attach subscribes l to the session, replaying what was already emitted.
// A listener attached to an unknown session never receives anything; the
// result reports whether the session existed.
func (r *Registry) Attach(id string, l Listener) bool {
	s, err := r.Get(id)
	if err != nil {
		return false
	}
	s.attach(l)
	return true
}

// Detach removes l from the session and closes it. It is safe to call for a
// listener that was already dropped.
func (r *Registry) Detach(id string, l Listener) bool {
	s, err := r.Get(id)
	if err != nil {
		return false
	}
	return s.detach(l)
}

// ScheduleRemoval deletes the session once after has elapsed. A later call
// replaces the pending removal; Delete cancels it.
func (r *Registry) ScheduleRemoval(id string, after time.Duration) bool {
	s, err := r.Get(id)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setExpiryLocked(time.AfterFunc(after, func() {
		r.remove(id, s)
	}))
	return true
}

// remove deletes id only while it still maps to s.
func (r *Registry) remove(id string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.sessions[id]; ok && cur == s {
		delete(r.sessions, id)
	}
}
