// Package history keeps the most recent chat messages of every tenant in
// memory.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/gosuda/parley/internal/domain"
)

// DefaultLimit is the per-tenant bound used when none is configured.
const DefaultLimit = 50

// Store is a bounded, in-memory domain.HistoryRepository. Each tenant's log
// has its own lock; the outer lock only guards the tenant map.
type Store struct {
	limit int

	mu      sync.RWMutex
	tenants map[string]*tenantLog
}

type tenantLog struct {
	mu       sync.Mutex
	messages []*domain.Message
}

var _ domain.HistoryRepository = (*Store)(nil)

// NewStore creates a store that retains at most limit messages per tenant.
func NewStore(limit int) *Store {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Store{
		limit:   limit,
		tenants: make(map[string]*tenantLog),
	}
}

// Limit returns the per-tenant bound.
func (s *Store) Limit() int {
	return s.limit
}

// Append adds msg to its tenant's log, dropping the oldest entries once the
// bound is exceeded.
func (s *Store) Append(_ context.Context, msg *domain.Message) error {
	if msg == nil {
		return fmt.Errorf("history.Store.Append: nil message: %w", domain.ErrValidation)
	}
	if !msg.Sender.Valid() {
		return fmt.Errorf("history.Store.Append: sender %q: %w", msg.Sender, domain.ErrValidation)
	}

	tl := s.logFor(msg.TenantID)

	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.messages = append(tl.messages, msg)
	if over := len(tl.messages) - s.limit; over > 0 {
		// Copy so the dropped prefix does not pin the backing array.
		tl.messages = append([]*domain.Message(nil), tl.messages[over:]...)
	}
	return nil
}

// List returns the tenant's retained messages, oldest first. An unknown
// tenant yields an empty slice.
func (s *Store) List(_ context.Context, tenantID string) ([]*domain.Message, error) {
	s.mu.RLock()
	tl, ok := s.tenants[tenantID]
	s.mu.RUnlock()

	if !ok {
		return []*domain.Message{}, nil
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	out := make([]*domain.Message, len(tl.messages))
	copy(out, tl.messages)
	return out, nil
}

func (s *Store) logFor(tenantID string) *tenantLog {
	s.mu.RLock()
	tl, ok := s.tenants[tenantID]
	s.mu.RUnlock()
	if ok {
		return tl
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tl, ok = s.tenants[tenantID]; ok {
		return tl
	}
	tl = &tenantLog{}
	s.tenants[tenantID] = tl
	return tl
}
