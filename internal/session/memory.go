package session

import (
	"context"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

// MemoryStore is an in-process SessionStore for tests and local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[string]string
	drafts map[string]domain.OrderDraft
}

func NewMemoryStore() port.SessionStore {
	return &MemoryStore{
		owners: make(map[string]string),
		drafts: make(map[string]domain.OrderDraft),
	}
}

func (s *MemoryStore) Owner(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.owners[sessionID], nil
}

func (s *MemoryStore) SetOwner(_ context.Context, sessionID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owners[sessionID] = ownerID
	return nil
}

func (s *MemoryStore) Draft(_ context.Context, sessionID string) (*domain.OrderDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[sessionID]
	if !ok {
		return nil, nil
	}

	return &draft, nil
}

func (s *MemoryStore) SetDraft(_ context.Context, sessionID string, draft domain.OrderDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[sessionID] = draft
	return nil
}

func (s *MemoryStore) ClearDraft(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, sessionID)
	return nil
}
