package progress

import (
	"context"
	"sync"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

// MemoryStore keeps snapshots in process memory, one per user.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]domain.ImportProgress
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]domain.ImportProgress)}
}

func (s *MemoryStore) Put(_ context.Context, userID string, p domain.ImportProgress) error {
	s.mu.Lock()
	s.items[userID] = p.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*domain.ImportProgress, error) {
	s.mu.RLock()
	p, ok := s.items[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.items, userID)
	s.mu.Unlock()
	return nil
}
