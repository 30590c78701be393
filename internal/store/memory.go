package store

import (
	"context"
	"sync"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
)

// MemoryStore keeps the cart slot in process memory. Used for guest sessions
// without a configured Redis and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	lines   []domain.CartLine
	present bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(context.Context) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return domain.Cart{}, ErrEmptySlot
	}
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	return domain.Cart{Lines: lines}, nil
}

func (s *MemoryStore) Set(_ context.Context, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make([]domain.CartLine, len(cart.Lines))
	copy(s.lines, cart.Lines)
	s.present = true
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.present = false
	return nil
}
