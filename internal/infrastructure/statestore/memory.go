package statestore

import (
	"context"
	"sync"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
)

// MemoryStore is an in-process conversation store for tests and local
// development. It deep-copies on both load and save so callers never
// share mutable state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*conversation.State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*conversation.State),
	}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*conversation.State, error) {
	if id == "" {
		return nil, conversation.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[id]
	if !ok {
		return nil, conversation.ErrNotFound
	}
	return state.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, state *conversation.State) error {
	if id == "" {
		return conversation.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[id] = state.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return conversation.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, id)
	return nil
}
