package session

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store in memory.
// Safe for concurrent use.
type MemoryStore struct {
	data map[string]*State
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*State)}
}

// Save stores a copy so later mutations by the caller are not visible.
func (s *MemoryStore) Save(ctx context.Context, state *State) error {
	c := state.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[state.ID] = c
	return nil
}

// Load returns a copy of the stored state.
func (s *MemoryStore) Load(ctx context.Context, id string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return state.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns session ids in lexical order.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
