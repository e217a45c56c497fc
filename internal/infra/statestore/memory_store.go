package statestore

import (
	"context"
	"sync"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
)

// MemoryStore keeps the snapshot pair in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	state dashboard.StoredState
	ok    bool
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements dashboard.StateStore.
func (s *MemoryStore) Load(_ context.Context) (dashboard.StoredState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.ok, nil
}

// Save implements dashboard.StateStore.
func (s *MemoryStore) Save(_ context.Context, state dashboard.StoredState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.ok = true
	return nil
}

var _ dashboard.StateStore = (*MemoryStore)(nil)
