package historyrepo

import (
	"context"
	"sync"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
)

// MemoryRepository is an in-memory HistoryRepository used for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	capacity int
	entries  []dashboard.HistoryEntry
}

// NewMemoryRepository keeps at most capacity entries; zero means unbounded.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryRepository{capacity: capacity}
}

// Append implements dashboard.HistoryRepository.
func (r *MemoryRepository) Append(_ context.Context, entry dashboard.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	if r.capacity > 0 && len(r.entries) > r.capacity {
		r.entries = append([]dashboard.HistoryEntry(nil), r.entries[len(r.entries)-r.capacity:]...)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]dashboard.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	out := make([]dashboard.HistoryEntry, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

var _ dashboard.HistoryRepository = (*MemoryRepository)(nil)
