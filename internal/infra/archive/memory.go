package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
)

// Memory keeps reports in a map; used for tests/dev.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory constructs an empty archive.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// Put implements dashboard.ReportArchive.
func (m *Memory) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

// Get returns a copy of the stored report.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Keys lists stored keys in order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ dashboard.ReportArchive = (*Memory)(nil)
