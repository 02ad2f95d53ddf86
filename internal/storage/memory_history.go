package storage

import (
	"context"
	"sync"
)

// MemoryHistory - история в памяти с ограничением на число записей
type MemoryHistory struct {
	mu     sync.RWMutex
	runs   []Run
	max    int
	closed bool
}

// NewMemoryHistory создаёт историю на maxRuns записей (0 - без ограничения)
func NewMemoryHistory(maxRuns int) *MemoryHistory {
	return &MemoryHistory{max: maxRuns}
}

// Append добавляет запись, вытесняя самую старую при переполнении
func (m *MemoryHistory) Append(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrNotReady
	}
	m.runs = append(m.runs, run)
	if m.max > 0 && len(m.runs) > m.max {
		m.runs = append([]Run(nil), m.runs[len(m.runs)-m.max:]...)
	}
	return nil
}

// Recent возвращает до limit последних записей, новые первыми; limit <= 0 - все записи
func (m *MemoryHistory) Recent(_ context.Context, limit int) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrNotReady
	}
	n := len(m.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Run, 0, n)
	for i := len(m.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// Count возвращает число записей
func (m *MemoryHistory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrNotReady
	}
	return len(m.runs), nil
}

// Close помечает историю закрытой
func (m *MemoryHistory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
