package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache - процессный кеш с TTL и ограничением размера.
// Используется, когда Redis не настроен.
type MemoryCache struct {
	mu         sync.Mutex
	items      map[string]memoryItem
	maxItems   int
	defaultTTL time.Duration
	now        func() time.Time
	stats      stats
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time // нулевое время - без истечения
	storedAt  time.Time
}

// NewMemoryCache создаёт кеш на maxItems записей (0 - без ограничения)
func NewMemoryCache(maxItems int) *MemoryCache {
	return &MemoryCache{
		items:      make(map[string]memoryItem),
		maxItems:   maxItems,
		defaultTTL: 10 * time.Minute,
		now:        time.Now,
	}
}

// Get возвращает значение или ErrCacheMiss
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer m.stats.recordLatency(start)

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if ok && !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		delete(m.items, key)
		ok = false
	}
	if !ok {
		m.stats.miss()
		return nil, ErrCacheMiss
	}

	m.stats.hit()
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set сохраняет копию значения. При переполнении вытесняется самая старая запись.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	defer m.stats.recordLatency(start)

	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists && m.maxItems > 0 && len(m.items) >= m.maxItems {
		m.evictOldest()
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	now := m.now()
	m.items[key] = memoryItem{value: stored, expiresAt: now.Add(ttl), storedAt: now}
	return nil
}

// Delete удаляет ключ
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Close ничего не делает
func (m *MemoryCache) Close() error { return nil }

// GetMetrics возвращает текущие метрики
func (m *MemoryCache) GetMetrics() *CacheMetrics {
	m.mu.Lock()
	n := int64(len(m.items))
	m.mu.Unlock()
	return m.stats.snapshot(n)
}

func (m *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, it := range m.items {
		if oldestKey == "" || it.storedAt.Before(oldest) {
			oldestKey, oldest = k, it.storedAt
		}
	}
	delete(m.items, oldestKey)
}
