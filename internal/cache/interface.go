package cache

import (
	"context"
	"errors"
	"time"
)

// Cache хранит сериализованные результаты решателя по ключу запроса.
//
// Использование:
//
//	c := NewMemoryCache(128)
//	err = c.Set(ctx, "key", data, 30*time.Second)
//	data, err := c.Get(ctx, "key")
type Cache interface {
	// Get получает значение по ключу.
	// Возвращает ErrCacheMiss если ключ не найден или истёк.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение с указанным TTL.
	// TTL = 0 означает TTL по умолчанию.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет ключ.
	Delete(ctx context.Context, key string) error

	// Close освобождает соединения.
	Close() error

	// GetMetrics возвращает снимок метрик.
	GetMetrics() *CacheMetrics
}

// CacheMetrics содержит метрики производительности кеша.
type CacheMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	HitRatio      float64 `json:"hit_ratio"`

	AvgLatencyMs float64 `json:"avg_latency_ms"`
	MaxLatencyMs float64 `json:"max_latency_ms"`

	TotalKeys  int64     `json:"total_keys"`
	LastUpdate time.Time `json:"last_update"`
}

// CacheConfig содержит конфигурацию Redis-кеша.
type CacheConfig struct {
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`

	DefaultTTL time.Duration `yaml:"default_ttl"`
	MaxTTL     time.Duration `yaml:"max_ttl"`

	MaxConnections int           `yaml:"max_connections"`
	PoolTimeout    time.Duration `yaml:"pool_timeout"`
}

// ErrCacheMiss возвращается при отсутствии ключа.
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss проверяет, является ли ошибка промахом кеша.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
