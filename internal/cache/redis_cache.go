package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/voxel-pathlab/internal/logging"
	"github.com/go-redis/redis/v8"
)

// RedisCache реализует Cache поверх Redis.
// Ключи пишутся с префиксом KeyPrefix, чтобы несколько стендов могли делить один Redis.
type RedisCache struct {
	client *redis.Client
	config *CacheConfig
	stats  stats
}

// NewRedisCache создаёт Redis-кеш и проверяет соединение.
func NewRedisCache(config *CacheConfig) (*RedisCache, error) {
	// Настройки по умолчанию
	if config.DefaultTTL == 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.MaxTTL == 0 {
		config.MaxTTL = 1 * time.Hour
	}
	if config.MaxConnections == 0 {
		config.MaxConnections = 10
	}
	if config.PoolTimeout == 0 {
		config.PoolTimeout = 30 * time.Second
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "pathlab:"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.RedisURL,
		Password:     config.RedisPassword,
		DB:           config.RedisDB,
		PoolSize:     config.MaxConnections,
		PoolTimeout:  config.PoolTimeout,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("Redis cache initialized: %s (prefix %s)", config.RedisURL, config.KeyPrefix)
	return &RedisCache{client: rdb, config: config}, nil
}

func (r *RedisCache) key(k string) string {
	return r.config.KeyPrefix + k
}

// Get получает значение по ключу из Redis.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer r.stats.recordLatency(start)

	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == nil {
		r.stats.hit()
		return val, nil
	}

	r.stats.miss()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}

	logging.Error("Redis Get error for key %s: %v", key, err)
	return nil, fmt.Errorf("redis get error: %w", err)
}

// Set сохраняет значение в Redis.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	defer r.stats.recordLatency(start)

	if ttl <= 0 {
		ttl = r.config.DefaultTTL
	}
	if ttl > r.config.MaxTTL {
		ttl = r.config.MaxTTL
	}

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		logging.Error("Redis Set error for key %s: %v", key, err)
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Delete удаляет ключ из Redis.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	start := time.Now()
	defer r.stats.recordLatency(start)

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		logging.Error("Redis Delete error for key %s: %v", key, err)
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (r *RedisCache) Close() error {
	if err := r.client.Close(); err != nil {
		logging.Error("Error closing Redis connection: %v", err)
		return err
	}
	logging.Info("Redis cache closed")
	return nil
}

// GetMetrics возвращает текущие метрики кеша.
// TotalKeys не считается: SCAN по префиксу слишком дорог для метрик.
func (r *RedisCache) GetMetrics() *CacheMetrics {
	return r.stats.snapshot(0)
}
