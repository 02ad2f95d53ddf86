package solver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/annel0/voxel-pathlab/internal/cache"
	"github.com/annel0/voxel-pathlab/internal/logging"
)

// CachedSolver кеширует исходы Found и NoPath по ключу запроса.
// Ошибки решателя и сбои транспорта не кешируются.
type CachedSolver struct {
	next    Solver
	cache   cache.Cache
	ttl     time.Duration
	metrics *Metrics
}

// NewCachedSolver оборачивает решатель кешем
func NewCachedSolver(next Solver, c cache.Cache, ttl time.Duration, metrics *Metrics) *CachedSolver {
	return &CachedSolver{next: next, cache: c, ttl: ttl, metrics: metrics}
}

// Solve возвращает закешированный исход или обращается к решателю
func (s *CachedSolver) Solve(ctx context.Context, req Request) (Outcome, error) {
	key := "solve:" + req.CacheKey()

	if data, err := s.cache.Get(ctx, key); err == nil {
		var out Outcome
		if jsonErr := json.Unmarshal(data, &out); jsonErr == nil {
			s.metrics.cacheLookup(true)
			return out, nil
		}
		logging.GetSolverLogger().Warn("повреждённая запись кеша %s, удаляем", key)
		_ = s.cache.Delete(ctx, key)
	} else if !cache.IsCacheMiss(err) {
		logging.GetSolverLogger().Warn("ошибка чтения кеша: %v", err)
	}
	s.metrics.cacheLookup(false)

	out, err := s.next.Solve(ctx, req)
	if err != nil || out.Kind == SolverError {
		return out, err
	}

	data, err := json.Marshal(out)
	if err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			logging.GetSolverLogger().Warn("не удалось записать кеш: %v", err)
		}
	}
	return out, nil
}

// SolverFunc позволяет использовать функцию как Solver
type SolverFunc func(ctx context.Context, req Request) (Outcome, error)

// Solve вызывает f
func (f SolverFunc) Solve(ctx context.Context, req Request) (Outcome, error) {
	return f(ctx, req)
}
