package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/voxel-pathlab/internal/eventbus"
	"github.com/annel0/voxel-pathlab/internal/solver"
	"github.com/google/uuid"
)

// Compare прогоняет один запрос через несколько алгоритмов и собирает статистику.
// Мир не меняется, поэтому решатель вызывается вне цикла сессии.
func (s *Session) Compare(ctx context.Context, q CompareQuery) (Comparison, error) {
	st, err := s.Status(ctx)
	if err != nil {
		return Comparison{}, err
	}
	if st.Scenario == "" {
		return Comparison{}, ErrNoScenario
	}

	start, goal := st.Start, st.Goal
	if q.Start != nil {
		start = *q.Start
	}
	if q.Goal != nil {
		goal = *q.Goal
	}

	ids := q.Algorithms
	if len(ids) == 0 {
		ids = DefaultCompareAlgorithms
	}

	// Все запросы строятся заранее: неизвестный алгоритм отклоняет сравнение целиком
	requests := make([]solver.Request, 0, len(ids))
	for _, id := range ids {
		opts := q.Options
		opts.Algorithm = id
		req, err := s.algorithms.BuildRequest(start, goal, opts)
		if err != nil {
			return Comparison{}, err
		}
		requests = append(requests, req)
	}

	cmp := Comparison{Scenario: st.Scenario, Start: start, Goal: goal}
	for _, req := range requests {
		cmp.Results = append(cmp.Results, s.compareOne(ctx, req))
	}

	s.log.Info("📊 Сравнение на %s: %d алгоритмов", st.Scenario, len(cmp.Results))
	s.publish(st.Seq, eventbus.EventCompared, uuid.NewString(), cmp)
	return cmp, nil
}

func (s *Session) compareOne(ctx context.Context, req solver.Request) CompareEntry {
	entry := CompareEntry{Algorithm: req.Algorithm}
	if alg, ok := s.algorithms.Get(req.Algorithm); ok {
		entry.Name = alg.Name
	}

	started := time.Now()
	out, err := s.solver.Solve(ctx, req)
	entry.Elapsed = time.Since(started)

	switch {
	case err != nil && solver.IsTransport(err):
		entry.Status = StatusUnavailable
		entry.Message = fmt.Sprintf("Connection error: %v", err)
	case err != nil:
		entry.Status = StatusSolverError
		entry.Message = err.Error()
	case out.Kind == solver.SolverError:
		entry.Status = StatusSolverError
		entry.Message = out.Error
		entry.Stats = out.Stats
	case out.Kind == solver.NoPath:
		entry.Status = StatusNoPath
		entry.Message = "No path found"
		entry.Stats = out.Stats
	default:
		entry.Status = StatusPathFound
		entry.Stats = out.Stats
	}
	return entry
}
