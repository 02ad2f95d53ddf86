package solver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-pathlab/internal/vec"
)

func decodeFields(t *testing.T, req Request) map[string]any {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))
	return fields
}

func TestBuildRequest_OmitsIrrelevantFields(t *testing.T) {
	table := DefaultAlgorithms()
	start, goal := vec.New(-18, 1, -18), vec.New(18, 5, 18)
	weight := 2.5
	iters := 50

	cases := []struct {
		algorithm  string
		heuristic  bool
		weight     bool
		iterations bool
		jumpPoint  bool
	}{
		{"astar", true, true, false, false},
		{"greedy", true, true, false, false},
		{"jps", true, false, false, true},
		{"ida", true, false, true, false},
		{"dijkstra", false, false, false, false},
		{"bfs", false, false, false, false},
		{"bellmanford", false, false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.algorithm, func(t *testing.T) {
			req, err := table.BuildRequest(start, goal, Options{
				Algorithm:     tc.algorithm,
				Heuristic:     "euclidean",
				Weight:        &weight,
				MaxIterations: &iters,
			})
			require.NoError(t, err)

			fields := decodeFields(t, req)
			_, hasH := fields["heuristicType"]
			_, hasW := fields["heuristicWeight"]
			_, hasI := fields["maxIterations"]
			assert.Equal(t, tc.heuristic, hasH)
			assert.Equal(t, tc.weight, hasW)
			assert.Equal(t, tc.iterations, hasI)
			assert.Equal(t, tc.jumpPoint, fields["jumpPointOptimisation"])
			assert.Equal(t, float64(18), fields["endX"])
			assert.Equal(t, float64(5), fields["endY"])
		})
	}
}

func TestBuildRequest_Defaults(t *testing.T) {
	table := DefaultAlgorithms()

	req, err := table.BuildRequest(vec.New(0, 1, 0), vec.New(1, 1, 1), Options{Algorithm: "astar"})
	require.NoError(t, err)
	assert.Equal(t, Manhattan, req.HeuristicType)
	require.NotNil(t, req.HeuristicWeight)
	assert.Equal(t, 1.0, *req.HeuristicWeight)
	assert.Nil(t, req.MaxIterations)

	req, err = table.BuildRequest(vec.New(0, 1, 0), vec.New(1, 1, 1), Options{Algorithm: "ida"})
	require.NoError(t, err)
	require.NotNil(t, req.MaxIterations)
	assert.Equal(t, 1000, *req.MaxIterations)
}

func TestBuildRequest_Errors(t *testing.T) {
	table := DefaultAlgorithms()
	p := vec.New(0, 0, 0)

	_, err := table.BuildRequest(p, p, Options{Algorithm: "theta"})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = table.BuildRequest(p, p, Options{Algorithm: "astar", Heuristic: "octile"})
	assert.ErrorIs(t, err, ErrUnknownHeuristic)

	// Эвристика не используется Дейкстрой, значит и не проверяется
	_, err = table.BuildRequest(p, p, Options{Algorithm: "dijkstra", Heuristic: "octile"})
	assert.NoError(t, err)

	zero := 0.0
	_, err = table.BuildRequest(p, p, Options{Algorithm: "greedy", Weight: &zero})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	neg := -1
	_, err = table.BuildRequest(p, p, Options{Algorithm: "ida", MaxIterations: &neg})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestOptionsSummary(t *testing.T) {
	table := DefaultAlgorithms()
	p := vec.New(0, 0, 0)

	req, _ := table.BuildRequest(p, p, Options{Algorithm: "bfs"})
	assert.Equal(t, "None", OptionsSummary(req))

	weight := 1.5
	req, _ = table.BuildRequest(p, p, Options{Algorithm: "astar", AllowBreaking: true, AvoidWater: true, Weight: &weight})
	assert.Equal(t, "Break blocks, Avoid water, Heuristic: manhattan, Weight: 1.5", OptionsSummary(req))

	req, _ = table.BuildRequest(p, p, Options{Algorithm: "ida", MinimiseVertical: true, AllowPlacing: true, Heuristic: "chebyshev"})
	assert.Equal(t, "Place blocks, Minimise climbing, Heuristic: chebyshev, Max Iterations: 1000", OptionsSummary(req))
}

func TestCacheKeyDeterministic(t *testing.T) {
	table := DefaultAlgorithms()
	a, _ := table.BuildRequest(vec.New(1, 2, 3), vec.New(4, 5, 6), Options{Algorithm: "astar"})
	b, _ := table.BuildRequest(vec.New(1, 2, 3), vec.New(4, 5, 6), Options{Algorithm: "astar"})
	c, _ := table.BuildRequest(vec.New(1, 2, 3), vec.New(4, 5, 6), Options{Algorithm: "bfs"})

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
}

func TestAlgorithmTable(t *testing.T) {
	table := DefaultAlgorithms()
	assert.Equal(t, []string{"astar", "dijkstra", "bfs", "greedy", "jps", "ida", "bellmanford"}, table.IDs())

	a, ok := table.Get("jps")
	require.True(t, ok)
	assert.Equal(t, "Jump Point Search - Optimised for grid maps", a.Label())

	_, err := NewAlgorithmTable(Algorithm{ID: "x"}, Algorithm{ID: "x"})
	assert.Error(t, err)
}
