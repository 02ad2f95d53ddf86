package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-pathlab/internal/vec"
)

func TestNormalize_DualCasing(t *testing.T) {
	out, err := Normalize([]byte(`{"path":[{"X":1,"Y":2,"Z":3},{"x":1,"y":2,"z":3}]}`))
	require.NoError(t, err)
	require.Equal(t, Found, out.Kind)
	require.Len(t, out.Result.Path, 2)
	assert.Equal(t, vec.New(1, 2, 3), out.Result.Path[0])
	assert.Equal(t, out.Result.Path[0], out.Result.Path[1])
}

func TestNormalize_MixedCasingPrefersUpper(t *testing.T) {
	out, err := Normalize([]byte(`{"path":[{"X":7,"x":9,"y":2,"Z":3}]}`))
	require.NoError(t, err)
	assert.Equal(t, vec.New(7, 2, 3), out.Result.Path[0])
}

func TestNormalize_EmptyPathIsNoPath(t *testing.T) {
	for _, body := range []string{`{"path":[]}`, `{}`, `{"path":null,"nodesExplored":12}`} {
		out, err := Normalize([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, NoPath, out.Kind, body)
		assert.Empty(t, out.Result.Path, body)
	}
}

func TestNormalize_ErrorShortCircuits(t *testing.T) {
	out, err := Normalize([]byte(`{"error":"unreachable","path":[{"x":1,"y":1,"z":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, SolverError, out.Kind)
	assert.Equal(t, "unreachable", out.Error)
	assert.Empty(t, out.Result.Path)
}

func TestNormalize_ErrorWinsOverInvalidSiblings(t *testing.T) {
	bodies := []string{
		`{"error":"unreachable","computationTime":"n/a"}`,
		`{"error":"unreachable","path":[{"X":1}]}`,
		`{"error":"unreachable","blocksPlaced":"none"}`,
	}
	for _, body := range bodies {
		out, err := Normalize([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, SolverError, out.Kind, body)
		assert.Equal(t, "unreachable", out.Error, body)
	}
}

func TestNormalize_EmptyErrorIgnored(t *testing.T) {
	out, err := Normalize([]byte(`{"error":"","path":[{"x":1,"y":1,"z":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, Found, out.Kind)
}

func TestNormalize_StatsPassThrough(t *testing.T) {
	out, err := Normalize([]byte(`{
		"path":[{"X":0,"Y":1,"Z":0},{"X":1,"Y":1,"Z":0}],
		"blocksBroken":[{"X":5,"Y":1,"Z":5}],
		"computationTime":12,
		"nodesExplored":340,
		"blocksTraversed":2,
		"waterCrossed":1,
		"verticalChange":0,
		"estimatedTime":1.75,
		"totalCost":4.5
	}`))
	require.NoError(t, err)

	assert.Equal(t, Stats{
		PathLength:      2,
		ComputationTime: 12,
		NodesExplored:   340,
		BlocksTraversed: 2,
		BlocksBroken:    1,
		WaterCrossed:    1,
		EstimatedTime:   1.75,
		TotalCost:       4.5,
	}, out.Stats)
	assert.Equal(t, []vec.Vec3{vec.New(5, 1, 5)}, out.Result.Break)
	assert.Empty(t, out.Result.Place)
}

func TestNormalize_Malformed(t *testing.T) {
	bodies := []string{
		`not json`,
		`[1,2,3]`,
		`{"path":[{"x":1,"y":2}]}`,
		`{"path":[{"x":"1","y":2,"z":3}]}`,
		`{"nodesExplored":"many"}`,
	}
	for _, body := range bodies {
		_, err := Normalize([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedResponse, body)
	}
}
