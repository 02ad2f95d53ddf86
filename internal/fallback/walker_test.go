package fallback

import (
	"testing"

	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_XThenZ(t *testing.T) {
	start := vec.New(-18, 1, -18)
	goal := vec.New(18, 1, 0)

	res := Walk(start, goal)
	require.Len(t, res.Path, 54)

	prev := start
	for i, p := range res.Path {
		assert.Equal(t, 1, p.Y, "Y не меняется (шаг %d)", i)
		d := p.Sub(prev)
		if i < 36 {
			assert.Equal(t, vec.New(1, 0, 0), d, "шаг %d должен идти по X", i)
		} else {
			assert.Equal(t, vec.New(0, 0, 1), d, "шаг %d должен идти по Z", i)
		}
		prev = p
	}

	assert.Equal(t, goal, res.Path[len(res.Path)-1])
	assert.Empty(t, res.Break)
	assert.Empty(t, res.Place)
}

func TestWalk_NegativeDirectionAndKeepsStartY(t *testing.T) {
	res := Walk(vec.New(2, 5, 2), vec.New(0, 1, -1))

	require.Len(t, res.Path, 5)
	assert.Equal(t, vec.New(1, 5, 2), res.Path[0])
	assert.Equal(t, vec.New(0, 5, -1), res.Path[4], "Y берётся из старта, а не из цели")
}

func TestWalk_SameColumn(t *testing.T) {
	res := Walk(vec.New(3, 1, 3), vec.New(3, 7, 3))
	assert.Empty(t, res.Path)
}
