package route

import (
	"testing"

	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestResult_EmptyAndLen(t *testing.T) {
	var r Result
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Len())

	r.Break = []vec.Vec3{vec.New(1, 1, 1)}
	assert.False(t, r.Empty(), "одно изменение мира - уже не пустой результат")

	r.Path = []vec.Vec3{vec.New(0, 1, 0), vec.New(1, 1, 0)}
	assert.Equal(t, 3, r.Len())
}
