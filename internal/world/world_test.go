package world

import (
	"testing"

	"github.com/annel0/voxel-pathlab/internal/render"
	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_SetAirKeepsKey(t *testing.T) {
	scene := render.NewScene()
	w := NewWorld(scene)
	pos := vec.New(4, 0, -7)

	w.SetBlock(pos, block.StoneBlockID)
	require.Equal(t, 1, scene.Len())

	w.SetBlock(pos, block.AirBlockID)

	b, ok := w.GetBlock(pos)
	require.True(t, ok, "ключ должен остаться после записи air")
	assert.Equal(t, block.AirBlockID, b.Type)
	assert.False(t, b.HasHandle())
	assert.Equal(t, 0, scene.Len(), "меш предыдущего блока должен быть освобождён")
}

func TestWorld_ReplaceReleasesHandle(t *testing.T) {
	scene := render.NewScene()
	w := NewWorld(scene)
	pos := vec.New(1, 1, 1)

	w.SetBlock(pos, block.SandBlockID)
	first, _ := w.GetBlock(pos)
	w.SetBlock(pos, block.IceBlockID)
	second, _ := w.GetBlock(pos)

	assert.NotEqual(t, first.Handle, second.Handle)
	assert.False(t, scene.Remove(first.Handle), "старый меш уже удалён")
	assert.Equal(t, 1, scene.Len())
}

func TestWorld_GetNeverCreates(t *testing.T) {
	w := NewWorld(nil)

	_, ok := w.GetBlock(vec.New(100, 100, 100))
	assert.False(t, ok)
	assert.Equal(t, 0, w.Len())
}

func TestWorld_LayersComposite(t *testing.T) {
	scene := render.NewScene()
	w := NewWorld(scene)
	pos := vec.New(2, 1, 2)

	w.SetBlock(pos, block.SandBlockID)
	w.SetBlock(pos, block.GoalBlockID)
	w.SetBlock(pos, block.PathBlockID)

	top, _ := w.GetBlock(pos)
	assert.Equal(t, block.PathBlockID, top.Type)

	assert.Equal(t, 1, w.ClearLayer(block.LayerMarker))

	top, _ = w.GetBlock(pos)
	assert.Equal(t, block.GoalBlockID, top.Type)

	terrain, ok := w.Terrain(pos)
	require.True(t, ok)
	assert.Equal(t, block.SandBlockID, terrain.Type, "рельеф под маркером не меняется")
	assert.Equal(t, 2, scene.Len())
}

func TestWorld_ClearReleasesEverything(t *testing.T) {
	scene := render.NewScene()
	w := NewWorld(scene)

	for x := -3; x <= 3; x++ {
		w.SetBlock(vec.New(x, 0, 0), block.GrassBlockID)
	}
	w.SetBlock(vec.New(0, 1, 0), block.StartBlockID)
	w.SetBlock(vec.New(1, 1, 0), block.BreakBlockID)
	w.SetBlock(vec.New(9, 9, 9), block.AirBlockID)

	w.Clear()

	assert.Equal(t, 0, scene.Len())
	assert.Equal(t, 0, w.Len())
	for _, l := range block.Layers {
		assert.Equal(t, 0, w.Count(l))
	}
}

func TestWorld_BlocksSortedTopLayer(t *testing.T) {
	w := NewWorld(nil)
	w.SetBlock(vec.New(1, 0, 0), block.StoneBlockID)
	w.SetBlock(vec.New(0, 0, 0), block.GrassBlockID)
	w.SetBlock(vec.New(0, 0, 0), block.StartBlockID)

	entries := w.Blocks()
	require.Len(t, entries, 2)
	assert.Equal(t, vec.New(0, 0, 0), entries[0].Pos)
	assert.Equal(t, block.StartBlockID, entries[0].Type)
	assert.Equal(t, block.LayerStamp, entries[0].Layer)
	assert.Equal(t, block.StoneBlockID, entries[1].Type)
}
