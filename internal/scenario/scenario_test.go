package scenario

import (
	"testing"

	"github.com/annel0/voxel-pathlab/internal/render"
	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world"
	"github.com/annel0/voxel-pathlab/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogOrder(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{
		"simple", "maze", "multilevel", "mixedMaterials", "islands",
		"algorithmComparison", "algorithmShowcase", "hills",
	}, c.Keys())

	_, ok := c.Get("volcano")
	assert.False(t, ok)
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog(simple(), simple())
	assert.Error(t, err)
}

func TestGenerateIsIdempotent(t *testing.T) {
	for _, s := range Default().List() {
		s := s
		t.Run(s.Key, func(t *testing.T) {
			w := world.NewWorld(nil)

			Install(w, s)
			first := w.Blocks()
			firstTerrain := w.Snapshot(block.LayerTerrain)

			Install(w, s)
			assert.Equal(t, first, w.Blocks())
			assert.Equal(t, firstTerrain, w.Snapshot(block.LayerTerrain))
		})
	}
}

func TestInstallStampsStartAndGoalLast(t *testing.T) {
	for _, s := range Default().List() {
		w := world.NewWorld(nil)
		Install(w, s)

		b, ok := w.GetBlock(s.Start)
		require.True(t, ok, s.Key)
		assert.Equal(t, block.StartBlockID, b.Type, s.Key)

		b, ok = w.GetBlock(s.Goal)
		require.True(t, ok, s.Key)
		assert.Equal(t, block.GoalBlockID, b.Type, s.Key)
	}
}

func TestInstallReleasesPreviousScenario(t *testing.T) {
	scene := render.NewScene()
	w := world.NewWorld(scene)
	c := Default()

	maze, _ := c.Get("maze")
	simpleScn, _ := c.Get("simple")

	Install(w, maze)
	Install(w, simpleScn)

	fresh := render.NewScene()
	Install(world.NewWorld(fresh), simpleScn)
	assert.Equal(t, fresh.Len(), scene.Len(), "меши старого сценария должны быть освобождены")
}

func TestSimpleLayout(t *testing.T) {
	w := world.NewWorld(nil)
	Install(w, simple())

	b, _ := w.GetBlock(vec.New(0, 1, 0))
	assert.Equal(t, block.StoneBlockID, b.Type)
	b, _ = w.GetBlock(vec.New(12, 1, 12))
	assert.Equal(t, block.WaterBlockID, b.Type)
	b, _ = w.GetBlock(vec.New(-20, 0, 20))
	assert.Equal(t, block.GrassBlockID, b.Type)
	assert.Equal(t, 41*41+11*11+6*6, w.Count(block.LayerTerrain))
}

func TestMazeWalls(t *testing.T) {
	w := world.NewWorld(nil)
	Install(w, maze())

	// Верхняя стена: строка 0 целиком из 'X'
	for x := -12; x <= 12; x++ {
		b, ok := w.GetBlock(vec.New(x, 1, -12))
		require.True(t, ok)
		assert.Equal(t, block.StoneBlockID, b.Type)
	}
	// Проход во второй строке
	_, ok := w.GetBlock(vec.New(-10, 1, -11))
	assert.False(t, ok)
}

func TestMixedMaterialsBridges(t *testing.T) {
	w := world.NewWorld(nil)
	Install(w, mixedMaterials())

	b, _ := w.GetBlock(vec.New(-10, 1, 0))
	assert.Equal(t, block.WoodBlockID, b.Type)
	b, _ = w.GetBlock(vec.New(10, 1, 5))
	assert.Equal(t, block.LavaBlockID, b.Type)
	b, _ = w.GetBlock(vec.New(-4, 1, -6))
	assert.Equal(t, block.StoneBlockID, b.Type)
	_, ok := w.GetBlock(vec.New(-3, 1, -6))
	assert.False(t, ok, "над нечётными x камня нет")
}

func TestIslandBridgeInterpolation(t *testing.T) {
	w := world.NewWorld(nil)
	Install(w, islands())

	// Мост (-15,-15) -> (-10,-12): 5 шагов, z = floor(-15 + 3i/5)
	expected := []vec.Vec3{
		vec.New(-15, 0, -15),
		vec.New(-14, 0, -15),
		vec.New(-13, 0, -14),
		vec.New(-12, 0, -14),
		vec.New(-11, 0, -13),
	}
	for _, p := range expected {
		b, ok := w.Terrain(p)
		require.True(t, ok, p.String())
		assert.Equal(t, block.WoodBlockID, b.Type, p.String())
	}

	b, _ := w.Terrain(vec.New(0, 0, -10))
	assert.Equal(t, block.WaterBlockID, b.Type)
}

func TestHillsDependOnSeedOnly(t *testing.T) {
	a := world.NewWorld(nil)
	b := world.NewWorld(nil)
	Install(a, hills(42))
	Install(b, hills(42))
	assert.Equal(t, a.Snapshot(block.LayerTerrain), b.Snapshot(block.LayerTerrain))

	// Площадка вокруг старта ровная
	_, ok := a.Terrain(vec.New(-17, 1, -17))
	assert.False(t, ok)
}
