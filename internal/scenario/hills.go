package scenario

import (
	"github.com/aquilax/go-perlin"

	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world/block"
)

// DefaultHillsSeed - сид холмов в стандартном каталоге
const DefaultHillsSeed int64 = 1337

const (
	hillsMaxHeight = 4
	hillsScale     = 0.12
	hillsClearing  = 2 // радиус ровной площадки вокруг старта и цели
)

// heightField - шум Перлина, приведённый к целым высотам 0..maxHeight.
// Генератор создаётся заново на каждый вызов, поэтому результат зависит только от сида.
type heightField struct {
	noise *perlin.Perlin
}

func newHeightField(seed int64) heightField {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return heightField{noise: perlin.NewPerlin(alpha, beta, n, seed)}
}

// At возвращает высоту столбца (x, z)
func (h heightField) At(x, z int) int {
	v := h.noise.Noise2D(float64(x)*hillsScale, float64(z)*hillsScale)
	// Шум в диапазоне [-1, 1] -> [0, 1]
	v = (v + 1.0) / 2.0
	height := int(v * float64(hillsMaxHeight+1))
	if height < 0 {
		return 0
	}
	if height > hillsMaxHeight {
		return hillsMaxHeight
	}
	return height
}

func hills(seed int64) Scenario {
	start, goal := vec.New(-18, 1, -18), vec.New(18, 1, 18)
	return Scenario{
		Key:         "hills",
		Name:        "Rolling Hills",
		Description: "Procedural hills with stone cores and grass tops",
		Start:       start,
		Goal:        goal,
		generate: func(b Builder) {
			field := newHeightField(seed)
			ground(b, block.GrassBlockID)

			for x := -20; x <= 20; x++ {
				for z := -20; z <= 20; z++ {
					if near(x, z, start) || near(x, z, goal) {
						continue
					}
					height := field.At(x, z)
					for y := 1; y < height; y++ {
						b.SetBlock(vec.New(x, y, z), block.StoneBlockID)
					}
					if height > 0 {
						b.SetBlock(vec.New(x, height, z), block.GrassBlockID)
					}
				}
			}
		},
	}
}

func near(x, z int, p vec.Vec3) bool {
	return abs(x-p.X) <= hillsClearing && abs(z-p.Z) <= hillsClearing
}
