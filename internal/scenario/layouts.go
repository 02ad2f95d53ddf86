package scenario

import (
	"math"

	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world/block"
)

func simple() Scenario {
	return Scenario{
		Key:         "simple",
		Name:        "Simple Obstacles",
		Description: "Basic flat terrain with some stone obstacles",
		Start:       vec.New(-15, 1, -15),
		Goal:        vec.New(15, 1, 15),
		generate: func(b Builder) {
			ground(b, block.GrassBlockID)
			fill(b, -5, 5, 1, -5, 5, block.StoneBlockID)
			fill(b, 10, 15, 1, 10, 15, block.WaterBlockID)
		},
	}
}

// mazePattern раскладывается по X/Z со смещением -12; 'X' - каменная стена на y=1
var mazePattern = []string{
	"XXXXXXXXXXXXXXXXXXXXXXXXX",
	"XS        X             X",
	"XXXXXXXX  X  XXXXXXXXXXX",
	"X         X  X           ",
	"X  XXXXXXXX  X  XXXXXXXXX",
	"X  X         X  X       X",
	"X  X  XXXXXXXX  X  XXX  X",
	"X  X  X         X  X X  X",
	"X  X  X  XXXXXXXX  X X  X",
	"X  X  X  X         X X  X",
	"X  X  X  X  XXXXXXXX X  X",
	"X  X  X  X  X        X  X",
	"X  X  X  X  X  XXXXXX   X",
	"X  X  X  X  X  X     XXXX",
	"X  X  X  X  X  X  X     X",
	"X  X  X  X  X  X  XXXX  X",
	"X  X  X  X  X  X     X  X",
	"X  X  X  X  X  XXXXX X  X",
	"X  X  X  X  X        X  X",
	"X  X  X  X  XXXXXXXXXX  X",
	"X  X  X  X              X",
	"X  X  X  XXXXXXXXXXXXXX X",
	"X  X  X                 X",
	"X  X  XXXXXXXXXXXXXXXXXXX",
	"X  X                    G",
	"XXXXXXXXXXXXXXXXXXXXXXXXXXE",
}

const mazeOffset = 12

func maze() Scenario {
	return Scenario{
		Key:         "maze",
		Name:        "Complex Maze",
		Description: "Navigate through a complex maze with narrow passages",
		Start:       vec.New(-18, 1, -18),
		Goal:        vec.New(18, 1, 18),
		generate: func(b Builder) {
			ground(b, block.GrassBlockID)
			for z, row := range mazePattern {
				for x := 0; x < len(row); x++ {
					if row[x] == 'X' {
						b.SetBlock(vec.New(x-mazeOffset, 1, z-mazeOffset), block.StoneBlockID)
					}
				}
			}
		},
	}
}

func multilevel() Scenario {
	return Scenario{
		Key:         "multilevel",
		Name:        "Multi-Level Terrain",
		Description: "Navigate across different elevations",
		Start:       vec.New(-18, 1, -18),
		Goal:        vec.New(18, 5, 18),
		generate: func(b Builder) {
			ground(b, block.GrassBlockID)

			// Уровень 0: низина
			fill(b, -20, -6, 1, -20, -6, block.AirBlockID)

			// Уровень 1
			fill(b, -5, 20, 1, -20, -6, block.StoneBlockID)
			fill(b, -5, 20, 2, -20, -6, block.AirBlockID)

			// Уровень 2
			for y := 1; y <= 2; y++ {
				fill(b, -20, -6, y, -5, 20, block.StoneBlockID)
			}
			fill(b, -20, -6, 3, -5, 20, block.AirBlockID)

			// Уровень 3
			for y := 1; y <= 3; y++ {
				fill(b, -5, 4, y, -5, 4, block.StoneBlockID)
			}
			fill(b, -5, 4, 4, -5, 4, block.AirBlockID)

			// Уровень 4
			for y := 1; y <= 4; y++ {
				fill(b, 5, 20, y, 5, 20, block.StoneBlockID)
			}
			fill(b, 5, 20, 5, 5, 20, block.AirBlockID)

			// Мосты между уровнями
			for i := 0; i < 5; i++ {
				b.SetBlock(vec.New(-5-i, 1, -15), block.WoodBlockID)
				b.SetBlock(vec.New(-10, 2, -5-i), block.WoodBlockID)
				b.SetBlock(vec.New(-5-i, 3, 0), block.WoodBlockID)
				b.SetBlock(vec.New(0, 4, 5+i), block.WoodBlockID)
			}
		},
	}
}

func mixedMaterials() Scenario {
	return Scenario{
		Key:         "mixedMaterials",
		Name:        "Mixed Materials Challenge",
		Description: "Navigate through different materials with varying traversal costs",
		Start:       vec.New(-18, 1, 0),
		Goal:        vec.New(18, 1, 0),
		generate: func(b Builder) {
			ground(b, block.GrassBlockID)
			fill(b, -20, 20, 1, -5, 5, block.AirBlockID)

			fill(b, -15, -6, 1, -3, 3, block.SandBlockID)
			fill(b, -5, 4, 1, -4, 4, block.WaterBlockID)
			fill(b, 5, 14, 1, -3, 3, block.IceBlockID)

			for z := -5; z <= 5; z++ {
				b.SetBlock(vec.New(-10, 1, z), block.LavaBlockID)
				b.SetBlock(vec.New(10, 1, z), block.LavaBlockID)
			}
			for z := -2; z <= 2; z++ {
				b.SetBlock(vec.New(-10, 1, z), block.WoodBlockID)
				b.SetBlock(vec.New(10, 1, z), block.WoodBlockID)
			}

			for x := -5; x <= 5; x++ {
				if x%2 == 0 {
					b.SetBlock(vec.New(x, 1, -6), block.StoneBlockID)
					b.SetBlock(vec.New(x, 1, 6), block.StoneBlockID)
				}
			}
		},
	}
}

type island struct {
	x, z, radius int
}

type bridge struct {
	x1, z1, x2, z2 int
}

var islandLayout = []island{
	{x: -18, z: -18, radius: 3},
	{x: -10, z: -12, radius: 2},
	{x: -5, z: -5, radius: 2},
	{x: 0, z: 0, radius: 3},
	{x: 8, z: 5, radius: 2},
	{x: 12, z: 12, radius: 2},
	{x: 18, z: 18, radius: 3},
}

var bridgeLayout = []bridge{
	{x1: -15, z1: -15, x2: -10, z2: -12},
	{x1: -8, z1: -10, x2: -5, z2: -5},
	{x1: -3, z1: -3, x2: 0, z2: 0},
	{x1: 3, z1: 3, x2: 8, z2: 5},
	{x1: 10, z1: 7, x2: 12, z2: 12},
	{x1: 14, z1: 14, x2: 18, z2: 18},
}

// lerpFloor - точка отрезка с округлением вниз
func lerpFloor(a, d, i, steps int) int {
	return int(math.Floor(float64(a) + float64(d*i)/float64(steps)))
}

func islands() Scenario {
	return Scenario{
		Key:         "islands",
		Name:        "Islands Challenge",
		Description: "Find your way across disconnected islands",
		Start:       vec.New(-18, 1, -18),
		Goal:        vec.New(18, 1, 18),
		generate: func(b Builder) {
			ground(b, block.WaterBlockID)

			for _, is := range islandLayout {
				r := is.radius
				for dx := -r; dx <= r; dx++ {
					for dz := -r; dz <= r; dz++ {
						if dx*dx+dz*dz <= r*r {
							b.SetBlock(vec.New(is.x+dx, 0, is.z+dz), block.GrassBlockID)
							b.SetBlock(vec.New(is.x+dx, 1, is.z+dz), block.AirBlockID)
						}
					}
				}
			}

			for _, br := range bridgeLayout {
				dx, dz := br.x2-br.x1, br.z2-br.z1
				steps := max(abs(dx), abs(dz))
				for i := 0; i <= steps; i++ {
					x := lerpFloor(br.x1, dx, i, steps)
					z := lerpFloor(br.z1, dz, i, steps)
					b.SetBlock(vec.New(x, 0, z), block.WoodBlockID)
					b.SetBlock(vec.New(x, 1, z), block.AirBlockID)
				}
			}
		},
	}
}

// corridor - общая основа сценариев сравнения: водная полоса по z=0
// между ледяными стенками на ±wall и каменные пробки через каждые 5 блоков
func corridor(b Builder, halfWidth, wall int) {
	ground(b, block.GrassBlockID)
	fill(b, -18, 18, 1, -halfWidth, halfWidth, block.AirBlockID)

	for x := -15; x <= 15; x++ {
		b.SetBlock(vec.New(x, 1, 0), block.WaterBlockID)
	}
	for x := -15; x <= 15; x++ {
		b.SetBlock(vec.New(x, 1, wall), block.IceBlockID)
		b.SetBlock(vec.New(x, 1, -wall), block.IceBlockID)
	}
	for z := -wall; z <= wall; z++ {
		b.SetBlock(vec.New(-15, 1, z), block.IceBlockID)
		b.SetBlock(vec.New(15, 1, z), block.IceBlockID)
	}
	for i := -10; i <= 10; i += 5 {
		b.SetBlock(vec.New(i, 1, 0), block.StoneBlockID)
	}
}

func algorithmComparison() Scenario {
	return Scenario{
		Key:         "algorithmComparison",
		Name:        "Algorithm Comparison",
		Description: "Scenario designed to showcase the differences between pathfinding algorithms",
		Start:       vec.New(-18, 1, 0),
		Goal:        vec.New(18, 1, 0),
		generate: func(b Builder) {
			corridor(b, 5, 3)
		},
	}
}

func algorithmShowcase() Scenario {
	return Scenario{
		Key:         "algorithmShowcase",
		Name:        "Algorithm Showcase",
		Description: "Complex scenario to showcase differences between pathfinding algorithms",
		Start:       vec.New(-18, 1, 0),
		Goal:        vec.New(18, 1, 0),
		generate: func(b Builder) {
			corridor(b, 10, 5)

			// Шахматные перегородки
			for x := -12; x <= 12; x += 3 {
				for z := 2; z <= 4; z++ {
					b.SetBlock(vec.New(x, 1, z), block.StoneBlockID)
				}
				for z := -4; z <= -2; z++ {
					b.SetBlock(vec.New(x+1, 1, z), block.StoneBlockID)
				}
			}

			for x := -8; x <= 8; x++ {
				if x%4 != 0 {
					b.SetBlock(vec.New(x, 1, 2), block.StoneBlockID)
					b.SetBlock(vec.New(x, 1, -2), block.StoneBlockID)
				}
			}

			// Деревянный мост над водой
			for x := -5; x <= 5; x++ {
				for z := -1; z <= 1; z++ {
					b.SetBlock(vec.New(x, 2, z), block.WoodBlockID)
					if x%2 == 0 && z == 0 {
						b.SetBlock(vec.New(x, 3, z), block.WoodBlockID)
					}
				}
			}
		},
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
