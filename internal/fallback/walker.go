// Package fallback строит деградированный путь, когда решатель недоступен.
package fallback

import (
	"github.com/annel0/voxel-pathlab/internal/route"
	"github.com/annel0/voxel-pathlab/internal/vec"
)

// Walk идёт от start к goal единичными шагами: сначала выравнивает X,
// затем Z. Y остаётся равным start.Y. Препятствия и стоимость не учитываются.
// Стартовая точка в путь не входит.
func Walk(start, goal vec.Vec3) route.Result {
	steps := abs(goal.X-start.X) + abs(goal.Z-start.Z)
	path := make([]vec.Vec3, 0, steps)

	cur := start
	for cur.X != goal.X || cur.Z != goal.Z {
		if cur.X != goal.X {
			cur.X += sign(goal.X - cur.X)
		} else {
			cur.Z += sign(goal.Z - cur.Z)
		}
		path = append(path, cur)
	}

	return route.Result{
		Path:  path,
		Break: []vec.Vec3{},
		Place: []vec.Vec3{},
	}
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
