// Package overlay рисует результат поиска поверх загруженного сценария.
package overlay

import (
	"github.com/annel0/voxel-pathlab/internal/route"
	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world/block"
)

// Canvas - часть мира, в которую пишет визуализатор
type Canvas interface {
	SetBlock(pos vec.Vec3, id block.BlockID)
	ClearLayer(layer block.Layer) int
}

// Visualizer владеет маркерами path/break/place до следующего запроса или сброса.
// Маркеры живут в отдельном слое, поэтому Clear не трогает рельеф и старт/цель.
type Visualizer struct {
	canvas  Canvas
	current route.Result
	marked  int
}

// New создаёт визуализатор поверх canvas
func New(canvas Canvas) *Visualizer {
	return &Visualizer{canvas: canvas}
}

// Apply помечает точки результата. Возвращает число записей в мир.
// Порядок: путь, затем break, затем place; более поздняя запись побеждает.
func (v *Visualizer) Apply(res route.Result) int {
	writes := 0
	mark := func(points []vec.Vec3, id block.BlockID) {
		for _, p := range points {
			v.canvas.SetBlock(p, id)
			writes++
		}
	}

	mark(res.Path, block.PathBlockID)
	mark(res.Break, block.BreakBlockID)
	mark(res.Place, block.PlaceBlockID)

	v.current = res
	v.marked += writes
	return writes
}

// Clear снимает все маркеры. Возвращает число снятых координат.
func (v *Visualizer) Clear() int {
	n := v.canvas.ClearLayer(block.LayerMarker)
	v.current = route.Result{}
	v.marked = 0
	return n
}

// Current возвращает последний нарисованный результат
func (v *Visualizer) Current() route.Result {
	return v.current
}

// Active сообщает, есть ли на холсте маркеры
func (v *Visualizer) Active() bool {
	return v.marked > 0
}
