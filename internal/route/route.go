// Package route описывает результат поиска пути в каноническом виде.
package route

import "github.com/annel0/voxel-pathlab/internal/vec"

// Result - путь и предложенные решателем изменения мира
type Result struct {
	Path  []vec.Vec3 `json:"path"`
	Break []vec.Vec3 `json:"blocksBroken"`
	Place []vec.Vec3 `json:"blocksPlaced"`
}

// Empty сообщает, что в результате нет ни одной точки
func (r Result) Empty() bool {
	return len(r.Path) == 0 && len(r.Break) == 0 && len(r.Place) == 0
}

// Len возвращает общее количество маркеров результата
func (r Result) Len() int {
	return len(r.Path) + len(r.Break) + len(r.Place)
}
