package world

import (
	"github.com/annel0/voxel-pathlab/internal/render"
	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world/block"
)

// SceneGraph - контракт рендерера: мир только добавляет и удаляет меши,
// другие компоненты состояние рендера не трогают.
type SceneGraph interface {
	Add(pos vec.Vec3, layer block.Layer, id block.BlockID) render.Handle
	Remove(h render.Handle) bool
}

// Block представляет собой блок в мире
type Block struct {
	Type   block.BlockID `json:"type"`
	Handle render.Handle `json:"-"` // render.NoHandle, если меша нет
}

// HasHandle сообщает, привязан ли к блоку меш
func (b Block) HasHandle() bool {
	return b.Handle != render.NoHandle
}

// Entry - блок вместе с координатой и слоем (для выгрузки мира)
type Entry struct {
	Pos   vec.Vec3      `json:"pos"`
	Type  block.BlockID `json:"type"`
	Layer block.Layer   `json:"layer"`
}

// World - разреженное хранилище вокселей, разделённое на слои.
// Рельеф, старт/цель и маркеры пути лежат в разных слоях, поэтому
// снятие маркера никогда не портит рельеф под ним.
//
// World не потокобезопасен: им владеет одна горутина (цикл harness).
type World struct {
	scene  SceneGraph
	layers map[block.Layer]map[vec.Vec3]Block
}

// NewWorld создаёт пустой мир поверх графа сцены.
// Если scene == nil, используется собственная render.Scene.
func NewWorld(scene SceneGraph) *World {
	if scene == nil {
		scene = render.NewScene()
	}
	w := &World{
		scene:  scene,
		layers: make(map[block.Layer]map[vec.Vec3]Block, len(block.Layers)),
	}
	for _, l := range block.Layers {
		w.layers[l] = make(map[vec.Vec3]Block)
	}
	return w
}

// SetBlock записывает блок в слой его типа. Старый меш этой ячейки
// освобождается до создания нового; для air меш не создаётся, но ключ остаётся.
func (w *World) SetBlock(pos vec.Vec3, id block.BlockID) {
	layer := id.Layer()
	cells := w.layers[layer]

	if prev, ok := cells[pos]; ok && prev.HasHandle() {
		w.scene.Remove(prev.Handle)
	}

	b := Block{Type: id}
	if id.Renderable() {
		b.Handle = w.scene.Add(pos, layer, id)
	}
	cells[pos] = b
}

// GetBlock возвращает видимый блок: верхний присутствующий слой.
// Чтение никогда не создаёт записей.
func (w *World) GetBlock(pos vec.Vec3) (Block, bool) {
	for i := len(block.Layers) - 1; i >= 0; i-- {
		if b, ok := w.layers[block.Layers[i]][pos]; ok {
			return b, true
		}
	}
	return Block{}, false
}

// Layer возвращает блок конкретного слоя
func (w *World) Layer(layer block.Layer, pos vec.Vec3) (Block, bool) {
	b, ok := w.layers[layer][pos]
	return b, ok
}

// Terrain возвращает блок рельефа
func (w *World) Terrain(pos vec.Vec3) (Block, bool) {
	return w.Layer(block.LayerTerrain, pos)
}

// ClearLayer освобождает меши слоя и удаляет все его ключи.
// Возвращает количество удалённых записей.
func (w *World) ClearLayer(layer block.Layer) int {
	cells := w.layers[layer]
	n := len(cells)
	for _, b := range cells {
		if b.HasHandle() {
			w.scene.Remove(b.Handle)
		}
	}
	w.layers[layer] = make(map[vec.Vec3]Block)
	return n
}

// Clear освобождает все меши и удаляет все ключи во всех слоях.
// Используется только при смене сценария.
func (w *World) Clear() {
	for _, l := range block.Layers {
		w.ClearLayer(l)
	}
}

// Count возвращает количество ключей в слое
func (w *World) Count(layer block.Layer) int {
	return len(w.layers[layer])
}

// Len возвращает количество различных координат во всех слоях
func (w *World) Len() int {
	seen := make(map[vec.Vec3]struct{}, len(w.layers[block.LayerTerrain]))
	for _, cells := range w.layers {
		for pos := range cells {
			seen[pos] = struct{}{}
		}
	}
	return len(seen)
}

// Snapshot возвращает копию слоя в виде координата -> тип
func (w *World) Snapshot(layer block.Layer) map[vec.Vec3]block.BlockID {
	cells := w.layers[layer]
	out := make(map[vec.Vec3]block.BlockID, len(cells))
	for pos, b := range cells {
		out[pos] = b.Type
	}
	return out
}

// Blocks возвращает видимые блоки (композит слоёв), упорядоченные по координате
func (w *World) Blocks() []Entry {
	top := make(map[vec.Vec3]Entry, len(w.layers[block.LayerTerrain]))
	for _, l := range block.Layers {
		for pos, b := range w.layers[l] {
			top[pos] = Entry{Pos: pos, Type: b.Type, Layer: l}
		}
	}

	positions := make([]vec.Vec3, 0, len(top))
	for pos := range top {
		positions = append(positions, pos)
	}
	vec.Sort(positions)

	entries := make([]Entry, 0, len(positions))
	for _, pos := range positions {
		entries = append(entries, top[pos])
	}
	return entries
}
