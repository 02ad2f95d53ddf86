package render

import (
	"sort"
	"sync"

	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world/block"
)

// Handle - непрозрачный идентификатор меша в графе сцены.
// Нулевое значение означает отсутствие меша.
type Handle uint64

// NoHandle - отсутствие рендер-хэндла
const NoHandle Handle = 0

// Mesh представляет единичный куб в сцене
type Mesh struct {
	Handle Handle        `json:"handle"`
	Pos    vec.Vec3      `json:"pos"`
	Layer  block.Layer   `json:"layer"`
	Type   block.BlockID `json:"type"`
	Style  block.Style   `json:"style"`
}

// Frame - композитный снимок сцены: на каждую координату не больше одного меша
type Frame struct {
	Version uint64 `json:"version"`
	Meshes  []Mesh `json:"meshes"`
}

// Scene хранит живые меши. Мир пишет в сцену из своей горутины,
// цикл рендера читает её параллельно, поэтому доступ под мьютексом.
type Scene struct {
	mu      sync.RWMutex
	next    Handle
	meshes  map[Handle]Mesh
	version uint64
}

// NewScene создаёт пустую сцену
func NewScene() *Scene {
	return &Scene{
		meshes: make(map[Handle]Mesh),
	}
}

// Add создаёт меш типа id в позиции pos и возвращает его хэндл
func (s *Scene) Add(pos vec.Vec3, layer block.Layer, id block.BlockID) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	h := s.next
	s.meshes[h] = Mesh{
		Handle: h,
		Pos:    pos,
		Layer:  layer,
		Type:   id,
		Style:  block.StyleOf(id),
	}
	s.version++
	return h
}

// Remove удаляет меш. Возвращает false, если хэндл не был живым.
func (s *Scene) Remove(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meshes[h]; !ok {
		return false
	}
	delete(s.meshes, h)
	s.version++
	return true
}

// Len возвращает количество живых мешей
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}

// Version растёт при каждом изменении сцены
func (s *Scene) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Frame собирает композитный кадр: для каждой координаты
// берётся меш самого верхнего слоя (marker > stamp > terrain).
func (s *Scene) Frame() Frame {
	s.mu.RLock()
	top := make(map[vec.Vec3]Mesh, len(s.meshes))
	for _, m := range s.meshes {
		if cur, ok := top[m.Pos]; ok && cur.Layer >= m.Layer {
			continue
		}
		top[m.Pos] = m
	}
	version := s.version
	s.mu.RUnlock()

	meshes := make([]Mesh, 0, len(top))
	for _, m := range top {
		meshes = append(meshes, m)
	}
	sort.Slice(meshes, func(i, j int) bool { return meshes[i].Pos.Less(meshes[j].Pos) })

	return Frame{Version: version, Meshes: meshes}
}
