// Package scenario содержит каталог детерминированных тестовых ландшафтов.
package scenario

import (
	"fmt"

	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world/block"
)

// Builder - то, во что генератор пишет блоки
type Builder interface {
	SetBlock(pos vec.Vec3, id block.BlockID)
}

// World - мир, в который устанавливается сценарий целиком
type World interface {
	Builder
	Clear()
}

// Scenario - именованный ландшафт с фиксированной парой старт/цель
type Scenario struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Start       vec.Vec3 `json:"start"`
	Goal        vec.Vec3 `json:"goal"`

	generate func(b Builder)
}

// Generate пишет рельеф сценария. Старт и цель не ставятся.
func (s Scenario) Generate(b Builder) {
	if s.generate != nil {
		s.generate(b)
	}
}

// Install очищает мир, генерирует рельеф и последним шагом ставит старт и цель
func Install(w World, s Scenario) {
	w.Clear()
	s.Generate(w)
	w.SetBlock(s.Start, block.StartBlockID)
	w.SetBlock(s.Goal, block.GoalBlockID)
}

// Catalog - неизменяемая таблица сценариев, собирается один раз при старте
type Catalog struct {
	order []string
	byKey map[string]Scenario
}

// NewCatalog собирает каталог, сохраняя порядок аргументов
func NewCatalog(scenarios ...Scenario) (*Catalog, error) {
	c := &Catalog{
		order: make([]string, 0, len(scenarios)),
		byKey: make(map[string]Scenario, len(scenarios)),
	}
	for _, s := range scenarios {
		if s.Key == "" {
			return nil, fmt.Errorf("сценарий %q без ключа", s.Name)
		}
		if _, dup := c.byKey[s.Key]; dup {
			return nil, fmt.Errorf("дублирующийся ключ сценария: %s", s.Key)
		}
		c.order = append(c.order, s.Key)
		c.byKey[s.Key] = s
	}
	return c, nil
}

// Default возвращает стандартный каталог
func Default() *Catalog {
	c, err := NewCatalog(
		simple(),
		maze(),
		multilevel(),
		mixedMaterials(),
		islands(),
		algorithmComparison(),
		algorithmShowcase(),
		hills(DefaultHillsSeed),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Get ищет сценарий по ключу
func (c *Catalog) Get(key string) (Scenario, bool) {
	s, ok := c.byKey[key]
	return s, ok
}

// Keys возвращает ключи в порядке каталога
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// List возвращает сценарии в порядке каталога
func (c *Catalog) List() []Scenario {
	out := make([]Scenario, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byKey[k])
	}
	return out
}

// Len возвращает число сценариев
func (c *Catalog) Len() int {
	return len(c.order)
}

// fill заполняет прямоугольник [x0..x1]×[z0..z1] на высоте y (границы включительно)
func fill(b Builder, x0, x1, y, z0, z1 int, id block.BlockID) {
	for x := x0; x <= x1; x++ {
		for z := z0; z <= z1; z++ {
			b.SetBlock(vec.New(x, y, z), id)
		}
	}
}

// ground - базовая плита -20..20 на y=0
func ground(b Builder, id block.BlockID) {
	fill(b, -20, 20, 0, -20, 20, id)
}
