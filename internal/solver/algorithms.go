package solver

import (
	"fmt"
	"strings"
)

// Algorithm описывает алгоритм внешнего решателя и его параметры
type Algorithm struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Summary         string `json:"summary"`
	Description     string `json:"description"`
	TimeComplexity  string `json:"timeComplexity"`
	SpaceComplexity string `json:"spaceComplexity"`
	Optimality      string `json:"optimality"`
	UseCases        string `json:"useCases"`

	UsesHeuristic  bool `json:"usesHeuristic"`
	UsesWeight     bool `json:"usesWeight"`
	UsesIterations bool `json:"usesIterations"`
	JumpPoint      bool `json:"jumpPoint"`
}

// Label - строка для выпадающего списка
func (a Algorithm) Label() string {
	return a.Name + " - " + a.Summary
}

// Heuristic - функция оценки расстояния до цели
type Heuristic string

const (
	Manhattan Heuristic = "manhattan"
	Euclidean Heuristic = "euclidean"
	Chebyshev Heuristic = "chebyshev"
)

// Heuristics перечисляет допустимые эвристики
var Heuristics = []Heuristic{Manhattan, Euclidean, Chebyshev}

// ParseHeuristic разбирает имя эвристики; пустое имя даёт Manhattan
func ParseHeuristic(name string) (Heuristic, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Manhattan, nil
	}
	for _, h := range Heuristics {
		if string(h) == name {
			return h, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownHeuristic, name)
}

// Значения параметров по умолчанию
const (
	DefaultHeuristic     = Manhattan
	DefaultWeight        = 1.0
	DefaultMaxIterations = 1000
)

// AlgorithmTable - неизменяемая таблица алгоритмов, собирается один раз при старте
type AlgorithmTable struct {
	order []string
	byID  map[string]Algorithm
}

// NewAlgorithmTable собирает таблицу, сохраняя порядок
func NewAlgorithmTable(algs ...Algorithm) (*AlgorithmTable, error) {
	t := &AlgorithmTable{
		order: make([]string, 0, len(algs)),
		byID:  make(map[string]Algorithm, len(algs)),
	}
	for _, a := range algs {
		if a.ID == "" {
			return nil, fmt.Errorf("алгоритм %q без идентификатора", a.Name)
		}
		if _, dup := t.byID[a.ID]; dup {
			return nil, fmt.Errorf("дублирующийся алгоритм: %s", a.ID)
		}
		t.order = append(t.order, a.ID)
		t.byID[a.ID] = a
	}
	return t, nil
}

// Get ищет алгоритм по идентификатору
func (t *AlgorithmTable) Get(id string) (Algorithm, bool) {
	a, ok := t.byID[id]
	return a, ok
}

// Lookup как Get, но возвращает ErrUnknownAlgorithm
func (t *AlgorithmTable) Lookup(id string) (Algorithm, error) {
	a, ok := t.byID[id]
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, id)
	}
	return a, nil
}

// IDs возвращает идентификаторы в порядке таблицы
func (t *AlgorithmTable) IDs() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// List возвращает алгоритмы в порядке таблицы
func (t *AlgorithmTable) List() []Algorithm {
	out := make([]Algorithm, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// DefaultAlgorithms возвращает семь алгоритмов решателя
func DefaultAlgorithms() *AlgorithmTable {
	t, err := NewAlgorithmTable(
		Algorithm{
			ID:              "astar",
			Name:            "A*",
			Summary:         "Balanced speed and optimality",
			Description:     "A* combines Dijkstra's algorithm with a heuristic to guide search toward the goal. It's efficient and guaranteed to find the optimal path when using an admissible heuristic.",
			TimeComplexity:  "O(E + V log V) with binary heap",
			SpaceComplexity: "O(V) - stores all nodes",
			Optimality:      "Optimal (with admissible heuristic)",
			UseCases:        "General pathfinding problems with reasonable memory constraints",
			UsesHeuristic:   true,
			UsesWeight:      true,
		},
		Algorithm{
			ID:              "dijkstra",
			Name:            "Dijkstra",
			Summary:         "Always optimal, slower",
			Description:     "Dijkstra's algorithm finds the shortest path by exploring nodes in order of increasing distance from the start. It doesn't use a heuristic.",
			TimeComplexity:  "O(E + V log V) with binary heap",
			SpaceComplexity: "O(V) - stores all nodes",
			Optimality:      "Always optimal",
			UseCases:        "When optimality is critical and there are weighted edges",
		},
		Algorithm{
			ID:              "bfs",
			Name:            "BFS",
			Summary:         "Simple breadth-first search",
			Description:     "Breadth-First Search explores all nodes at the current depth before moving deeper. Fast for unweighted graphs but not optimal for weighted ones.",
			TimeComplexity:  "O(V + E)",
			SpaceComplexity: "O(V) - stores all nodes at current level",
			Optimality:      "Optimal only for unweighted graphs",
			UseCases:        "Simple unweighted pathfinding, maze solving",
		},
		Algorithm{
			ID:              "greedy",
			Name:            "Greedy Best-First",
			Summary:         "Fast but suboptimal",
			Description:     "Greedy Best-First Search only considers the heuristic distance to goal, ignoring path cost. Very fast but often suboptimal.",
			TimeComplexity:  "O(E + V log V) with binary heap",
			SpaceComplexity: "O(V) - stores nodes",
			Optimality:      "Not guaranteed to be optimal",
			UseCases:        "When speed is critical and path quality is secondary",
			UsesHeuristic:   true,
			UsesWeight:      true,
		},
		Algorithm{
			ID:              "jps",
			Name:            "Jump Point Search",
			Summary:         "Optimised for grid maps",
			Description:     "Jump Point Search optimizes A* for uniform grid maps by skipping symmetric paths, dramatically reducing nodes expanded.",
			TimeComplexity:  "O(E log V) but typically much faster than A* in practice",
			SpaceComplexity: "O(V) - but explores fewer nodes than A*",
			Optimality:      "Optimal for uniform cost grids",
			UseCases:        "Grid-based games with uniform costs and few obstacles",
			UsesHeuristic:   true,
			JumpPoint:       true,
		},
		Algorithm{
			ID:              "ida",
			Name:            "IDA*",
			Summary:         "Memory efficient A*",
			Description:     "Iterative Deepening A* performs depth-first searches with increasing cost limits, using minimal memory.",
			TimeComplexity:  "O(b^d) where b is branching factor and d is solution depth",
			SpaceComplexity: "O(d) - linear in path depth",
			Optimality:      "Optimal (with admissible heuristic)",
			UseCases:        "Memory-constrained environments where optimality matters",
			UsesHeuristic:   true,
			UsesIterations:  true,
		},
		Algorithm{
			ID:              "bellmanford",
			Name:            "Bellman-Ford",
			Summary:         "Handles negative costs",
			Description:     "Bellman-Ford algorithm can handle negative edge weights and detect negative cycles, but is slower than Dijkstra's.",
			TimeComplexity:  "O(V*E) - polynomial time",
			SpaceComplexity: "O(V) - stores distances",
			Optimality:      "Optimal even with negative weights (if no negative cycles)",
			UseCases:        "When there are negative edge weights or costs",
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}
