package harness

import (
	"errors"
	"time"

	"github.com/annel0/voxel-pathlab/internal/route"
	"github.com/annel0/voxel-pathlab/internal/solver"
	"github.com/annel0/voxel-pathlab/internal/vec"
)

var (
	// ErrUnknownScenario - ключ сценария не зарегистрирован; мир не изменён
	ErrUnknownScenario = errors.New("неизвестный сценарий")
	// ErrNoScenario - сценарий ещё не загружен
	ErrNoScenario = errors.New("сценарий не загружен")
	// ErrStopped - цикл сессии остановлен
	ErrStopped = errors.New("сессия остановлена")
)

// Status - итог запроса пути для оператора
type Status string

const (
	StatusPathFound   Status = "path_found"
	StatusNoPath      Status = "no_path"
	StatusSolverError Status = "solver_error"
	StatusFallback    Status = "fallback"
	StatusSuperseded  Status = "superseded"
	// StatusUnavailable используется только при сравнении: решатель недоступен, запасной путь не строится
	StatusUnavailable Status = "unavailable"
)

// Drawn сообщает, рисуется ли для статуса оверлей
func (s Status) Drawn() bool {
	return s == StatusPathFound || s == StatusFallback
}

// Query - запрос пути. Start/Goal по умолчанию берутся из активного сценария.
type Query struct {
	solver.Options
	Start *vec.Vec3 `json:"start,omitempty"`
	Goal  *vec.Vec3 `json:"goal,omitempty"`
}

// Report - результат обработки запроса пути
type Report struct {
	RunID     string        `json:"runId"`
	Seq       uint64        `json:"seq"`
	Scenario  string        `json:"scenario"`
	Algorithm string        `json:"algorithm"`
	Start     vec.Vec3      `json:"start"`
	Goal      vec.Vec3      `json:"goal"`
	Status    Status        `json:"status"`
	Message   string        `json:"message"`
	Result    route.Result  `json:"result"`
	Stats     solver.Stats  `json:"stats"`
	Options   string        `json:"options"`
	Marked    int           `json:"marked"`
	Elapsed   time.Duration `json:"elapsedNs"`
}

// State - снимок состояния сессии
type State struct {
	Scenario  string    `json:"scenario"`
	Start     vec.Vec3  `json:"start"`
	Goal      vec.Vec3  `json:"goal"`
	InFlight  bool      `json:"inFlight"`
	Seq       uint64    `json:"seq"`
	Blocks    int       `json:"blocks"`
	Markers   int       `json:"markers"`
	LastRun   *Report   `json:"lastRun,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// CompareQuery - один и тот же запрос для нескольких алгоритмов
type CompareQuery struct {
	Query
	Algorithms []string `json:"algorithms"`
}

// CompareEntry - итог одного алгоритма при сравнении
type CompareEntry struct {
	Algorithm string        `json:"algorithm"`
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Stats     solver.Stats  `json:"stats"`
	Elapsed   time.Duration `json:"elapsedNs"`
}

// Comparison - результат сравнения алгоритмов; мир при этом не меняется
type Comparison struct {
	Scenario string         `json:"scenario"`
	Start    vec.Vec3       `json:"start"`
	Goal     vec.Vec3       `json:"goal"`
	Results  []CompareEntry `json:"results"`
}

// DefaultCompareAlgorithms - набор для сравнения по умолчанию
var DefaultCompareAlgorithms = []string{"astar", "dijkstra", "bfs"}

// Полезные нагрузки событий шины
type scenarioLoadedPayload struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Start  vec.Vec3 `json:"start"`
	Goal   vec.Vec3 `json:"goal"`
	Blocks int      `json:"blocks"`
}

type pathRequestedPayload struct {
	Seq       uint64   `json:"seq"`
	Scenario  string   `json:"scenario"`
	Algorithm string   `json:"algorithm"`
	Start     vec.Vec3 `json:"start"`
	Goal      vec.Vec3 `json:"goal"`
	Options   string   `json:"options"`
}

type worldResetPayload struct {
	Scenario string `json:"scenario"`
	Cleared  int    `json:"cleared"`
}
