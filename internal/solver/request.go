package solver

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/annel0/voxel-pathlab/internal/vec"
)

// Options - выбор оператора. Параметры, не относящиеся к алгоритму, игнорируются.
type Options struct {
	Algorithm        string   `json:"algorithm"`
	AllowBreaking    bool     `json:"allowBreaking"`
	AllowPlacing     bool     `json:"allowPlacing"`
	AvoidWater       bool     `json:"avoidWater"`
	MinimiseVertical bool     `json:"minimiseVertical"`
	Heuristic        string   `json:"heuristicType,omitempty"`
	Weight           *float64 `json:"heuristicWeight,omitempty"`
	MaxIterations    *int     `json:"maxIterations,omitempty"`
}

// Request - тело POST /api/find-path решателя.
// Поля эвристики, веса и итераций присутствуют только для алгоритмов, которые их используют.
type Request struct {
	StartX int `json:"startX"`
	StartY int `json:"startY"`
	StartZ int `json:"startZ"`
	EndX   int `json:"endX"`
	EndY   int `json:"endY"`
	EndZ   int `json:"endZ"`

	Algorithm        string `json:"algorithm"`
	AllowBreaking    bool   `json:"allowBreaking"`
	AllowPlacing     bool   `json:"allowPlacing"`
	AvoidWater       bool   `json:"avoidWater"`
	MinimiseVertical bool   `json:"minimiseVertical"`

	HeuristicType         Heuristic `json:"heuristicType,omitempty"`
	HeuristicWeight       *float64  `json:"heuristicWeight,omitempty"`
	MaxIterations         *int      `json:"maxIterations,omitempty"`
	JumpPointOptimisation bool      `json:"jumpPointOptimisation"`
}

// Start возвращает стартовую точку запроса
func (r Request) Start() vec.Vec3 { return vec.New(r.StartX, r.StartY, r.StartZ) }

// Goal возвращает целевую точку запроса
func (r Request) Goal() vec.Vec3 { return vec.New(r.EndX, r.EndY, r.EndZ) }

// requestNamespace - пространство имён для ключей кеша
var requestNamespace = uuid.MustParse("6f1d3c2a-8e1b-4b5e-9a57-1c0f4e2d7b90")

// CacheKey - детерминированный ключ запроса (UUIDv5 от канонического JSON)
func (r Request) CacheKey() string {
	body, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return uuid.NewSHA1(requestNamespace, body).String()
}

// BuildRequest собирает запрос решателю.
// Ошибка возвращается для неизвестного алгоритма и для невалидных параметров,
// которые этот алгоритм действительно использует.
func (t *AlgorithmTable) BuildRequest(start, goal vec.Vec3, opts Options) (Request, error) {
	alg, err := t.Lookup(opts.Algorithm)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		StartX: start.X, StartY: start.Y, StartZ: start.Z,
		EndX: goal.X, EndY: goal.Y, EndZ: goal.Z,
		Algorithm:             alg.ID,
		AllowBreaking:         opts.AllowBreaking,
		AllowPlacing:          opts.AllowPlacing,
		AvoidWater:            opts.AvoidWater,
		MinimiseVertical:      opts.MinimiseVertical,
		JumpPointOptimisation: alg.JumpPoint,
	}

	if alg.UsesHeuristic {
		h, err := ParseHeuristic(opts.Heuristic)
		if err != nil {
			return Request{}, err
		}
		req.HeuristicType = h
	}

	if alg.UsesWeight {
		w := DefaultWeight
		if opts.Weight != nil {
			w = *opts.Weight
		}
		if w <= 0 {
			return Request{}, fmt.Errorf("%w: heuristicWeight должен быть > 0, получено %v", ErrInvalidParameter, w)
		}
		req.HeuristicWeight = &w
	}

	if alg.UsesIterations {
		n := DefaultMaxIterations
		if opts.MaxIterations != nil {
			n = *opts.MaxIterations
		}
		if n <= 0 {
			return Request{}, fmt.Errorf("%w: maxIterations должен быть > 0, получено %d", ErrInvalidParameter, n)
		}
		req.MaxIterations = &n
	}

	return req, nil
}

// OptionsSummary - строка выбранных опций для оператора, "None" если опций нет
func OptionsSummary(req Request) string {
	var parts []string
	if req.AllowBreaking {
		parts = append(parts, "Break blocks")
	}
	if req.AllowPlacing {
		parts = append(parts, "Place blocks")
	}
	if req.AvoidWater {
		parts = append(parts, "Avoid water")
	}
	if req.MinimiseVertical {
		parts = append(parts, "Minimise climbing")
	}
	if req.HeuristicType != "" {
		parts = append(parts, "Heuristic: "+string(req.HeuristicType))
	}
	if req.HeuristicWeight != nil {
		parts = append(parts, "Weight: "+strconv.FormatFloat(*req.HeuristicWeight, 'f', -1, 64))
	}
	if req.MaxIterations != nil {
		parts = append(parts, "Max Iterations: "+strconv.Itoa(*req.MaxIterations))
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}
