package solver

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/annel0/voxel-pathlab/internal/route"
	"github.com/annel0/voxel-pathlab/internal/vec"
)

// OutcomeKind классифицирует разобранный ответ решателя
type OutcomeKind int

const (
	Found OutcomeKind = iota
	NoPath
	SolverError
)

func (k OutcomeKind) String() string {
	switch k {
	case Found:
		return "found"
	case NoPath:
		return "no_path"
	case SolverError:
		return "solver_error"
	default:
		return "unknown"
	}
}

// MarshalText кодирует вид исхода строкой
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText разбирает вид исхода
func (k *OutcomeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "found":
		*k = Found
	case "no_path":
		*k = NoPath
	case "solver_error":
		*k = SolverError
	default:
		return fmt.Errorf("unknown outcome kind %q", text)
	}
	return nil
}

// Stats - статистика решателя. Отсутствующие поля равны нулю.
type Stats struct {
	PathLength      int     `json:"pathLength"`
	ComputationTime float64 `json:"computationTime"` // мс
	NodesExplored   int     `json:"nodesExplored"`
	BlocksTraversed int     `json:"blocksTraversed"`
	BlocksBroken    int     `json:"blocksBroken"`
	BlocksPlaced    int     `json:"blocksPlaced"`
	WaterCrossed    int     `json:"waterCrossed"`
	VerticalChange  int     `json:"verticalChange"`
	EstimatedTime   float64 `json:"estimatedTime"` // с
	TotalCost       float64 `json:"totalCost"`
}

// Outcome - нормализованный ответ решателя
type Outcome struct {
	Kind   OutcomeKind  `json:"kind"`
	Result route.Result `json:"result"`
	Stats  Stats        `json:"stats"`
	Error  string       `json:"error,omitempty"`
}

// wirePoint принимает оба регистра осей: {X,Y,Z} и {x,y,z}.
// Верхний регистр имеет приоритет. Наружу пакета не выходит.
type wirePoint struct {
	UX *int `json:"X"`
	UY *int `json:"Y"`
	UZ *int `json:"Z"`
	LX *int `json:"x"`
	LY *int `json:"y"`
	LZ *int `json:"z"`
}

func pick(upper, lower *int) int {
	if upper != nil {
		return *upper
	}
	if lower != nil {
		return *lower
	}
	return 0
}

func (p wirePoint) vec() vec.Vec3 {
	return vec.New(pick(p.UX, p.LX), pick(p.UY, p.LY), pick(p.UZ, p.LZ))
}

type wireResponse struct {
	Path         []wirePoint `json:"path"`
	BlocksBroken []wirePoint `json:"blocksBroken"`
	BlocksPlaced []wirePoint `json:"blocksPlaced"`

	ComputationTime *float64 `json:"computationTime"`
	NodesExplored   *float64 `json:"nodesExplored"`
	BlocksTraversed *float64 `json:"blocksTraversed"`
	WaterCrossed    *float64 `json:"waterCrossed"`
	VerticalChange  *float64 `json:"verticalChange"`
	EstimatedTime   *float64 `json:"estimatedTime"`
	TotalCost       *float64 `json:"totalCost"`
}

//go:embed response_schema.json
var responseSchemaJSON string

var responseSchema = jsonschema.MustCompileString("solver_response.schema.json", responseSchemaJSON)

func toVecs(points []wirePoint) []vec.Vec3 {
	out := make([]vec.Vec3, 0, len(points))
	for _, p := range points {
		out = append(out, p.vec())
	}
	return out
}

func num(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Normalize разбирает тело ответа решателя.
// Тело, не являющееся JSON или не проходящее схему, даёт ErrMalformedResponse.
// Непустое поле error прерывает нормализацию; пустой или отсутствующий path - NoPath.
func Normalize(body []byte) (Outcome, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	// Поле error проверяется до схемы: остальные поля такого ответа не важны
	var lenient struct {
		Error *string `json:"error"`
	}
	if json.Unmarshal(body, &lenient) == nil && lenient.Error != nil && *lenient.Error != "" {
		return Outcome{Kind: SolverError, Error: *lenient.Error}, nil
	}

	if err := responseSchema.Validate(doc); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	res := route.Result{
		Path:  toVecs(wire.Path),
		Break: toVecs(wire.BlocksBroken),
		Place: toVecs(wire.BlocksPlaced),
	}
	stats := Stats{
		PathLength:      len(res.Path),
		ComputationTime: num(wire.ComputationTime),
		NodesExplored:   int(num(wire.NodesExplored)),
		BlocksTraversed: int(num(wire.BlocksTraversed)),
		BlocksBroken:    len(res.Break),
		BlocksPlaced:    len(res.Place),
		WaterCrossed:    int(num(wire.WaterCrossed)),
		VerticalChange:  int(num(wire.VerticalChange)),
		EstimatedTime:   num(wire.EstimatedTime),
		TotalCost:       num(wire.TotalCost),
	}

	if len(res.Path) == 0 {
		return Outcome{Kind: NoPath, Stats: stats}, nil
	}
	return Outcome{Kind: Found, Result: res, Stats: stats}, nil
}
