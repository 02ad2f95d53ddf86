package block

import (
	"fmt"
	"sort"
)

// BlockID представляет идентификатор типа блока
type BlockID uint8

// Константы ID блоков
const (
	// Типы рельефа
	AirBlockID   BlockID = iota // 0
	StoneBlockID                // 1
	GrassBlockID                // 2
	WaterBlockID                // 3
	SandBlockID                 // 4
	WoodBlockID                 // 5
	LavaBlockID                 // 6
	IceBlockID                  // 7

	// Маркеры оверлея (начиная с 100)
	StartBlockID BlockID = 100 // Старт сценария
	GoalBlockID  BlockID = 101 // Цель сценария
	PathBlockID  BlockID = 110 // Точка найденного пути
	BreakBlockID BlockID = 111 // Блок, который решатель предлагает сломать
	PlaceBlockID BlockID = 112 // Блок, который решатель предлагает поставить
)

// Layer определяет слой мира, в который пишет тип блока.
// Слои композитируются: верхний присутствующий слой виден.
type Layer uint8

const (
	LayerTerrain Layer = iota // рельеф сценария
	LayerStamp                // старт/цель
	LayerMarker               // path/break/place
)

// Layers перечисляет слои снизу вверх
var Layers = []Layer{LayerTerrain, LayerStamp, LayerMarker}

// String возвращает имя слоя
func (l Layer) String() string {
	switch l {
	case LayerTerrain:
		return "terrain"
	case LayerStamp:
		return "stamp"
	case LayerMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// Def описывает тип блока: имя, слой и визуальный стиль
type Def struct {
	ID    BlockID
	Name  string
	Layer Layer
	Style Style
}

// registry - неизменяемая таблица типов. Заполняется один раз при загрузке пакета.
var registry = map[BlockID]Def{
	AirBlockID:   {ID: AirBlockID, Name: "air", Layer: LayerTerrain},
	StoneBlockID: {ID: StoneBlockID, Name: "stone", Layer: LayerTerrain, Style: Style{Color: 0x888888, Opacity: 1}},
	GrassBlockID: {ID: GrassBlockID, Name: "grass", Layer: LayerTerrain, Style: Style{Color: 0x00aa00, Opacity: 1}},
	WaterBlockID: {ID: WaterBlockID, Name: "water", Layer: LayerTerrain, Style: Style{Color: 0x0000ff, Transparent: true, Opacity: 0.7}},
	SandBlockID:  {ID: SandBlockID, Name: "sand", Layer: LayerTerrain, Style: Style{Color: 0xf2d16b, Opacity: 1}},
	WoodBlockID:  {ID: WoodBlockID, Name: "wood", Layer: LayerTerrain, Style: Style{Color: 0x8b4513, Opacity: 1}},
	LavaBlockID:  {ID: LavaBlockID, Name: "lava", Layer: LayerTerrain, Style: Style{Color: 0xff4500, Opacity: 1, Emissive: 0xff0000, EmissiveIntensity: 0.5}},
	IceBlockID:   {ID: IceBlockID, Name: "ice", Layer: LayerTerrain, Style: Style{Color: 0xadd8e6, Transparent: true, Opacity: 0.8}},

	StartBlockID: {ID: StartBlockID, Name: "start", Layer: LayerStamp, Style: Style{Color: 0x00ff00, Opacity: 1}},
	GoalBlockID:  {ID: GoalBlockID, Name: "goal", Layer: LayerStamp, Style: Style{Color: 0x0000ff, Opacity: 1}},
	PathBlockID:  {ID: PathBlockID, Name: "path", Layer: LayerMarker, Style: Style{Color: 0xff0000, Opacity: 1}},
	BreakBlockID: {ID: BreakBlockID, Name: "break", Layer: LayerMarker, Style: Style{Color: 0xff4500, Wireframe: true, Transparent: true, Opacity: 0.8}},
	PlaceBlockID: {ID: PlaceBlockID, Name: "place", Layer: LayerMarker, Style: Style{Color: 0x4caf50, Wireframe: true, Transparent: true, Opacity: 0.6}},
}

var byName = func() map[string]BlockID {
	m := make(map[string]BlockID, len(registry))
	for id, def := range registry {
		m[def.Name] = id
	}
	return m
}()

// Get возвращает описание для указанного ID
func Get(id BlockID) (Def, bool) {
	def, exists := registry[id]
	return def, exists
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := registry[id]
	return exists
}

// Parse возвращает ID по имени типа ("stone", "path", ...)
func Parse(name string) (BlockID, error) {
	id, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("неизвестный тип блока %q", name)
	}
	return id, nil
}

// All возвращает все описания, отсортированные по ID
func All() []Def {
	defs := make([]Def, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// String возвращает имя типа
func (id BlockID) String() string {
	if def, ok := registry[id]; ok {
		return def.Name
	}
	return fmt.Sprintf("block(%d)", uint8(id))
}

// Layer возвращает слой, в который пишется тип.
// Неизвестные типы считаются рельефом.
func (id BlockID) Layer() Layer {
	if def, ok := registry[id]; ok {
		return def.Layer
	}
	return LayerTerrain
}

// IsOverlay сообщает, является ли тип маркером поверх рельефа
func (id BlockID) IsOverlay() bool {
	return id.Layer() != LayerTerrain
}

// Renderable сообщает, нужен ли блоку рендер-хэндл
func (id BlockID) Renderable() bool {
	return id != AirBlockID
}

// MarshalText кодирует ID как имя типа (для JSON)
func (id BlockID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText разбирает имя типа
func (id *BlockID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
