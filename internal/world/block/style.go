package block

import "fmt"

// Style описывает внешний вид меша блока.
// Это чисто презентационные данные, на физику они не влияют.
type Style struct {
	Color             uint32  `json:"color"`
	Opacity           float64 `json:"opacity"`
	Transparent       bool    `json:"transparent,omitempty"`
	Wireframe         bool    `json:"wireframe,omitempty"`
	Emissive          uint32  `json:"emissive,omitempty"`
	EmissiveIntensity float64 `json:"emissiveIntensity,omitempty"`
}

// StyleOf возвращает стиль типа; для неизвестных типов - белый непрозрачный
func StyleOf(id BlockID) Style {
	if def, ok := registry[id]; ok {
		return def.Style
	}
	return Style{Color: 0xffffff, Opacity: 1}
}

// HexColor возвращает цвет в виде "#rrggbb"
func (s Style) HexColor() string {
	return fmt.Sprintf("#%06x", s.Color&0xffffff)
}
