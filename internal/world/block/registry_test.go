package block

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayers(t *testing.T) {
	terrain := []BlockID{AirBlockID, StoneBlockID, GrassBlockID, WaterBlockID, SandBlockID, WoodBlockID, LavaBlockID, IceBlockID}
	for _, id := range terrain {
		assert.Equal(t, LayerTerrain, id.Layer(), "тип %s должен быть рельефом", id)
		assert.False(t, id.IsOverlay())
	}

	assert.Equal(t, LayerStamp, StartBlockID.Layer())
	assert.Equal(t, LayerStamp, GoalBlockID.Layer())
	for _, id := range []BlockID{PathBlockID, BreakBlockID, PlaceBlockID} {
		assert.Equal(t, LayerMarker, id.Layer())
		assert.True(t, id.IsOverlay())
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, def := range All() {
		id, err := Parse(def.Name)
		require.NoError(t, err)
		assert.Equal(t, def.ID, id)
	}

	_, err := Parse("obsidian")
	assert.Error(t, err)
}

func TestStyles(t *testing.T) {
	assert.Equal(t, "#888888", StyleOf(StoneBlockID).HexColor())
	assert.True(t, StyleOf(WaterBlockID).Transparent)
	assert.True(t, StyleOf(BreakBlockID).Wireframe)
	assert.Equal(t, uint32(0xff0000), StyleOf(LavaBlockID).Emissive)
	// Неизвестный тип рисуется белым
	assert.Equal(t, uint32(0xffffff), StyleOf(BlockID(250)).Color)
}

func TestBlockIDJSON(t *testing.T) {
	data, err := json.Marshal(map[string]BlockID{"t": LavaBlockID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"lava"}`, string(data))

	var decoded map[string]BlockID
	require.NoError(t, json.Unmarshal([]byte(`{"t":"ice"}`), &decoded))
	assert.Equal(t, IceBlockID, decoded["t"])
}
