package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	cat, err := NewCatalog(DefaultCatalog())
	require.NoError(t, err)

	p, ok := cat.Product("plisse_premium")
	require.True(t, ok)
	assert.True(t, p.ARReady)
	assert.True(t, p.SupportsMaterial("fabric_eco"))
	assert.False(t, p.SupportsMaterial("wood"))
	assert.True(t, p.SuitsRoom("bedroom"))

	label, ok := cat.Label(StepWindowType, "mansard")
	require.True(t, ok)
	assert.Equal(t, "Мансардные окна", label)

	_, ok = cat.Label(StepMaterial, "unobtainium")
	assert.False(t, ok)
}

func TestCatalogValidateRejectsBrokenReferences(t *testing.T) {
	c := DefaultCatalog()
	c.Products = append(c.Products, Product{
		ID:                  "broken",
		Name:                "Broken",
		BasePrice:           -1,
		CompatibleMaterials: []string{"unknown_material"},
		CompatibleRooms:     []string{"garage"},
	})
	c.Materials = append(c.Materials, Material{ID: "wood", Name: "Дубликат"})
	c.Recommendations["garage_standard"] = []string{"broken"}

	err := c.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "negative price")
	assert.Contains(t, msg, `unknown material "unknown_material"`)
	assert.Contains(t, msg, `unknown room type "garage"`)
	assert.Contains(t, msg, "material wood: duplicate id")
	assert.Contains(t, msg, `recommendation "garage_standard"`)
}

func TestCatalogRecommendedAllowsUnknownProducts(t *testing.T) {
	cat := MustDefaultCatalog()

	assert.Equal(t, []string{"plisse_premium", "rolshtory_classic"}, cat.Recommended("bedroom", "standard"))
	assert.Equal(t, []string{"rolshtory_premium", "plisse_eco"}, cat.Recommended("living_room", "standard"))
	assert.Empty(t, cat.Recommended("bedroom", "arched"))
	assert.Empty(t, cat.Recommended("", "standard"))
}

func TestSelectionJSON(t *testing.T) {
	sel := Selection{StepRoomType: "bedroom", StepProduct: "plisse_premium"}
	raw, err := json.Marshal(sel)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"bedroom","3":"plisse_premium"}`, string(raw))

	var back Selection
	require.NoError(t, json.Unmarshal([]byte(`{"1":"kitchen","9":"ignored","x":"ignored","4":""}`), &back))
	assert.Equal(t, Selection{StepRoomType: "kitchen"}, back)
}

func TestShareToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := GenerateShareToken()
		require.NoError(t, err)
		require.True(t, ValidShareToken(tok), tok)
		seen[tok] = true
	}
	assert.Len(t, seen, 50)
	assert.False(t, ValidShareToken("short"))
	assert.False(t, ValidShareToken("abc-def_ghij"))
}
