package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngredients(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"comma space separated", "egg, flour, milk", []string{"egg", "flour", "milk"}},
		{"no spaces", "egg,flour", []string{"egg", "flour"}},
		{"case and padding", "  Egg ,MILK  ", []string{"egg", "milk"}},
		{"duplicates and empties", "egg, , egg,,milk", []string{"egg", "milk"}},
		{"empty", "", []string{}},
		{"only separators", " , ,", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIngredients(tt.input))
		})
	}
}

func TestRecipe_IngredientList(t *testing.T) {
	r := Recipe{Ingredients: "Olive Oil, garlic"}
	assert.Equal(t, []string{"olive oil", "garlic"}, r.IngredientList())
}

func TestRecord_UnmarshalJSONDefaultsAvailable(t *testing.T) {
	var recs []Record
	require.NoError(t, json.Unmarshal([]byte(`[
		{"recipe_id": 1, "title": "Pancakes", "ingredients": "egg, milk"},
		{"recipe_id": 2, "title": "Stew", "ingredients": "beef", "available": false},
		{"recipe_id": 3, "title": "Soup", "ingredients": "water", "available": true}
	]`), &recs))

	require.Len(t, recs, 3)
	assert.True(t, recs[0].Available)
	assert.Equal(t, "Pancakes", recs[0].Title)
	assert.Equal(t, int64(1), recs[0].ID)
	assert.False(t, recs[1].Available)
	assert.True(t, recs[2].Available)
}
