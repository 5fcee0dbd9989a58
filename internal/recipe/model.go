package recipe

import (
	"encoding/json"
	"strings"
)

// IngredientSeparator joins the ingredient names stored in a recipe row.
const IngredientSeparator = ", "

// Recipe is an available recipe merged with its image from the Recipes table.
type Recipe struct {
	ID          int64  `json:"recipe_id" db:"recipe_id"`
	Title       string `json:"title" db:"title"`
	Ingredients string `json:"ingredients" db:"ingredients"`
	DietaryInfo string `json:"dietary_info" db:"dietary_info"`
	Cuisine     string `json:"cuisine" db:"cuisine"`
	Image       string `json:"image" db:"image"`
}

// IngredientList returns the recipe's ingredients in normalized form.
func (r *Recipe) IngredientList() []string {
	return ParseIngredients(r.Ingredients)
}

// Record is a full row of the Recipes table, used when seeding the store.
type Record struct {
	Recipe
	Available bool `json:"available" db:"available"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Record. A
// record without an "available" key is available, as in the table default.
func (r *Record) UnmarshalJSON(data []byte) error {
	type Alias Record // Create an alias to avoid infinite recursion
	aux := Alias{Available: true}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Record(aux)
	return nil
}

// Stat holds the levels kept in the RecipeStat table.
type Stat struct {
	RecipeID         int64  `json:"recipe_id" db:"recipe_id"`
	IngredientLevel  string `json:"ingredient_level" db:"ingredient_level"`
	DietaryInfoLevel string `json:"dietary_info_level" db:"dietary_info_level"`
}

// Recommendation is a recipe returned for a query, with its distance to the
// query and its stat levels.
type Recommendation struct {
	Recipe
	Distance         float64 `json:"distance"`
	IngredientLevel  string  `json:"ingredient_level"`
	DietaryInfoLevel string  `json:"dietary_info_level"`
}

// ParseIngredients splits a comma-separated ingredient list. Names are
// trimmed and lower-cased; empty names and repeats are dropped.
func ParseIngredients(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		name := strings.ToLower(strings.TrimSpace(p))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
