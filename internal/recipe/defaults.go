package recipe

// EmptyDifficulty returns the placeholder used when a recipe has no difficulty
func EmptyDifficulty() *Difficulty {
	return &Difficulty{ID: "", Name: "", CreatedByID: nil, Index: 0}
}

// Normalize applies the fetch defaults to a recipe returned by the store.
// Missing ingredients become an empty map and a missing difficulty becomes
// EmptyDifficulty. The input is not modified.
func Normalize(r *Recipe) *Recipe {
	if r == nil {
		return nil
	}

	n := r.Clone()
	if n.Ingredients == nil {
		n.Ingredients = Ingredients{}
	}
	if n.Difficulty == nil {
		n.Difficulty = EmptyDifficulty()
	}
	return n
}

// SaveIngredientsDefault is what gets submitted when a recipe has no ingredients
// at all. It intentionally differs from the empty map used by Normalize.
func SaveIngredientsDefault() map[string][]Ingredient {
	return map[string][]Ingredient{"ingredient": {}}
}

// SaveDefaults builds the update payload for r, filling unset optional
// fields with their save defaults
func SaveDefaults(r *Recipe) UpdateInput {
	var ingredients any = SaveIngredientsDefault()
	if r.Ingredients != nil {
		ingredients = map[string]Ingredient(r.Ingredients.clone())
	}

	return UpdateInput{
		ID:           r.ID,
		Name:         r.Name,
		Description:  Value(r.Description),
		Ingredients:  ingredients,
		Time:         Value(r.Time),
		DifficultyID: Value(r.DifficultyID),
		Servings:     Value(r.Servings),
		Method:       Value(r.Method),
	}
}

func (in Ingredients) clone() Ingredients {
	out := make(Ingredients, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
