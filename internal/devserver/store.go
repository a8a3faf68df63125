package devserver

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/n1rna/recipe-cli/internal/recipe"
)

// storedRecipe keeps ingredients as raw JSON so whatever a client saved is
// returned unchanged, like a JSON column would
type storedRecipe struct {
	recipe.Recipe
	RawIngredients json.RawMessage
}

func (s storedRecipe) MarshalJSON() ([]byte, error) {
	type plain recipe.Recipe
	return json.Marshal(struct {
		plain
		Ingredients json.RawMessage `json:"ingredients"`
	}{plain(s.Recipe), s.RawIngredients})
}

// memoryStore is the dev server's recipe table
type memoryStore struct {
	mu           sync.RWMutex
	recipes      map[string]*storedRecipe
	difficulties map[string]recipe.Difficulty
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		recipes:      make(map[string]*storedRecipe),
		difficulties: make(map[string]recipe.Difficulty),
	}
}

func (m *memoryStore) get(id string) (storedRecipe, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recipes[id]
	if !ok {
		return storedRecipe{}, false
	}
	return storedRecipe{Recipe: *r.Recipe.Clone(), RawIngredients: append(json.RawMessage(nil), r.RawIngredients...)}, true
}

func (m *memoryStore) put(r *recipe.Recipe) error {
	var raw json.RawMessage
	if r.Ingredients != nil {
		encoded, err := json.Marshal(r.Ingredients)
		if err != nil {
			return err
		}
		raw = encoded
	}
	m.putRaw(r, raw)
	return nil
}

func (m *memoryStore) putRaw(r *recipe.Recipe, rawIngredients json.RawMessage) {
	c := r.Clone()
	c.Ingredients = nil

	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes[c.ID] = &storedRecipe{Recipe: *c, RawIngredients: rawIngredients}
}

// update applies fn to the stored recipe and returns the result
func (m *memoryStore) update(id string, fn func(r *storedRecipe)) (storedRecipe, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok {
		return storedRecipe{}, false
	}
	fn(r)
	return storedRecipe{Recipe: *r.Recipe.Clone(), RawIngredients: append(json.RawMessage(nil), r.RawIngredients...)}, true
}

func (m *memoryStore) delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[id]; !ok {
		return false
	}
	delete(m.recipes, id)
	return true
}

func (m *memoryStore) putDifficulty(d recipe.Difficulty) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.difficulties[d.ID] = d
}

func (m *memoryStore) difficulty(id string) (recipe.Difficulty, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.difficulties[id]
	return d, ok
}

// listDifficulties returns difficulties ordered by index
func (m *memoryStore) listDifficulties() []recipe.Difficulty {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]recipe.Difficulty, 0, len(m.difficulties))
	for _, d := range m.difficulties {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// SampleRecipeID is the ID of the recipe created by Seed
const SampleRecipeID = "sample"

// seed fills the store with difficulties and a sample draft
func (m *memoryStore) seed() error {
	names := []string{"Easy", "Medium", "Hard"}
	var medium recipe.Difficulty
	for i, name := range names {
		d := recipe.Difficulty{ID: uuid.NewString(), Name: name, Index: i}
		m.putDifficulty(d)
		if name == "Medium" {
			medium = d
		}
	}

	ingredients := recipe.Ingredients{}
	for _, ing := range []recipe.Ingredient{
		{Name: "Olive oil", Amount: "2 tbsp"},
		{Name: "Chicken thighs", Amount: "1 lb"},
		{Name: "Shrimp", Amount: "1 lb"},
		{Name: "Chorizo", Amount: "1/2 lb"},
		{Name: "Smoked paprika", Amount: "1 tsp"},
		{Name: "Bay leaves", Amount: "2"},
		{Name: "Garlic", Amount: "4 cloves"},
		{Name: "Canned tomatoes", Amount: "1 can"},
		{Name: "Onion", Amount: "1"},
		{Name: "Saffron", Amount: "a pinch"},
		{Name: "Chicken broth", Amount: "5 cups"},
		{Name: "Rice", Amount: "2 cups"},
	} {
		ingredients[uuid.NewString()] = ing
	}

	return m.put(&recipe.Recipe{
		ID:           SampleRecipeID,
		Name:         "(Sample) Shrimp and Chorizo Paella",
		Description:  recipe.StringPtr("This impressive paella is a perfect party dish and a fun meal to cook together with your guests."),
		Ingredients:  ingredients,
		DifficultyID: recipe.StringPtr(medium.ID),
		Difficulty:   &medium,
		Time:         recipe.StringPtr("30 minutes"),
		Servings:     recipe.StringPtr("4"),
		Method: recipe.StringPtr("Heat 1/2 cup of the broth in a pot until simmering, add saffron and set aside for 10 minutes.\n\n" +
			"Heat oil in a large paella pan over medium-high heat. Brown the chicken, shrimp and chorizo, 6 to 8 minutes. " +
			"Add paprika, bay leaves, garlic, tomatoes and onion and cook until thickened. Add the broths and bring to a boil.\n\n" +
			"Stir in the rice, then cook without stirring until most of the liquid is absorbed, 15 to 18 minutes.\n\n" +
			"Remove from heat and let rest 10 minutes before serving."),
		Status:    recipe.StatusDraft,
		CreatedAt: time.Date(2016, time.September, 14, 3, 0, 0, 0, time.UTC),
		CreatedBy: recipe.User{ID: uuid.NewString(), Name: "Chef John"},
	})
}
