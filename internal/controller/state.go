package controller

import (
	"github.com/google/uuid"

	"github.com/n1rna/recipe-cli/internal/recipe"
)

// Severity of a notification
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// RecipeID returns the ID of the recipe being viewed
func (c *Controller) RecipeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recipeID
}

// IsLoading reports whether a fetch is in flight, initial or refetch
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Saving reports whether a save is in flight
func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// Err returns the last fetch error, cleared by the next successful fetch
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchErr
}

// Buffer returns a copy of the edit buffer, nil before the first fetch
func (c *Controller) Buffer() *recipe.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.Clone()
}

// Canonical returns a copy of the last fetched recipe
func (c *Controller) Canonical() *recipe.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canonical.Clone()
}

// ImageURL returns the buffer's image when set
func (c *Controller) ImageURL() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buffer == nil || c.buffer.Image == nil || *c.buffer.Image == "" {
		return "", false
	}
	return *c.buffer.Image, true
}

// IsPublished reports whether the buffered recipe is published
func (c *Controller) IsPublished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.IsPublished()
}

// Staged returns the staged image, if any
func (c *Controller) Staged() (StagedFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staged == nil {
		return StagedFile{}, false
	}
	return *c.staged, true
}

// Field editors. Each is a no-op until a recipe has been loaded.

// SetName sets the title
func (c *Controller) SetName(name string) {
	c.edit(func(r *recipe.Recipe) { r.Name = name })
}

// SetDescription sets the description
func (c *Controller) SetDescription(description string) {
	c.edit(func(r *recipe.Recipe) { r.Description = recipe.StringPtr(description) })
}

// SetTime sets the preparation time
func (c *Controller) SetTime(time string) {
	c.edit(func(r *recipe.Recipe) { r.Time = recipe.StringPtr(time) })
}

// SetServings sets the servings
func (c *Controller) SetServings(servings string) {
	c.edit(func(r *recipe.Recipe) { r.Servings = recipe.StringPtr(servings) })
}

// SetMethod sets the method
func (c *Controller) SetMethod(method string) {
	c.edit(func(r *recipe.Recipe) { r.Method = recipe.StringPtr(method) })
}

// SetDifficulty selects a difficulty, updating both the reference and the
// embedded value shown by the views
func (c *Controller) SetDifficulty(d recipe.Difficulty) {
	c.edit(func(r *recipe.Recipe) {
		r.DifficultyID = recipe.StringPtr(d.ID)
		r.Difficulty = &d
	})
}

// AddIngredient appends an ingredient under a new key and returns the key
func (c *Controller) AddIngredient(ing recipe.Ingredient) string {
	key := uuid.NewString()
	c.PutIngredient(key, ing)
	return key
}

// PutIngredient creates or replaces the ingredient stored under key
func (c *Controller) PutIngredient(key string, ing recipe.Ingredient) {
	c.edit(func(r *recipe.Recipe) {
		if r.Ingredients == nil {
			r.Ingredients = recipe.Ingredients{}
		}
		r.Ingredients[key] = ing
	})
}

// RemoveIngredient deletes the ingredient stored under key
func (c *Controller) RemoveIngredient(key string) {
	c.edit(func(r *recipe.Recipe) { delete(r.Ingredients, key) })
}

func (c *Controller) edit(fn func(r *recipe.Recipe)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buffer == nil {
		return
	}
	fn(c.buffer)
}
