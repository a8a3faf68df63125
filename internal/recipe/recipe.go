// Package recipe defines the recipe entity shared by the API client, the controller and the UI
package recipe

import (
	"time"
)

// Status represents the publication state of a recipe
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

// Ingredient is a single ingredient line, amount is free text (e.g. "2 tbsp")
type Ingredient struct {
	Name   string `json:"name" yaml:"name"`
	Amount string `json:"amount" yaml:"amount"`
}

// Ingredients maps an opaque key to an ingredient. Order is not significant.
type Ingredients map[string]Ingredient

// Difficulty is a difficulty classification a recipe can reference
type Difficulty struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	CreatedByID *string `json:"createdById" yaml:"createdById"`
	Index       int     `json:"index" yaml:"index"`
}

// User is the author of a recipe, used for display only
type User struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Recipe represents a recipe as held by the store
type Recipe struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Description  *string     `json:"description" yaml:"description,omitempty"`
	Ingredients  Ingredients `json:"ingredients" yaml:"ingredients"`
	DifficultyID *string     `json:"difficultyId" yaml:"difficultyId,omitempty"`
	Difficulty   *Difficulty `json:"difficulty" yaml:"difficulty"`
	Time         *string     `json:"time" yaml:"time,omitempty"`
	Servings     *string     `json:"servings" yaml:"servings,omitempty"`
	Method       *string     `json:"method" yaml:"method,omitempty"`
	Status       Status      `json:"status" yaml:"status"`
	Image        *string     `json:"image" yaml:"image,omitempty"`
	CreatedAt    time.Time   `json:"createdAt" yaml:"createdAt"`
	CreatedBy    User        `json:"createdBy" yaml:"createdBy"`
}

// IsPublished reports whether the recipe has been published
func (r *Recipe) IsPublished() bool {
	return r != nil && r.Status == StatusPublished
}

// Clone returns a deep copy of the recipe
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}

	c := *r
	c.Description = cloneString(r.Description)
	c.DifficultyID = cloneString(r.DifficultyID)
	c.Time = cloneString(r.Time)
	c.Servings = cloneString(r.Servings)
	c.Method = cloneString(r.Method)
	c.Image = cloneString(r.Image)

	if r.Ingredients != nil {
		c.Ingredients = r.Ingredients.clone()
	}

	if r.Difficulty != nil {
		d := *r.Difficulty
		d.CreatedByID = cloneString(r.Difficulty.CreatedByID)
		c.Difficulty = &d
	}

	return &c
}

// UpdateInput is the payload of a recipe update call
type UpdateInput struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Ingredients  any    `json:"ingredients"`
	Time         string `json:"time"`
	DifficultyID string `json:"difficultyId"`
	Servings     string `json:"servings"`
	Method       string `json:"method"`
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// Value dereferences s, returning "" for nil
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
