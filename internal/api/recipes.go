// Package api provides recipe-related procedure calls
package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/patrickmn/go-cache"

	"github.com/n1rna/recipe-cli/internal/recipe"
)

// Procedure names exposed by the recipe router
const (
	ProcGetRecipe    = "recipe.getById"
	ProcUpdateRecipe = "recipe.update"
	ProcDeleteRecipe = "recipe.delete"

	ProcListDifficulties = "difficulty.getAll"
)

// RecipeIDInput is the input of getById and delete
type RecipeIDInput struct {
	RecipeID string `json:"recipeId"`
}

// GetRecipe retrieves a recipe by ID. Failed attempts are retried according
// to the client's retry budget, except for authorization failures.
func (c *Client) GetRecipe(ctx context.Context, recipeID string) (*recipe.Recipe, error) {
	if cached, ok := c.cachedRecipe(recipeID); ok {
		return cached, nil
	}

	var (
		data []byte
		err  error
	)
	for attempt := 0; attempt <= c.retries; attempt++ {
		data, err = c.query(ctx, ProcGetRecipe, RecipeIDInput{RecipeID: recipeID})
		if err == nil || errors.Is(err, ErrUnauthorized) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	r, err := decodeRecipe(data)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(recipeID, r.Clone(), cache.DefaultExpiration)
	}
	return r, nil
}

// UpdateRecipe submits a full recipe update and returns the stored recipe
func (c *Client) UpdateRecipe(ctx context.Context, in recipe.UpdateInput) (*recipe.Recipe, error) {
	data, err := c.mutate(ctx, ProcUpdateRecipe, in)
	c.invalidate(in.ID)
	if err != nil {
		return nil, err
	}

	return decodeRecipe(data)
}

// DeleteRecipe deletes a recipe by ID
func (c *Client) DeleteRecipe(ctx context.Context, recipeID string) error {
	_, err := c.mutate(ctx, ProcDeleteRecipe, RecipeIDInput{RecipeID: recipeID})
	c.invalidate(recipeID)
	return err
}

// ListDifficulties retrieves the difficulty classifications a recipe can use
func (c *Client) ListDifficulties(ctx context.Context) ([]recipe.Difficulty, error) {
	data, err := c.query(ctx, ProcListDifficulties, struct{}{})
	if err != nil {
		return nil, err
	}

	var out []recipe.Difficulty
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &DecodeError{Field: "difficulties", Err: err}
	}
	return out, nil
}

func (c *Client) cachedRecipe(recipeID string) (*recipe.Recipe, bool) {
	if c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(recipeID)
	if !ok {
		return nil, false
	}
	return v.(*recipe.Recipe).Clone(), true
}

func (c *Client) invalidate(recipeID string) {
	if c.cache != nil {
		c.cache.Delete(recipeID)
	}
}
