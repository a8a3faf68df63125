// Package api contains the wire models and the validating decode step
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/n1rna/recipe-cli/internal/recipe"
)

// APITime handles timestamp parsing from the API
type APITime time.Time

// UnmarshalJSON implements json.Unmarshaler for APITime
func (t *APITime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Try different timestamp formats that the API might return
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if parsed, err := time.Parse(format, s); err == nil {
			*t = APITime(parsed)
			return nil
		}
	}

	return fmt.Errorf("unrecognized timestamp %q", s)
}

// Time converts APITime to time.Time
func (t APITime) Time() time.Time {
	return time.Time(t)
}

// wireRecipe mirrors the server's recipe JSON. Fields whose shape is not
// guaranteed by the server are kept raw until decodeRecipe checks them.
type wireRecipe struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  *string            `json:"description"`
	Ingredients  json.RawMessage    `json:"ingredients"`
	DifficultyID *string            `json:"difficultyId"`
	Difficulty   *recipe.Difficulty `json:"difficulty"`
	Time         *string            `json:"time"`
	Servings     *string            `json:"servings"`
	Method       *string            `json:"method"`
	Status       recipe.Status      `json:"status"`
	Image        *string            `json:"image"`
	CreatedAt    APITime            `json:"createdAt"`
	CreatedBy    *recipe.User       `json:"createdBy"`
}

// decodeRecipe turns a procedure result into a typed recipe. Ingredients that
// are not a JSON object (null, string, number, array) decode to nil. Inside the
// object, entries that are not objects are dropped (the save default
// {"ingredient": []} comes back this way) and object entries that do not
// decode as an ingredient are an error.
func decodeRecipe(data json.RawMessage) (*recipe.Recipe, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, &DecodeError{Field: "recipe", Err: fmt.Errorf("empty result")}
	}

	var w wireRecipe
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &DecodeError{Field: "recipe", Err: err}
	}
	if w.ID == "" {
		return nil, &DecodeError{Field: "id", Err: fmt.Errorf("missing")}
	}

	ingredients, err := decodeIngredients(w.Ingredients)
	if err != nil {
		return nil, err
	}

	switch w.Status {
	case recipe.StatusDraft, recipe.StatusPublished:
	case "":
		w.Status = recipe.StatusDraft
	default:
		return nil, &DecodeError{Field: "status", Err: fmt.Errorf("unknown status %q", w.Status)}
	}

	r := &recipe.Recipe{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		Ingredients:  ingredients,
		DifficultyID: w.DifficultyID,
		Difficulty:   w.Difficulty,
		Time:         w.Time,
		Servings:     w.Servings,
		Method:       w.Method,
		Status:       w.Status,
		Image:        w.Image,
		CreatedAt:    w.CreatedAt.Time(),
	}
	if w.CreatedBy != nil {
		r.CreatedBy = *w.CreatedBy
	}

	return r, nil
}

func decodeIngredients(raw json.RawMessage) (recipe.Ingredients, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &DecodeError{Field: "ingredients", Err: err}
	}

	out := make(recipe.Ingredients, len(entries))
	for key, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			continue
		}
		// an object entry with wrong field types fails the whole decode
		var ing recipe.Ingredient
		if err := json.Unmarshal(entry, &ing); err != nil {
			return nil, &DecodeError{Field: "ingredients." + key, Err: err}
		}
		out[key] = ing
	}

	return out, nil
}
