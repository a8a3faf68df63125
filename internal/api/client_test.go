package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/n1rna/recipe-cli/internal/api"
	"github.com/n1rna/recipe-cli/internal/devserver"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

const testToken = "secret"

// testBackend is a dev server behind an httptest listener. failFirst makes
// the first n requests answer 500 before reaching the dev server.
type testBackend struct {
	dev      *devserver.Server
	srv      *httptest.Server
	requests atomic.Int32
	failures atomic.Int32
}

func setupBackend(t *testing.T, opts devserver.Options) *testBackend {
	t.Helper()

	if opts.Token == "" {
		opts.Token = testToken
	}
	dev, err := devserver.New(opts)
	if err != nil {
		t.Fatalf("failed to create dev server: %v", err)
	}

	b := &testBackend{dev: dev}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		if b.failures.Load() > 0 {
			b.failures.Add(-1)
			http.Error(w, "temporarily unavailable", http.StatusInternalServerError)
			return
		}
		dev.Handler().ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)

	return b
}

func (b *testBackend) client(opts ...api.Option) *api.Client {
	return api.NewClient(b.srv.URL, testToken, opts...)
}

func sampleRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		ID:          "r1",
		Name:        "Paella",
		Description: recipe.StringPtr("Rice dish"),
		Time:        recipe.StringPtr("30 min"),
		Servings:    recipe.StringPtr("4"),
		Method:      recipe.StringPtr("Cook."),
		Status:      recipe.StatusDraft,
		CreatedAt:   time.Date(2016, 9, 14, 3, 0, 0, 0, time.UTC),
		CreatedBy:   recipe.User{ID: "u1", Name: "Chef John"},
	}
}

func TestGetRecipe(t *testing.T) {
	b := setupBackend(t, devserver.Options{})
	b.dev.PutRaw(sampleRecipe(), `null`)

	got, err := b.client().GetRecipe(context.Background(), "r1")
	if err != nil {
		t.Fatalf("GetRecipe() error = %v", err)
	}

	if diff := cmp.Diff(sampleRecipe(), got); diff != "" {
		t.Errorf("GetRecipe() mismatch (-want +got):\n%s", diff)
	}
	if got.Ingredients != nil {
		t.Errorf("null ingredients should decode to nil, got %v", got.Ingredients)
	}
	if got.Difficulty != nil {
		t.Errorf("null difficulty should decode to nil, got %v", got.Difficulty)
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	b := setupBackend(t, devserver.Options{})

	_, err := b.client(api.WithRetries(0)).GetRecipe(context.Background(), "missing")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, api.ErrUnauthorized) {
		t.Error("not found error should not match ErrUnauthorized")
	}
}

func TestGetRecipeUnauthorizedIsNotRetried(t *testing.T) {
	b := setupBackend(t, devserver.Options{})
	b.dev.PutRaw(sampleRecipe(), `{}`)

	c := api.NewClient(b.srv.URL, "wrong")
	_, err := c.GetRecipe(context.Background(), "r1")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	var rpcErr *api.RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *api.RPCError, got %T", err)
	}
	if rpcErr.Data.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("HTTPStatus = %d, want 401", rpcErr.Data.HTTPStatus)
	}
	if n := b.requests.Load(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestGetRecipeRetriesOnce(t *testing.T) {
	b := setupBackend(t, devserver.Options{})
	b.dev.PutRaw(sampleRecipe(), `{}`)

	b.failures.Store(1)
	got, err := b.client().GetRecipe(context.Background(), "r1")
	if err != nil {
		t.Fatalf("GetRecipe() error = %v", err)
	}
	if got.Name != "Paella" {
		t.Errorf("Name = %q, want Paella", got.Name)
	}
	if n := b.requests.Load(); n != 2 {
		t.Errorf("requests = %d, want 2", n)
	}

	b.requests.Store(0)
	b.failures.Store(5)
	if _, err := b.client().GetRecipe(context.Background(), "r1"); err == nil {
		t.Fatal("expected error after retry budget is spent")
	}
	if n := b.requests.Load(); n != 2 {
		t.Errorf("requests = %d, want 2", n)
	}
}

func TestGetRecipeCache(t *testing.T) {
	b := setupBackend(t, devserver.Options{})
	b.dev.PutRaw(sampleRecipe(), `{}`)
	c := b.client(api.WithCacheTTL(time.Minute))
	ctx := context.Background()

	first, err := c.GetRecipe(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	first.Name = "mutated by caller"

	renamed := sampleRecipe()
	renamed.Name = "Changed elsewhere"
	b.dev.PutRaw(renamed, `{}`)

	cached, err := c.GetRecipe(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if cached.Name != "Paella" {
		t.Errorf("cached Name = %q, want Paella", cached.Name)
	}
	if n := b.requests.Load(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}

	in := recipe.SaveDefaults(cached)
	in.Name = "Saved"
	if _, err := c.UpdateRecipe(ctx, in); err != nil {
		t.Fatal(err)
	}

	fresh, err := c.GetRecipe(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Name != "Saved" {
		t.Errorf("Name after update = %q, want Saved", fresh.Name)
	}
}

func TestUpdateRecipe(t *testing.T) {
	b := setupBackend(t, devserver.Options{Seed: true})
	b.dev.PutRaw(sampleRecipe(), `null`)
	c := b.client()
	ctx := context.Background()

	difficulties, err := c.ListDifficulties(ctx)
	if err != nil {
		t.Fatal(err)
	}

	r, err := c.GetRecipe(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	in := recipe.SaveDefaults(r)
	in.DifficultyID = difficulties[0].ID

	updated, err := c.UpdateRecipe(ctx, in)
	if err != nil {
		t.Fatalf("UpdateRecipe() error = %v", err)
	}

	_, raw, ok := b.dev.Recipe("r1")
	if !ok {
		t.Fatal("recipe missing after update")
	}
	if raw != `{"ingredient":[]}` {
		t.Errorf("stored ingredients = %s, want the save default", raw)
	}
	if diff := cmp.Diff(recipe.Ingredients{}, updated.Ingredients); diff != "" {
		t.Errorf("ingredients mismatch (-want +got):\n%s", diff)
	}
	if updated.Difficulty == nil || updated.Difficulty.Name != difficulties[0].Name {
		t.Errorf("Difficulty = %v, want %s", updated.Difficulty, difficulties[0].Name)
	}
	if recipe.Value(updated.Description) != "Rice dish" {
		t.Errorf("Description = %q, want Rice dish", recipe.Value(updated.Description))
	}
}

func TestUpdateRecipeMissing(t *testing.T) {
	b := setupBackend(t, devserver.Options{})

	_, err := b.client().UpdateRecipe(context.Background(), recipe.UpdateInput{ID: "missing"})
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRecipe(t *testing.T) {
	b := setupBackend(t, devserver.Options{})
	b.dev.PutRaw(sampleRecipe(), `{}`)
	c := b.client(api.WithRetries(0))
	ctx := context.Background()

	if err := c.DeleteRecipe(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRecipe() error = %v", err)
	}
	if _, _, ok := b.dev.Recipe("r1"); ok {
		t.Error("recipe still stored after delete")
	}
	if _, err := c.GetRecipe(ctx, "r1"); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := c.DeleteRecipe(ctx, "r1"); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUploadRecipeImage(t *testing.T) {
	dir := t.TempDir()
	b := setupBackend(t, devserver.Options{UploadDir: dir})
	b.dev.PutRaw(sampleRecipe(), `{}`)
	c := b.client(api.WithCacheTTL(time.Minute))
	ctx := context.Background()

	if _, err := c.GetRecipe(ctx, "r1"); err != nil {
		t.Fatal(err)
	}

	if err := c.UploadRecipeImage(ctx, "r1", "png", strings.NewReader("image bytes")); err != nil {
		t.Fatalf("UploadRecipeImage() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "r1.png"))
	if err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	if string(content) != "image bytes" {
		t.Errorf("uploaded content = %q", content)
	}

	r, err := c.GetRecipe(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if recipe.Value(r.Image) != "r1.png" {
		t.Errorf("Image = %q, want r1.png", recipe.Value(r.Image))
	}
}

func TestUploadRecipeImageFailure(t *testing.T) {
	b := setupBackend(t, devserver.Options{})
	b.dev.PutRaw(sampleRecipe(), `{}`)

	tests := []struct {
		name       string
		client     *api.Client
		recipeID   string
		wantStatus int
		wantText   string
	}{
		{"unknown recipe", b.client(), "missing", http.StatusNotFound, "Not Found"},
		{"bad token", api.NewClient(b.srv.URL, "wrong"), "r1", http.StatusUnauthorized, "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.client.UploadRecipeImage(context.Background(), tt.recipeID, "png", strings.NewReader("x"))
			var upErr *api.UploadError
			if !errors.As(err, &upErr) {
				t.Fatalf("expected *api.UploadError, got %v", err)
			}
			if upErr.StatusCode != tt.wantStatus || upErr.StatusText != tt.wantText {
				t.Errorf("got %d %q, want %d %q", upErr.StatusCode, upErr.StatusText, tt.wantStatus, tt.wantText)
			}
		})
	}
}

func TestListDifficulties(t *testing.T) {
	b := setupBackend(t, devserver.Options{Seed: true})

	got, err := b.client().ListDifficulties(context.Background())
	if err != nil {
		t.Fatalf("ListDifficulties() error = %v", err)
	}

	var names []string
	for _, d := range got {
		names = append(names, d.Name)
	}
	if diff := cmp.Diff([]string{"Easy", "Medium", "Hard"}, names); diff != "" {
		t.Errorf("difficulties mismatch (-want +got):\n%s", diff)
	}
}
