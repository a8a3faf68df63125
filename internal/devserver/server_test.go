package devserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/n1rna/recipe-cli/internal/api"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s
}

func getRecipeRequest(id string) *http.Request {
	input := url.Values{"input": {`{"recipeId":"` + id + `"}`}}.Encode()
	return httptest.NewRequest(http.MethodGet, api.RPCPath+"/"+api.ProcGetRecipe+"?"+input, nil)
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSeed(t *testing.T) {
	s := newTestServer(t, Options{Seed: true})

	r, raw, ok := s.Recipe(SampleRecipeID)
	if !ok {
		t.Fatal("sample recipe not seeded")
	}
	if r.Status != recipe.StatusDraft {
		t.Errorf("Status = %q, want DRAFT", r.Status)
	}
	if r.Difficulty == nil || r.Difficulty.Name != "Medium" {
		t.Errorf("Difficulty = %v, want Medium", r.Difficulty)
	}

	var ingredients map[string]recipe.Ingredient
	if err := json.Unmarshal([]byte(raw), &ingredients); err != nil {
		t.Fatalf("seeded ingredients are not an object: %v", err)
	}
	if len(ingredients) != 12 {
		t.Errorf("len(ingredients) = %d, want 12", len(ingredients))
	}

	difficulties := s.store.listDifficulties()
	for i, d := range difficulties {
		if d.Index != i {
			t.Errorf("difficulties[%d].Index = %d", i, d.Index)
		}
	}
}

func TestGetRecipeReturnsRawIngredients(t *testing.T) {
	s := newTestServer(t, Options{})
	s.PutRaw(&recipe.Recipe{ID: "r1", Name: "Soup", Status: recipe.StatusDraft}, `"a string"`)

	rec := serve(s, getRecipeRequest("r1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var env struct {
		Result struct {
			Data map[string]json.RawMessage `json:"data"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if got := string(env.Result.Data["ingredients"]); got != `"a string"` {
		t.Errorf("ingredients = %s, want the stored raw value", got)
	}
	if got := string(env.Result.Data["difficulty"]); got != "null" {
		t.Errorf("difficulty = %s, want null", got)
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := serve(s, getRecipeRequest("missing"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Error.Data.Code != api.CodeNotFound {
		t.Errorf("code = %q, want %q", env.Error.Data.Code, api.CodeNotFound)
	}
	if env.Error.Data.Path != api.ProcGetRecipe {
		t.Errorf("path = %q, want %q", env.Error.Data.Path, api.ProcGetRecipe)
	}
}

func TestAuthenticate(t *testing.T) {
	s := newTestServer(t, Options{Token: "secret", Seed: true})

	tests := []struct {
		name     string
		req      func() *http.Request
		auth     string
		wantCode int
		wantRPC  bool
	}{
		{"rpc without token", func() *http.Request { return getRecipeRequest(SampleRecipeID) }, "", http.StatusUnauthorized, true},
		{"rpc with token", func() *http.Request { return getRecipeRequest(SampleRecipeID) }, "Bearer secret", http.StatusOK, false},
		{"upload without token", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, api.UploadPath, nil)
		}, "Bearer nope", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req()
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := serve(s, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !tt.wantRPC {
				return
			}
			var env errorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatal(err)
			}
			if env.Error.Message != "Unauthorized" || env.Error.Data.Code != api.CodeUnauthorized {
				t.Errorf("unexpected error envelope: %+v", env.Error)
			}
		})
	}
}

func TestUpdateRecipeUnknownDifficulty(t *testing.T) {
	s := newTestServer(t, Options{Seed: true})

	body := `{"id":"sample","name":"Renamed","ingredients":{"ingredient":[]},"difficultyId":"nope"}`
	req := httptest.NewRequest(http.MethodPost, api.RPCPath+"/"+api.ProcUpdateRecipe, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	r, raw, _ := s.Recipe(SampleRecipeID)
	if r.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", r.Name)
	}
	if r.Difficulty != nil || r.DifficultyID != nil {
		t.Errorf("unknown difficulty should clear it, got %v", r.Difficulty)
	}
	if raw != `{"ingredient":[]}` {
		t.Errorf("ingredients = %s", raw)
	}
}

func TestUploadValidation(t *testing.T) {
	s := newTestServer(t, Options{Seed: true})

	tests := []struct {
		name      string
		recipeID  string
		extension string
		withFile  bool
		wantCode  int
	}{
		{"missing file", SampleRecipeID, "png", false, http.StatusBadRequest},
		{"missing extension", SampleRecipeID, "", true, http.StatusBadRequest},
		{"path in id", "../etc", "png", true, http.StatusBadRequest},
		{"unknown recipe", "missing", "png", true, http.StatusNotFound},
		{"ok", SampleRecipeID, ".jpg", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			if tt.withFile {
				part, _ := mw.CreateFormFile(api.FieldFile, "upload")
				part.Write([]byte("img"))
			}
			mw.WriteField(api.FieldRecipeID, tt.recipeID)
			mw.WriteField(api.FieldFileExtension, tt.extension)
			mw.Close()

			req := httptest.NewRequest(http.MethodPost, api.UploadPath, &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())

			rec := serve(s, req)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}

	r, _, _ := s.Recipe(SampleRecipeID)
	if recipe.Value(r.Image) != SampleRecipeID+".jpg" {
		t.Errorf("Image = %q, want %s.jpg", recipe.Value(r.Image), SampleRecipeID)
	}
}
