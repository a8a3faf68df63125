// Package devserver runs a local, in-memory implementation of the recipe RPC
// and upload endpoints for development and client tests
package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/n1rna/recipe-cli/internal/api"
	"github.com/n1rna/recipe-cli/internal/logger"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

// Options configures a Server
type Options struct {
	// Token, when set, must be sent as a bearer token
	Token string
	// UploadDir receives uploaded images; empty keeps them in memory only
	UploadDir string
	// Seed adds the sample recipe and default difficulties
	Seed   bool
	Logger *logger.Logger
}

// Server is the development backend
type Server struct {
	echo  *echo.Echo
	store *memoryStore
	opts  Options
	log   *logger.Logger
}

// New creates a server and registers its routes
func New(opts Options) (*Server, error) {
	s := &Server{
		echo:  echo.New(),
		store: newMemoryStore(),
		opts:  opts,
		log:   opts.Logger,
	}
	if s.log == nil {
		s.log = logger.Discard()
	}

	if opts.Seed {
		if err := s.store.seed(); err != nil {
			return nil, fmt.Errorf("failed to seed store: %w", err)
		}
	}
	if opts.UploadDir != "" {
		if err := os.MkdirAll(opts.UploadDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.requestLogger)

	g := s.echo.Group("/api", s.authenticate)
	g.GET("/trpc/"+api.ProcGetRecipe, s.getRecipe)
	g.POST("/trpc/"+api.ProcUpdateRecipe, s.updateRecipe)
	g.POST("/trpc/"+api.ProcDeleteRecipe, s.deleteRecipe)
	g.GET("/trpc/"+api.ProcListDifficulties, s.listDifficulties)
	g.POST("/v1/upload", s.upload)

	return s, nil
}

// Handler exposes the server as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.log.Info("Dev server listening on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Put stores r, replacing any recipe with the same ID
func (s *Server) Put(r *recipe.Recipe) error {
	return s.store.put(r)
}

// PutRaw stores r with ingredients given as raw JSON, which may have any shape
func (s *Server) PutRaw(r *recipe.Recipe, rawIngredients string) {
	var raw json.RawMessage
	if rawIngredients != "" {
		raw = json.RawMessage(rawIngredients)
	}
	s.store.putRaw(r, raw)
}

// PutDifficulty stores a difficulty classification
func (s *Server) PutDifficulty(d recipe.Difficulty) {
	s.store.putDifficulty(d)
}

// Recipe returns the stored recipe and its raw ingredients JSON
func (s *Server) Recipe(id string) (*recipe.Recipe, string, bool) {
	r, ok := s.store.get(id)
	if !ok {
		return nil, "", false
	}
	return &r.Recipe, string(r.RawIngredients), true
}

type resultEnvelope struct {
	Result struct {
		Data interface{} `json:"data"`
	} `json:"result"`
}

type errorEnvelope struct {
	Error api.RPCError `json:"error"`
}

func respond(c echo.Context, data interface{}) error {
	var env resultEnvelope
	env.Result.Data = data
	return c.JSON(http.StatusOK, env)
}

func rpcError(c echo.Context, status int, code, message string) error {
	path := strings.TrimPrefix(c.Path(), "/api/trpc/")
	return c.JSON(status, errorEnvelope{Error: api.RPCError{
		Message: message,
		Code:    -32000 - status,
		Data:    api.RPCErrorData{Code: code, HTTPStatus: status, Path: path},
	}})
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.opts.Token == "" || c.Request().Header.Get("Authorization") == "Bearer "+s.opts.Token {
			return next(c)
		}
		if strings.HasPrefix(c.Path(), "/api/trpc/") {
			return rpcError(c, http.StatusUnauthorized, api.CodeUnauthorized, "Unauthorized")
		}
		return c.String(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.Debug("%s %s -> %d", c.Request().Method, c.Request().URL.Path, c.Response().Status)
		return nil
	}
}

func (s *Server) getRecipe(c echo.Context) error {
	var in api.RecipeIDInput
	if err := json.Unmarshal([]byte(c.QueryParam("input")), &in); err != nil || in.RecipeID == "" {
		return rpcError(c, http.StatusBadRequest, api.CodeBadRequest, "recipeId is required")
	}

	r, found := s.store.get(in.RecipeID)
	if !found {
		return rpcError(c, http.StatusNotFound, api.CodeNotFound, "Recipe not found")
	}
	return respond(c, r)
}

type updateBody struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Ingredients  json.RawMessage `json:"ingredients"`
	Time         string          `json:"time"`
	DifficultyID string          `json:"difficultyId"`
	Servings     string          `json:"servings"`
	Method       string          `json:"method"`
}

func (s *Server) updateRecipe(c echo.Context) error {
	var in updateBody
	if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil || in.ID == "" {
		return rpcError(c, http.StatusBadRequest, api.CodeBadRequest, "invalid input")
	}

	var difficulty *recipe.Difficulty
	if d, found := s.store.difficulty(in.DifficultyID); found {
		difficulty = &d
	}

	r, found := s.store.update(in.ID, func(r *storedRecipe) {
		r.Name = in.Name
		r.Description = recipe.StringPtr(in.Description)
		r.RawIngredients = in.Ingredients
		r.Time = recipe.StringPtr(in.Time)
		r.Servings = recipe.StringPtr(in.Servings)
		r.Method = recipe.StringPtr(in.Method)
		r.DifficultyID = nil
		r.Difficulty = difficulty
		if difficulty != nil {
			r.DifficultyID = recipe.StringPtr(difficulty.ID)
		}
	})
	if !found {
		return rpcError(c, http.StatusNotFound, api.CodeNotFound, "Recipe not found")
	}
	s.log.Info("Recipe %s updated", in.ID)
	return respond(c, r)
}

func (s *Server) deleteRecipe(c echo.Context) error {
	var in api.RecipeIDInput
	if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil || in.RecipeID == "" {
		return rpcError(c, http.StatusBadRequest, api.CodeBadRequest, "recipeId is required")
	}
	if !s.store.delete(in.RecipeID) {
		return rpcError(c, http.StatusNotFound, api.CodeNotFound, "Recipe not found")
	}
	s.log.Info("Recipe %s deleted", in.RecipeID)
	return respond(c, map[string]string{"id": in.RecipeID})
}

func (s *Server) listDifficulties(c echo.Context) error {
	return respond(c, s.store.listDifficulties())
}

func (s *Server) upload(c echo.Context) error {
	recipeID := c.FormValue(api.FieldRecipeID)
	extension := strings.TrimPrefix(c.FormValue(api.FieldFileExtension), ".")
	if recipeID == "" || extension == "" || strings.ContainsAny(recipeID+extension, `/\`) {
		return c.String(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
	}

	fh, err := c.FormFile(api.FieldFile)
	if err != nil {
		return c.String(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
	}
	if _, found := s.store.get(recipeID); !found {
		return c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
	}

	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	fileName := fmt.Sprintf("%s.%s", recipeID, extension)
	if s.opts.UploadDir != "" {
		if err := os.WriteFile(filepath.Join(s.opts.UploadDir, fileName), content, 0644); err != nil {
			s.log.Error("Failed to store upload %s: %v", fileName, err)
			return c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
	}

	s.store.update(recipeID, func(r *storedRecipe) {
		r.Image = recipe.StringPtr(fileName)
	})
	s.log.Info("Stored image %s (%d bytes)", fileName, len(content))
	return c.JSON(http.StatusOK, map[string]string{"fileName": fileName})
}
