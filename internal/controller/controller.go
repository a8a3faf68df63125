// Package controller reconciles a server-held recipe with local edits and
// sequences the image upload and save pipeline for the recipe views.
package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/n1rna/recipe-cli/internal/api"
	"github.com/n1rna/recipe-cli/internal/i18n"
	"github.com/n1rna/recipe-cli/internal/logger"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

var (
	// ErrNoRecipe is returned by operations that need a loaded recipe
	ErrNoRecipe = errors.New("no recipe loaded")
	// ErrSaveInProgress is returned when Save is called while another save runs
	ErrSaveInProgress = errors.New("save already in progress")
)

// Store persists recipes
type Store interface {
	GetRecipe(ctx context.Context, recipeID string) (*recipe.Recipe, error)
	UpdateRecipe(ctx context.Context, in recipe.UpdateInput) (*recipe.Recipe, error)
	DeleteRecipe(ctx context.Context, recipeID string) error
}

// Uploader stores recipe images
type Uploader interface {
	UploadRecipeImage(ctx context.Context, recipeID, extension string, content io.Reader) error
}

// Notifier shows transient feedback. Calls must not block.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Navigator performs the navigation side effects requested by the controller
type Navigator interface {
	NotFound()
	LeaveEditing()
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// StagedFile is an image selected by the user but not uploaded yet
type StagedFile struct {
	Content   []byte
	Extension string
}

// Options holds the collaborators of a Controller. Store and Uploader are
// required; the rest fall back to no-ops (a missing Confirmer declines).
type Options struct {
	Store     Store
	Uploader  Uploader
	Notifier  Notifier
	Navigator Navigator
	Confirmer Confirmer
	Messages  *i18n.Messages
	Logger    *logger.Logger
}

// Controller owns the local edit buffer of one recipe view
type Controller struct {
	store     Store
	uploader  Uploader
	notifier  Notifier
	navigator Navigator
	confirmer Confirmer
	msgs      *i18n.Messages
	log       *logger.Logger

	fetches singleflight.Group

	mu        sync.Mutex
	recipeID  string
	canonical *recipe.Recipe
	buffer    *recipe.Recipe
	staged    *StagedFile
	inflight  int
	saving    bool
	fetchErr  error
}

// New creates a controller
func New(opts Options) *Controller {
	c := &Controller{
		store:     opts.Store,
		uploader:  opts.Uploader,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		confirmer: opts.Confirmer,
		msgs:      opts.Messages,
		log:       opts.Logger,
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.navigator == nil {
		c.navigator = nopNavigator{}
	}
	if c.confirmer == nil {
		c.confirmer = declineConfirmer{}
	}
	if c.msgs == nil {
		c.msgs = i18n.Default()
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	return c
}

// Load fetches the recipe and replaces the edit buffer with it. An empty ID
// is ignored. Unauthorized fetches navigate to the not-found view; other
// errors are kept for Err and returned.
func (c *Controller) Load(ctx context.Context, recipeID string) error {
	if recipeID == "" {
		return nil
	}

	c.mu.Lock()
	c.recipeID = recipeID
	c.inflight++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inflight--
		c.mu.Unlock()
	}()

	_, err, _ := c.fetches.Do(recipeID, func() (interface{}, error) {
		r, err := c.store.GetRecipe(ctx, recipeID)
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				c.log.Warn("Unauthorized fetch of recipe %s", recipeID)
				c.navigator.NotFound()
				return nil, err
			}
			c.log.Error("Error fetching recipe %s: %v", recipeID, err)
			c.mu.Lock()
			if c.recipeID == recipeID {
				c.fetchErr = err
			}
			c.mu.Unlock()
			return nil, err
		}

		c.mu.Lock()
		current := c.recipeID == recipeID
		c.mu.Unlock()
		if current {
			c.OnFetchSuccess(r)
		}
		return nil, nil
	})
	return err
}

// OnFetchSuccess normalizes a fetched recipe and replaces the edit buffer
// with a copy of it
func (c *Controller) OnFetchSuccess(r *recipe.Recipe) {
	if r == nil {
		return
	}
	n := recipe.Normalize(r)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recipeID == "" {
		c.recipeID = n.ID
	}
	c.canonical = n
	c.buffer = n.Clone()
	c.fetchErr = nil
}

// StageFile records an image to upload on the next save, replacing any
// previously staged one
func (c *Controller) StageFile(content []byte, extension string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = &StagedFile{
		Content:   content,
		Extension: strings.TrimPrefix(extension, "."),
	}
}

// ClearStagedFile drops the staged image, if any
func (c *Controller) ClearStagedFile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = nil
}

// Save uploads the staged image, if any, then submits the whole buffer and
// refetches the stored recipe. A failed upload does not stop the update.
// On update failure the buffer is left untouched.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.buffer == nil {
		c.mu.Unlock()
		return nil
	}
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInProgress
	}
	c.saving = true
	staged := c.staged
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.saving = false
		c.mu.Unlock()
	}()

	if staged != nil {
		if err := c.UploadStagedFile(ctx, *staged); err != nil {
			c.log.Warn("Continuing save without new image: %v", err)
			c.notifier.Notify(c.msgs.Get(i18n.UploadFailed), SeverityError)
		}
	}

	c.mu.Lock()
	input := recipe.SaveDefaults(c.buffer)
	c.mu.Unlock()

	if _, err := c.store.UpdateRecipe(ctx, input); err != nil {
		c.log.Error("Error updating recipe %s: %v", input.ID, err)
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	c.log.Info("Recipe %s updated successfully", input.ID)

	// a fetch started before the update must not be reused
	c.fetches.Forget(input.ID)
	if err := c.Load(ctx, input.ID); err != nil {
		c.log.Warn("Refetch after save failed: %v", err)
	}
	c.notifier.Notify(c.msgs.Get(i18n.DraftSaved), SeveritySuccess)
	return nil
}

// UploadStagedFile uploads file for the loaded recipe. On success the staged
// file is cleared and the buffer's image points at the uploaded asset; the
// server copy is only seen on the next fetch.
func (c *Controller) UploadStagedFile(ctx context.Context, file StagedFile) error {
	c.mu.Lock()
	if c.buffer == nil {
		c.mu.Unlock()
		c.log.Error("No current recipe to upload file to")
		return ErrNoRecipe
	}
	recipeID := c.buffer.ID
	c.mu.Unlock()

	if err := c.uploader.UploadRecipeImage(ctx, recipeID, file.Extension, bytes.NewReader(file.Content)); err != nil {
		c.log.Error("Error uploading file: %v", err)
		return fmt.Errorf("failed to upload image: %w", err)
	}
	c.log.Info("File uploaded successfully")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = nil
	if c.buffer != nil {
		c.buffer.Image = recipe.StringPtr(fmt.Sprintf("%s.%s", recipeID, file.Extension))
	}
	return nil
}

// Cancel restores the title from the last fetched recipe and leaves editing
// mode. Other edited fields stay in the buffer.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.buffer != nil {
		name := ""
		if c.canonical != nil {
			name = c.canonical.Name
		}
		c.buffer.Name = name
	}
	c.mu.Unlock()

	c.navigator.LeaveEditing()
}

// DeleteDraft asks for confirmation and deletes the recipe. It reports
// whether a delete was issued and succeeded. Without a loaded recipe it
// returns ErrNoRecipe and asks nothing.
func (c *Controller) DeleteDraft(ctx context.Context) (bool, error) {
	c.mu.Lock()
	recipeID := c.recipeID
	c.mu.Unlock()

	if recipeID == "" {
		c.log.Error("No current recipe to delete")
		return false, ErrNoRecipe
	}

	if !c.confirmer.Confirm(ctx, c.msgs.Get(i18n.ConfirmDelete)) {
		return false, nil
	}

	if err := c.store.DeleteRecipe(ctx, recipeID); err != nil {
		c.log.Error("Error deleting recipe draft: %v", err)
		return false, fmt.Errorf("failed to delete recipe: %w", err)
	}
	c.log.Info("Recipe draft deleted successfully")
	return true, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, Severity) {}

type nopNavigator struct{}

func (nopNavigator) NotFound()     {}
func (nopNavigator) LeaveEditing() {}

type declineConfirmer struct{}

func (declineConfirmer) Confirm(context.Context, string) bool { return false }
