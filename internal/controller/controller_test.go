package controller

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/n1rna/recipe-cli/internal/api"
	"github.com/n1rna/recipe-cli/internal/i18n"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

// fakeBackend implements Store and Uploader and records the calls it sees
type fakeBackend struct {
	mu sync.Mutex

	recipes   map[string]*recipe.Recipe
	getErr    error
	updateErr error
	deleteErr error
	uploadErr error

	calls   []string
	updates []recipe.UpdateInput
	uploads []uploadCall
	deletes []string

	// bufferAtUpdate captures the controller's buffer when UpdateRecipe runs
	ctrl           *Controller
	bufferAtUpdate *recipe.Recipe

	// onUpdate runs inside UpdateRecipe, before it returns
	onUpdate func()
}

type uploadCall struct {
	RecipeID  string
	Extension string
	Content   string
}

func newFakeBackend(recipes ...*recipe.Recipe) *fakeBackend {
	f := &fakeBackend{recipes: map[string]*recipe.Recipe{}}
	for _, r := range recipes {
		f.recipes[r.ID] = r
	}
	return f
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) GetRecipe(ctx context.Context, recipeID string) (*recipe.Recipe, error) {
	f.record("get")
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.recipes[recipeID]
	if !ok {
		return nil, &api.RPCError{Message: "not found", Data: api.RPCErrorData{Code: api.CodeNotFound}}
	}
	return r.Clone(), nil
}

func (f *fakeBackend) UpdateRecipe(ctx context.Context, in recipe.UpdateInput) (*recipe.Recipe, error) {
	f.record("update")
	if f.ctrl != nil {
		f.bufferAtUpdate = f.ctrl.Buffer()
	}
	if f.onUpdate != nil {
		f.onUpdate()
	}
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	r := f.recipes[in.ID]
	r.Name = in.Name
	return r.Clone(), nil
}

func (f *fakeBackend) DeleteRecipe(ctx context.Context, recipeID string) error {
	f.record("delete")
	f.deletes = append(f.deletes, recipeID)
	return f.deleteErr
}

func (f *fakeBackend) UploadRecipeImage(ctx context.Context, recipeID, extension string, content io.Reader) error {
	f.record("upload")
	data, _ := io.ReadAll(content)
	f.uploads = append(f.uploads, uploadCall{RecipeID: recipeID, Extension: extension, Content: string(data)})
	return f.uploadErr
}

type recordingNotifier struct {
	messages []string
	severity []Severity
}

func (n *recordingNotifier) Notify(message string, severity Severity) {
	n.messages = append(n.messages, message)
	n.severity = append(n.severity, severity)
}

type recordingNavigator struct {
	notFound     int
	leaveEditing int
}

func (n *recordingNavigator) NotFound()     { n.notFound++ }
func (n *recordingNavigator) LeaveEditing() { n.leaveEditing++ }

type fixedConfirmer struct {
	answer  bool
	prompts []string
}

func (c *fixedConfirmer) Confirm(ctx context.Context, prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

func draftRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		ID:        "r1",
		Name:      "Paella",
		Status:    recipe.StatusDraft,
		CreatedBy: recipe.User{ID: "u1", Name: "Chef John"},
	}
}

func newTestController(f *fakeBackend) (*Controller, *recordingNotifier, *recordingNavigator) {
	notifier := &recordingNotifier{}
	navigator := &recordingNavigator{}
	c := New(Options{
		Store:     f,
		Uploader:  f,
		Notifier:  notifier,
		Navigator: navigator,
	})
	f.ctrl = c
	return c, notifier, navigator
}

func TestLoadNormalizesRecipe(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	c, _, _ := newTestController(f)

	if err := c.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	buf := c.Buffer()
	if buf == nil {
		t.Fatal("expected buffer after load")
	}
	if buf.Ingredients == nil || len(buf.Ingredients) != 0 {
		t.Errorf("Ingredients = %#v, want empty map", buf.Ingredients)
	}
	if diff := cmp.Diff(recipe.EmptyDifficulty(), buf.Difficulty); diff != "" {
		t.Errorf("Difficulty mismatch (-want +got):\n%s", diff)
	}
	if c.IsPublished() {
		t.Error("draft recipe reported as published")
	}
	if c.IsLoading() {
		t.Error("IsLoading true after load returned")
	}
}

func TestLoadEmptyIDIsSkipped(t *testing.T) {
	f := newFakeBackend()
	c, _, _ := newTestController(f)

	if err := c.Load(context.Background(), ""); err != nil {
		t.Fatalf("Load(\"\") = %v, want nil", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("expected no store calls, got %v", f.calls)
	}
}

func TestLoadUnauthorizedNavigatesOnce(t *testing.T) {
	f := newFakeBackend()
	f.getErr = &api.RPCError{Message: "Unauthorized"}
	c, _, nav := newTestController(f)

	err := c.Load(context.Background(), "r1")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("Load error = %v, want ErrUnauthorized", err)
	}
	if nav.notFound != 1 {
		t.Errorf("NotFound called %d times, want 1", nav.notFound)
	}
	if c.Err() != nil {
		t.Errorf("unauthorized error should not be kept, got %v", c.Err())
	}

	_ = c.Load(context.Background(), "r1")
	if nav.notFound != 2 {
		t.Errorf("NotFound called %d times after second failure, want 2", nav.notFound)
	}
}

func TestLoadOtherErrorIsKept(t *testing.T) {
	f := newFakeBackend()
	c, _, nav := newTestController(f)

	err := c.Load(context.Background(), "missing")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("Load error = %v, want ErrNotFound", err)
	}
	if nav.notFound != 0 {
		t.Error("non-auth error should not navigate")
	}
	if !errors.Is(c.Err(), api.ErrNotFound) {
		t.Errorf("Err() = %v, want ErrNotFound", c.Err())
	}
	if got := len(f.calls); got != 1 {
		t.Errorf("controller issued %d fetches, want 1 (retries belong to the store)", got)
	}
}

func TestOnFetchSuccessIdempotent(t *testing.T) {
	c, _, _ := newTestController(newFakeBackend())
	r := draftRecipe()

	c.OnFetchSuccess(r)
	first := c.Buffer()
	c.OnFetchSuccess(r)
	second := c.Buffer()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("buffers differ (-first +second):\n%s", diff)
	}
}

func TestOnFetchSuccessReplacesBufferWholesale(t *testing.T) {
	c, _, _ := newTestController(newFakeBackend())
	c.OnFetchSuccess(draftRecipe())
	c.SetDescription("local edit")

	c.OnFetchSuccess(draftRecipe())
	if got := c.Buffer().Description; got != nil {
		t.Errorf("Description = %q, want nil after replacement", *got)
	}
}

func TestSaveWithStagedFile(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	c, notifier, _ := newTestController(f)
	ctx := context.Background()

	if err := c.Load(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	c.StageFile([]byte("png-bytes"), "png")

	if err := c.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	wantCalls := []string{"get", "upload", "update", "get"}
	if diff := cmp.Diff(wantCalls, f.calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}

	wantUpload := []uploadCall{{RecipeID: "r1", Extension: "png", Content: "png-bytes"}}
	if diff := cmp.Diff(wantUpload, f.uploads); diff != "" {
		t.Errorf("uploads mismatch (-want +got):\n%s", diff)
	}

	if f.bufferAtUpdate == nil || recipe.Value(f.bufferAtUpdate.Image) != "r1.png" {
		t.Errorf("buffer image at update time = %v, want r1.png", f.bufferAtUpdate)
	}
	if _, ok := c.Staged(); ok {
		t.Error("staged file should be cleared after successful upload")
	}
	if len(notifier.messages) != 1 || notifier.severity[0] != SeveritySuccess {
		t.Errorf("notifications = %v %v, want one success", notifier.messages, notifier.severity)
	}
}

func TestSaveWithoutStagedFile(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	c, _, _ := newTestController(f)
	ctx := context.Background()

	if err := c.Load(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if len(f.uploads) != 0 {
		t.Errorf("unexpected uploads: %v", f.uploads)
	}
	if diff := cmp.Diff([]string{"get", "update", "get"}, f.calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveFillsDefaults(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	c, _, _ := newTestController(f)
	ctx := context.Background()

	if err := c.Load(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(ctx); err != nil {
		t.Fatal(err)
	}

	want := recipe.UpdateInput{
		ID:          "r1",
		Name:        "Paella",
		Ingredients: map[string]recipe.Ingredient{},
	}
	if diff := cmp.Diff(want, f.updates[0]); diff != "" {
		t.Errorf("update payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveWithoutBufferIsNoop(t *testing.T) {
	f := newFakeBackend()
	c, notifier, _ := newTestController(f)

	if err := c.Save(context.Background()); err != nil {
		t.Fatalf("Save = %v, want nil", err)
	}
	if len(f.calls) != 0 || len(notifier.messages) != 0 {
		t.Errorf("expected nothing to happen, calls=%v notifications=%v", f.calls, notifier.messages)
	}
}

func TestSaveContinuesAfterUploadFailure(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	f.uploadErr = &api.UploadError{StatusCode: 500, StatusText: "Internal Server Error"}
	c, notifier, _ := newTestController(f)
	ctx := context.Background()

	if err := c.Load(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	c.StageFile([]byte("jpg"), ".jpg")

	if err := c.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(f.updates) != 1 {
		t.Errorf("expected update after failed upload, got %d updates", len(f.updates))
	}
	if diff := cmp.Diff([]Severity{SeverityError, SeveritySuccess}, notifier.severity); diff != "" {
		t.Errorf("notification severities mismatch (-want +got):\n%s", diff)
	}
	if len(notifier.messages) > 0 && notifier.messages[0] != i18n.UploadFailed {
		t.Errorf("first notification = %q, want %q", notifier.messages[0], i18n.UploadFailed)
	}
	staged, ok := c.Staged()
	if !ok || staged.Extension != "jpg" {
		t.Errorf("staged file should remain after failed upload, got %+v %v", staged, ok)
	}
	if _, ok := c.ImageURL(); ok {
		t.Error("image should not be set after failed upload")
	}
}

func TestSaveUpdateFailureKeepsBuffer(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	f.updateErr = errors.New("boom")
	c, notifier, _ := newTestController(f)
	ctx := context.Background()

	if err := c.Load(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	c.SetName("Seafood Paella")
	c.SetTime("45 min")

	if err := c.Save(ctx); err == nil {
		t.Fatal("expected save error")
	}

	buf := c.Buffer()
	if buf.Name != "Seafood Paella" || recipe.Value(buf.Time) != "45 min" {
		t.Errorf("buffer rolled back: %+v", buf)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("unexpected notifications: %v", notifier.messages)
	}
	if c.Saving() {
		t.Error("Saving() still true after failure")
	}
}

func TestSaveRejectsConcurrentSave(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	c, _, _ := newTestController(f)
	ctx := context.Background()
	if err := c.Load(ctx, "r1"); err != nil {
		t.Fatal(err)
	}

	var nested error
	f.onUpdate = func() {
		nested = c.Save(ctx)
	}
	if err := c.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(nested, ErrSaveInProgress) {
		t.Errorf("nested Save = %v, want ErrSaveInProgress", nested)
	}
	if len(f.updates) != 1 {
		t.Errorf("expected a single update, got %d", len(f.updates))
	}
}

func TestUploadWithoutBuffer(t *testing.T) {
	f := newFakeBackend()
	c, _, _ := newTestController(f)

	err := c.UploadStagedFile(context.Background(), StagedFile{Content: []byte("x"), Extension: "png"})
	if !errors.Is(err, ErrNoRecipe) {
		t.Errorf("UploadStagedFile = %v, want ErrNoRecipe", err)
	}
	if len(f.uploads) != 0 {
		t.Error("upload should not reach the uploader without a recipe")
	}
}

func TestUploadSetsImageLocally(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	c, _, _ := newTestController(f)
	ctx := context.Background()
	if err := c.Load(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	c.StageFile([]byte("a"), "png")
	c.StageFile([]byte("b"), "webp")

	staged, _ := c.Staged()
	if err := c.UploadStagedFile(ctx, staged); err != nil {
		t.Fatal(err)
	}

	url, ok := c.ImageURL()
	if !ok || url != "r1.webp" {
		t.Errorf("ImageURL() = %q, %v; want r1.webp", url, ok)
	}
	if got := c.Canonical().Image; got != nil {
		t.Errorf("canonical image changed to %q, want untouched", *got)
	}
}

func TestCancelRevertsOnlyName(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	c, _, nav := newTestController(f)
	if err := c.Load(context.Background(), "r1"); err != nil {
		t.Fatal(err)
	}

	c.SetName("Edited")
	c.SetMethod("Stir.")
	c.Cancel()

	buf := c.Buffer()
	if buf.Name != "Paella" {
		t.Errorf("Name = %q, want Paella", buf.Name)
	}
	if recipe.Value(buf.Method) != "Stir." {
		t.Errorf("Method = %q, want edit kept", recipe.Value(buf.Method))
	}
	if nav.leaveEditing != 1 {
		t.Errorf("LeaveEditing called %d times, want 1", nav.leaveEditing)
	}
}

func TestCancelWithoutBufferStillLeavesEditing(t *testing.T) {
	c, _, nav := newTestController(newFakeBackend())
	c.Cancel()
	if nav.leaveEditing != 1 {
		t.Errorf("LeaveEditing called %d times, want 1", nav.leaveEditing)
	}
}

func TestDeleteDraft(t *testing.T) {
	tests := []struct {
		name        string
		answer      bool
		wantDeletes []string
	}{
		{"confirmed", true, []string{"r1"}},
		{"declined", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeBackend(draftRecipe())
			confirmer := &fixedConfirmer{answer: tt.answer}
			c := New(Options{Store: f, Uploader: f, Confirmer: confirmer})
			if err := c.Load(context.Background(), "r1"); err != nil {
				t.Fatal(err)
			}

			deleted, err := c.DeleteDraft(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if deleted != tt.answer {
				t.Errorf("DeleteDraft() = %v, want %v", deleted, tt.answer)
			}
			if diff := cmp.Diff(tt.wantDeletes, f.deletes); diff != "" {
				t.Errorf("deletes mismatch (-want +got):\n%s", diff)
			}
			if len(confirmer.prompts) != 1 {
				t.Errorf("expected one confirmation prompt, got %v", confirmer.prompts)
			}
		})
	}
}

func TestDeleteDraftWithoutConfirmerDeclines(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	c := New(Options{Store: f, Uploader: f})
	if err := c.Load(context.Background(), "r1"); err != nil {
		t.Fatal(err)
	}
	deleted, err := c.DeleteDraft(context.Background())
	if err != nil || deleted {
		t.Errorf("DeleteDraft() = %v, %v; want false, nil", deleted, err)
	}
	if len(f.deletes) != 0 {
		t.Error("delete issued without confirmation")
	}
}

func TestDeleteDraftWithoutRecipe(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	confirmer := &fixedConfirmer{answer: true}
	c := New(Options{Store: f, Uploader: f, Confirmer: confirmer})

	deleted, err := c.DeleteDraft(context.Background())
	if deleted || !errors.Is(err, ErrNoRecipe) {
		t.Errorf("DeleteDraft() = %v, %v; want false, ErrNoRecipe", deleted, err)
	}
	if len(f.deletes) != 0 {
		t.Errorf("delete issued without a recipe: %v", f.deletes)
	}
	if len(confirmer.prompts) != 0 {
		t.Errorf("confirmation asked without a recipe: %v", confirmer.prompts)
	}
}

func TestDerivedStateWithoutBuffer(t *testing.T) {
	c, _, _ := newTestController(newFakeBackend())
	if c.IsPublished() {
		t.Error("IsPublished() true without buffer")
	}
	if _, ok := c.ImageURL(); ok {
		t.Error("ImageURL() set without buffer")
	}
	if c.Buffer() != nil {
		t.Error("Buffer() non-nil before load")
	}
}

func TestIngredientEditors(t *testing.T) {
	f := newFakeBackend(draftRecipe())
	c, _, _ := newTestController(f)
	if err := c.Load(context.Background(), "r1"); err != nil {
		t.Fatal(err)
	}

	key := c.AddIngredient(recipe.Ingredient{Name: "rice", Amount: "2 cups"})
	c.PutIngredient("saffron", recipe.Ingredient{Name: "saffron", Amount: "a pinch"})
	c.RemoveIngredient("saffron")

	want := recipe.Ingredients{key: {Name: "rice", Amount: "2 cups"}}
	if diff := cmp.Diff(want, c.Buffer().Ingredients); diff != "" {
		t.Errorf("ingredients mismatch (-want +got):\n%s", diff)
	}

	c.SetDifficulty(recipe.Difficulty{ID: "d2", Name: "Hard", Index: 2})
	buf := c.Buffer()
	if recipe.Value(buf.DifficultyID) != "d2" || buf.Difficulty.Name != "Hard" {
		t.Errorf("difficulty not applied: %+v", buf)
	}
}

func TestPublishedRecipe(t *testing.T) {
	r := draftRecipe()
	r.Status = recipe.StatusPublished
	r.Image = recipe.StringPtr("r1.png")
	c, _, _ := newTestController(newFakeBackend(r))
	if err := c.Load(context.Background(), "r1"); err != nil {
		t.Fatal(err)
	}
	if !c.IsPublished() {
		t.Error("IsPublished() = false for published recipe")
	}
	if url, ok := c.ImageURL(); !ok || url != "r1.png" {
		t.Errorf("ImageURL() = %q, %v", url, ok)
	}
}
