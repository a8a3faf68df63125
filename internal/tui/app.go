// Package tui provides the terminal interface for viewing and editing a recipe
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/n1rna/recipe-cli/internal/controller"
	"github.com/n1rna/recipe-cli/internal/i18n"
	"github.com/n1rna/recipe-cli/internal/logger"
	"github.com/n1rna/recipe-cli/internal/output"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

// ViewState represents the current screen
type ViewState int

const (
	RecipeView ViewState = iota
	NotFoundView
	DeletedView
)

// DifficultySource lists the difficulties offered in editing mode
type DifficultySource interface {
	ListDifficulties(ctx context.Context) ([]recipe.Difficulty, error)
}

// Options configures a Model. Controller and Bridge are required, and the
// controller must have been created with the bridge as its notifier,
// navigator and confirmer.
type Options struct {
	Controller   *controller.Controller
	Bridge       *Bridge
	Difficulties DifficultySource
	RecipeID     string
	Editing      bool
	Messages     *i18n.Messages
	DateFormat   recipe.DateFormat
	Now          func() time.Time
	Context      context.Context
	Logger       *logger.Logger
}

// Model represents the recipe screen state
type Model struct {
	ctrl         *controller.Controller
	bridge       *Bridge
	difficulties DifficultySource
	recipeID     string
	msgs         *i18n.Messages
	dateFormat   recipe.DateFormat
	footer       Footer
	ctx          context.Context
	log          *logger.Logger

	// Navigation
	currentView ViewState
	width       int
	height      int

	editing bool
	form    *editForm
	confirm *ConfirmMsg
	status  *NotificationMsg
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	m := Model{
		ctrl:         opts.Controller,
		bridge:       opts.Bridge,
		difficulties: opts.Difficulties,
		recipeID:     opts.RecipeID,
		msgs:         opts.Messages,
		dateFormat:   opts.DateFormat,
		ctx:          opts.Context,
		log:          opts.Logger,
		editing:      opts.Editing,
		form:         newEditForm(),
	}
	if m.msgs == nil {
		m.msgs = i18n.Default()
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.log == nil {
		m.log = logger.Discard()
	}
	m.footer = NewFooter(m.msgs, opts.Now)
	return m
}

// Custom messages
type recipeLoadedMsg struct{ err error }
type savedMsg struct{ err error }
type deletedMsg struct {
	deleted bool
	err     error
}
type difficultiesLoadedMsg []recipe.Difficulty

// Init starts the fetch and begins listening to the bridge
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.load(), m.bridge.wait()}
	if m.editing {
		cmds = append(cmds, m.loadDifficulties())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case recipeLoadedMsg:
		if msg.err != nil {
			m.log.Debug("Load finished with error: %v", msg.err)
		}
		if m.editing {
			m.form.populate(m.ctrl.Buffer())
		}
		return m, nil

	case difficultiesLoadedMsg:
		selected := ""
		if r := m.ctrl.Buffer(); r != nil {
			selected = recipe.Value(r.DifficultyID)
		}
		m.form.setDifficulties(msg, selected)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = &NotificationMsg{Text: msg.err.Error(), Severity: controller.SeverityError}
			return m, nil
		}
		// a failed upload leaves the file staged for the next save
		if _, pending := m.ctrl.Staged(); !pending {
			m.form.imageInput.SetValue("")
		}
		m.form.populate(m.ctrl.Buffer())
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.status = &NotificationMsg{Text: msg.err.Error(), Severity: controller.SeverityError}
		}
		if msg.deleted {
			m.currentView = DeletedView
			m.editing = false
		}
		return m, nil

	case NotificationMsg:
		m.status = &msg
		return m, m.bridge.wait()

	case NotFoundMsg:
		m.currentView = NotFoundView
		m.editing = false
		return m, m.bridge.wait()

	case LeaveEditingMsg:
		m.editing = false
		m.form.imageInput.SetValue("")
		m.form.populate(m.ctrl.Buffer())
		return m, m.bridge.wait()

	case ConfirmMsg:
		m.confirm = &msg
		return m, m.bridge.wait()
	}

	if m.editing {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		if m.confirm != nil {
			m.confirm.Answer(false)
		}
		return m, tea.Quit
	}

	if m.confirm != nil {
		switch key {
		case "y", "Y":
			m.confirm.Answer(true)
			m.confirm = nil
		case "n", "N", "esc":
			m.confirm.Answer(false)
			m.confirm = nil
		}
		return m, nil
	}

	if m.currentView != RecipeView {
		switch key {
		case "q", "esc", "enter":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.editing {
		return m.handleEditKey(msg)
	}

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "e":
		if m.ctrl.Buffer() == nil {
			return m, nil
		}
		m.editing = true
		m.form.populate(m.ctrl.Buffer())
		return m, tea.Batch(m.form.focus(fieldName), m.loadDifficulties())
	case "d":
		return m, m.deleteDraft()
	case "r":
		return m, m.load()
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.Cancel()
		return m, nil

	case "ctrl+s":
		if m.ctrl.Saving() {
			return m, nil
		}
		m.form.apply(m.ctrl)
		if path := m.form.imagePath(); path != "" {
			if err := m.stageImage(path); err != nil {
				m.status = &NotificationMsg{Text: err.Error(), Severity: controller.SeverityError}
				return m, nil
			}
		}
		m.status = &NotificationMsg{Text: m.msgs.Get(i18n.Saving), Severity: controller.SeverityInfo}
		return m, m.save()

	case "ctrl+d":
		return m, m.deleteDraft()

	case "tab":
		return m, m.form.move(1)

	case "shift+tab":
		return m, m.form.move(-1)
	}

	switch m.form.focused {
	case fieldDifficulty:
		switch msg.String() {
		case "left", "h":
			m.form.cycleDifficulty(-1)
		case "right", "l", " ":
			m.form.cycleDifficulty(1)
		}
		m.form.apply(m.ctrl)
		return m, nil

	case fieldIngredients:
		if handled := m.handleIngredientKey(msg.String()); handled {
			return m, nil
		}
	}

	cmd := m.form.update(msg)
	m.form.apply(m.ctrl)
	return m, cmd
}

// handleIngredientKey adds, selects and removes ingredients. It reports
// whether the key was consumed.
func (m Model) handleIngredientKey(key string) bool {
	r := m.ctrl.Buffer()
	if r == nil {
		return false
	}
	keys := output.SortedIngredientKeys(r.Ingredients)

	switch key {
	case "enter":
		if ing, ok := parseIngredient(m.form.ingredientInput.Value()); ok {
			m.ctrl.AddIngredient(ing)
			m.form.ingredientInput.SetValue("")
		}
		return true
	case "up":
		if m.form.ingredientCursor > 0 {
			m.form.ingredientCursor--
		}
		return true
	case "down":
		if m.form.ingredientCursor < len(keys)-1 {
			m.form.ingredientCursor++
		}
		return true
	case "ctrl+x":
		if m.form.ingredientCursor < len(keys) {
			m.ctrl.RemoveIngredient(keys[m.form.ingredientCursor])
			if m.form.ingredientCursor > 0 && m.form.ingredientCursor >= len(keys)-1 {
				m.form.ingredientCursor--
			}
		}
		return true
	}
	return false
}

// stageImage reads the file at path and stages it for the next save
func (m Model) stageImage(path string) error {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return fmt.Errorf("image file %s has no extension", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	m.ctrl.StageFile(content, ext)
	return nil
}

// load creates a command that fetches the recipe through the controller
func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		return recipeLoadedMsg{err: m.ctrl.Load(m.ctx, m.recipeID)}
	}
}

// loadDifficulties creates a command that fetches the difficulty choices
func (m Model) loadDifficulties() tea.Cmd {
	if m.difficulties == nil {
		return nil
	}
	return func() tea.Msg {
		list, err := m.difficulties.ListDifficulties(m.ctx)
		if err != nil {
			m.log.Warn("Failed to load difficulties: %v", err)
			return nil
		}
		return difficultiesLoadedMsg(list)
	}
}

// save creates a command that runs the controller's save pipeline
func (m Model) save() tea.Cmd {
	return func() tea.Msg {
		err := m.ctrl.Save(m.ctx)
		if errors.Is(err, controller.ErrSaveInProgress) {
			return nil
		}
		return savedMsg{err: err}
	}
}

// deleteDraft creates a command that asks for confirmation and deletes
func (m Model) deleteDraft() tea.Cmd {
	if m.ctrl.Buffer() == nil {
		return nil
	}
	return func() tea.Msg {
		deleted, err := m.ctrl.DeleteDraft(m.ctx)
		return deletedMsg{deleted: deleted, err: err}
	}
}

// View renders the current view
func (m Model) View() string {
	var content string

	switch m.currentView {
	case NotFoundView:
		content = errorStyle.Render(m.msgs.Get(i18n.NotFound))
	case DeletedView:
		content = subtitleStyle.Render(m.msgs.Get(i18n.RecipeDeleted, m.recipeID))
	default:
		content = m.recipeView()
	}

	if m.confirm != nil {
		content += "\n" + confirmStyle.Render(m.confirm.Prompt+" (y/n)")
	}
	if m.status != nil {
		content += "\n" + statusStyle(m.status.Severity).Render(m.status.Text)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		content,
		m.helpView(),
		m.footer.View(m.width),
	)
}

func (m Model) recipeView() string {
	r := m.ctrl.Buffer()
	if r == nil {
		if err := m.ctrl.Err(); err != nil && !m.ctrl.IsLoading() {
			return errorStyle.Render(m.msgs.Get(i18n.ErrorLabel, err.Error()))
		}
		return m.skeletonView()
	}
	if m.ctrl.IsLoading() && !m.editing {
		return m.skeletonView()
	}
	return m.cardView(r)
}

// headerView renders the application header
func (m Model) headerView() string {
	subtitle := m.msgs.Get(i18n.RecipeTitle)
	if m.editing {
		subtitle = m.msgs.Get(i18n.EditingTitle)
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("recipe"), subtitleStyle.Render(subtitle))
}

// helpView renders the key help for the current mode
func (m Model) helpView() string {
	help := ""
	switch {
	case m.confirm != nil:
		help = "y: yes • n: no"
	case m.currentView != RecipeView:
		help = "q: quit"
	case m.editing:
		help = "tab: next field • ctrl+s: save • esc: cancel • ctrl+d: delete"
		switch m.form.focused {
		case fieldDifficulty:
			help += " • ←/→: choose"
		case fieldIngredients:
			help += " • enter: add • ↑/↓: select • ctrl+x: remove"
		}
	default:
		help = "e: edit • d: delete • r: reload • q: quit"
	}
	return helpStyle.Render(help)
}

// CurrentView returns the screen being shown
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Editing reports whether the model is in editing mode
func (m Model) Editing() bool {
	return m.editing
}
