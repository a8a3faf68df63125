package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/n1rna/recipe-cli/internal/controller"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

// Form fields in focus order
const (
	fieldName int = iota
	fieldDescription
	fieldTime
	fieldServings
	fieldDifficulty
	fieldIngredients
	fieldMethod
	fieldImage
	fieldCount
)

// editForm holds the inputs shown in editing mode
type editForm struct {
	nameInput        textinput.Model
	descriptionInput textinput.Model
	timeInput        textinput.Model
	servingsInput    textinput.Model
	ingredientInput  textinput.Model
	imageInput       textinput.Model
	methodInput      textarea.Model

	difficulties []recipe.Difficulty
	difficulty   int

	// ingredientCursor indexes the sorted ingredient list
	ingredientCursor int

	focused int
}

func newInput(prompt, placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Width = 50
	return input
}

// newEditForm creates the form with the name input focused
func newEditForm() *editForm {
	method := textarea.New()
	method.Placeholder = "Describe the steps"
	method.ShowLineNumbers = false
	method.SetWidth(60)
	method.SetHeight(6)

	f := &editForm{
		nameInput:        newInput("Name: ", "Recipe name", 120),
		descriptionInput: newInput("Description: ", "Short description", 500),
		timeInput:        newInput("Time: ", "e.g. 30 minutes", 50),
		servingsInput:    newInput("Servings: ", "e.g. 4", 50),
		ingredientInput:  newInput("Add ingredient: ", "name: amount", 120),
		imageInput:       newInput("Image file: ", "path to a new image (optional)", 500),
		methodInput:      method,
		difficulty:       -1,
	}
	f.focus(fieldName)
	return f
}

// populate copies r into the inputs
func (f *editForm) populate(r *recipe.Recipe) {
	if r == nil {
		return
	}
	f.nameInput.SetValue(r.Name)
	f.descriptionInput.SetValue(recipe.Value(r.Description))
	f.timeInput.SetValue(recipe.Value(r.Time))
	f.servingsInput.SetValue(recipe.Value(r.Servings))
	f.methodInput.SetValue(recipe.Value(r.Method))
	f.ingredientInput.SetValue("")
	f.ingredientCursor = 0
	f.selectDifficulty(recipe.Value(r.DifficultyID))
}

// setDifficulties sets the choices of the difficulty selector, keeping the
// current selection when it is still offered
func (f *editForm) setDifficulties(list []recipe.Difficulty, selectedID string) {
	f.difficulties = list
	f.selectDifficulty(selectedID)
}

func (f *editForm) selectDifficulty(id string) {
	f.difficulty = -1
	for i, d := range f.difficulties {
		if d.ID == id && id != "" {
			f.difficulty = i
			return
		}
	}
}

// cycleDifficulty moves the selection by delta, wrapping around
func (f *editForm) cycleDifficulty(delta int) {
	n := len(f.difficulties)
	if n == 0 {
		return
	}
	f.difficulty = ((f.difficulty+delta)%n + n) % n
}

// apply writes the input values into the controller's buffer
func (f *editForm) apply(ctrl *controller.Controller) {
	ctrl.SetName(f.nameInput.Value())
	ctrl.SetDescription(f.descriptionInput.Value())
	ctrl.SetTime(f.timeInput.Value())
	ctrl.SetServings(f.servingsInput.Value())
	ctrl.SetMethod(f.methodInput.Value())
	if f.difficulty >= 0 && f.difficulty < len(f.difficulties) {
		ctrl.SetDifficulty(f.difficulties[f.difficulty])
	}
}

// imagePath returns the trimmed image path, empty when none was entered
func (f *editForm) imagePath() string {
	return strings.TrimSpace(f.imageInput.Value())
}

// parseIngredient reads "name: amount". The amount is optional.
func parseIngredient(s string) (recipe.Ingredient, bool) {
	name, amount, _ := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return recipe.Ingredient{}, false
	}
	return recipe.Ingredient{Name: name, Amount: strings.TrimSpace(amount)}, true
}

// move shifts focus by delta, wrapping around
func (f *editForm) move(delta int) tea.Cmd {
	return f.focus(((f.focused+delta)%fieldCount + fieldCount) % fieldCount)
}

// focus updates the focus state of inputs
func (f *editForm) focus(field int) tea.Cmd {
	f.nameInput.Blur()
	f.descriptionInput.Blur()
	f.timeInput.Blur()
	f.servingsInput.Blur()
	f.ingredientInput.Blur()
	f.imageInput.Blur()
	f.methodInput.Blur()

	f.focused = field
	switch field {
	case fieldName:
		return f.nameInput.Focus()
	case fieldDescription:
		return f.descriptionInput.Focus()
	case fieldTime:
		return f.timeInput.Focus()
	case fieldServings:
		return f.servingsInput.Focus()
	case fieldIngredients:
		return f.ingredientInput.Focus()
	case fieldMethod:
		return f.methodInput.Focus()
	case fieldImage:
		return f.imageInput.Focus()
	}
	return nil
}

// update routes msg to the focused input
func (f *editForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focused {
	case fieldName:
		f.nameInput, cmd = f.nameInput.Update(msg)
	case fieldDescription:
		f.descriptionInput, cmd = f.descriptionInput.Update(msg)
	case fieldTime:
		f.timeInput, cmd = f.timeInput.Update(msg)
	case fieldServings:
		f.servingsInput, cmd = f.servingsInput.Update(msg)
	case fieldIngredients:
		f.ingredientInput, cmd = f.ingredientInput.Update(msg)
	case fieldMethod:
		f.methodInput, cmd = f.methodInput.Update(msg)
	case fieldImage:
		f.imageInput, cmd = f.imageInput.Update(msg)
	}
	return cmd
}
