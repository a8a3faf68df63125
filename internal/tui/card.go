package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/n1rna/recipe-cli/internal/i18n"
	"github.com/n1rna/recipe-cli/internal/output"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

// skeletonView renders placeholder blocks while the recipe loads
func (m Model) skeletonView() string {
	bar := func(n int) string { return skeletonStyle.Render(strings.Repeat("░", n)) }

	var b strings.Builder
	b.WriteString(skeletonStyle.Render("( )") + " " + bar(24) + "\n\n")
	for i := 0; i < 4; i++ {
		b.WriteString(bar(m.contentWidth()) + "\n")
	}
	b.WriteString("\n" + bar(m.contentWidth()/2) + "\n")
	b.WriteString("\n" + subtitleStyle.Render(m.msgs.Get(i18n.Loading)))

	return cardStyle.Render(b.String())
}

// cardView renders the recipe, with inputs in place of the fields while editing
func (m Model) cardView(r *recipe.Recipe) string {
	var b strings.Builder

	// Header: avatar, title, status and created-at
	avatar := avatarStyle.Render(recipe.Initials(r.CreatedBy.Name))
	title := titleStyle.Render(r.Name)
	if m.editing {
		title = m.form.nameInput.View()
	}
	status := draftStyle.Render("○ " + m.msgs.Get(i18n.Draft))
	if r.IsPublished() {
		status = publishedStyle.Render("● " + m.msgs.Get(i18n.Published))
	}
	header := lipgloss.JoinVertical(lipgloss.Left, title, status)
	if created := recipe.FormatCreatedAt(r.CreatedAt, m.dateFormat); created != "" {
		header = lipgloss.JoinVertical(lipgloss.Left, header, subtitleStyle.Render(m.msgs.Get(i18n.CreatedAt, created)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, avatar, " ", header))
	b.WriteString("\n\n")

	// Image
	image := "-"
	if name, ok := m.ctrl.ImageURL(); ok {
		image = name
	}
	if staged, ok := m.ctrl.Staged(); ok {
		image = fmt.Sprintf("%s (new .%s pending)", image, staged.Extension)
	}
	b.WriteString(m.label(fieldImage, i18n.ImageHeading) + " " + image + "\n")
	if m.editing {
		b.WriteString(m.form.imageInput.View() + "\n")
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.form.descriptionInput.View() + "\n")
		b.WriteString(m.form.timeInput.View() + "\n")
		b.WriteString(m.difficultyView(r) + "\n")
		b.WriteString(m.form.servingsInput.View() + "\n")
	} else {
		b.WriteString(m.field(i18n.DescriptionHeading, recipe.Value(r.Description)))
		b.WriteString(m.field(i18n.TimeHeading, recipe.Value(r.Time)))
		b.WriteString(m.field(i18n.DifficultyHeading, difficultyName(r)))
		b.WriteString(m.field(i18n.ServingsHeading, recipe.Value(r.Servings)))
	}

	// Ingredients
	b.WriteString("\n" + m.label(fieldIngredients, i18n.IngredientsHeading) + "\n")
	keys := output.SortedIngredientKeys(r.Ingredients)
	if len(keys) == 0 {
		b.WriteString("  -\n")
	}
	for i, key := range keys {
		ing := r.Ingredients[key]
		line := fmt.Sprintf("  • %s %s", ing.Name, ing.Amount)
		if m.editing && m.form.focused == fieldIngredients && i == m.form.ingredientCursor {
			line = selectedItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if m.editing {
		b.WriteString(m.form.ingredientInput.View() + "\n")
	}

	// Method
	b.WriteString("\n" + m.label(fieldMethod, i18n.MethodHeading) + "\n")
	if m.editing {
		b.WriteString(m.form.methodInput.View())
	} else {
		b.WriteString(recipe.Value(r.Method))
	}

	return cardStyle.Width(m.contentWidth()).Render(b.String())
}

func (m Model) difficultyView(r *recipe.Recipe) string {
	name := difficultyName(r)
	if m.form.difficulty >= 0 && m.form.difficulty < len(m.form.difficulties) {
		name = m.form.difficulties[m.form.difficulty].Name
	}
	if len(m.form.difficulties) > 0 {
		name = "‹ " + name + " ›"
	}
	return m.label(fieldDifficulty, i18n.DifficultyHeading) + " " + name
}

func difficultyName(r *recipe.Recipe) string {
	if r.Difficulty == nil {
		return ""
	}
	return r.Difficulty.Name
}

func (m Model) field(key i18n.Key, value string) string {
	return sectionStyle.Render(m.msgs.Get(key)) + " " + value + "\n"
}

// label renders a section heading, highlighted when its field has focus
func (m Model) label(field int, key i18n.Key) string {
	if m.editing && m.form.focused == field {
		return focusedLabelStyle.Render("› " + m.msgs.Get(key))
	}
	return sectionStyle.Render(m.msgs.Get(key))
}

func (m Model) contentWidth() int {
	if m.width <= 0 || m.width > 100 {
		return 72
	}
	return m.width - 4
}
