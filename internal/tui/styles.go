package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/n1rna/recipe-cli/internal/controller"
)

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	avatarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("33")).
			Padding(0, 1)

	skeletonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	publishedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	draftStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("255"))

	focusedLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	confirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)

	footerStyle        = lipgloss.NewStyle().MarginTop(1).Foreground(lipgloss.Color("245"))
	footerBrandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")).MarginRight(4)
	footerHeadingStyle = lipgloss.NewStyle().Bold(true)
	footerLinkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	footerColumnStyle  = lipgloss.NewStyle().MarginRight(4)
)

// statusStyle returns the status line style for a notification severity
func statusStyle(s controller.Severity) lipgloss.Style {
	switch s {
	case controller.SeveritySuccess:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	case controller.SeverityWarning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	case controller.SeverityError:
		return errorStyle
	default:
		return subtitleStyle
	}
}
