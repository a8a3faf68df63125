// Package command provides UI command functionality
package command

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/n1rna/recipe-cli/internal/controller"
	"github.com/n1rna/recipe-cli/internal/tui"
)

// NewUICommand creates the interactive recipe view command
func NewUICommand(groupId string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui [recipe-id]",
		Short: "Open a recipe in the terminal interface",
		Long: `Open the recipe card in a full screen terminal interface.

Press 'e' to edit, ctrl+s to save and esc to cancel. Logs go to the
configured log file while the interface is running.`,
		Args:    cobra.ExactArgs(1),
		RunE:    runUI,
		GroupID: groupId,
	}

	cmd.Flags().Bool("editing", false, "Start in editing mode")

	return cmd
}

// NewEditCommand is a shortcut for 'ui --editing'
func NewEditCommand(groupId string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [recipe-id]",
		Short: "Open a recipe in editing mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return launchUI(cmd, args[0], true)
		},
		GroupID: groupId,
	}
}

func runUI(cmd *cobra.Command, args []string) error {
	editing, _ := cmd.Flags().GetBool("editing")
	return launchUI(cmd, args[0], editing)
}

func launchUI(cmd *cobra.Command, recipeID string, editing bool) error {
	app, err := RequireApp(cmd.Context())
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logging moves to a file
	if err := app.Config.EnsureDirectories(); err != nil {
		return err
	}
	level := app.Config.Level()
	app.Logger.ResetOutputs()
	if err := app.Logger.AddFileOutput(level, app.Config.LogFile); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer app.Logger.Close()

	bridge := tui.NewBridge()
	defer bridge.Close()
	ctrl := app.NewController(controller.Options{
		Notifier:  bridge,
		Navigator: bridge,
		Confirmer: bridge,
	})

	model := tui.NewModel(tui.Options{
		Controller:   ctrl,
		Bridge:       bridge,
		Difficulties: app.Client,
		RecipeID:     recipeID,
		Editing:      editing,
		Messages:     app.Messages,
		DateFormat:   app.Config.DateFormat(),
		Context:      cmd.Context(),
		Logger:       app.Logger.Named("tui"),
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
