// Package command contains CLI command implementations.
package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n1rna/recipe-cli/internal/controller"
	"github.com/n1rna/recipe-cli/internal/i18n"
	"github.com/n1rna/recipe-cli/internal/output"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

// RecipeCommand implements the non-interactive recipe commands
type RecipeCommand struct{}

// NewRecipeCommands creates show, set, image, delete and difficulties
func NewRecipeCommands(groupId string) []*cobra.Command {
	rc := &RecipeCommand{}

	cmds := []*cobra.Command{
		rc.newShowCommand(),
		rc.newSetCommand(),
		rc.newImageCommand(),
		rc.newDeleteCommand(),
		rc.newDifficultiesCommand(),
	}
	for _, cmd := range cmds {
		cmd.GroupID = groupId
	}
	return cmds
}

func (c *RecipeCommand) newShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [recipe-id]",
		Short: "Show a recipe",
		Long: `Fetch a recipe and print it.

Examples:
  # Show a recipe card
  recipe show 3f1c...

  # Machine readable output
  recipe show 3f1c... -f json`,
		Args: cobra.ExactArgs(1),
		RunE: c.runShow,
	}

	cmd.Flags().StringP("format", "f", "table", "Output format (table, json, yaml)")

	return cmd
}

func (c *RecipeCommand) newSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [recipe-id]",
		Short: "Edit recipe fields and save",
		Long: `Load a recipe, apply the given changes and save it.
Only the flags you pass are changed. The whole recipe is submitted.

Examples:
  recipe set 3f1c... --name 'Seafood paella' --servings 6
  recipe set 3f1c... --ingredient 'Saffron=a pinch' --image ./paella.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: c.runSet,
	}

	cmd.Flags().String("name", "", "Recipe name")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("time", "", "Preparation time")
	cmd.Flags().String("servings", "", "Servings")
	cmd.Flags().String("method", "", "Method")
	cmd.Flags().String("difficulty-id", "", "Difficulty ID (see 'recipe difficulties')")
	cmd.Flags().StringArray("ingredient", nil, "Add an ingredient in format 'name=amount'")
	cmd.Flags().StringSlice("remove-ingredient", nil, "Remove ingredients by key")
	cmd.Flags().String("image", "", "Upload this image file with the save")
	cmd.Flags().Bool("quiet", false, "Suppress non-error output")

	return cmd
}

func (c *RecipeCommand) newImageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image [recipe-id] [file]",
		Short: "Upload a new image for a recipe",
		Args:  cobra.ExactArgs(2),
		RunE:  c.runImage,
	}

	cmd.Flags().Bool("quiet", false, "Suppress non-error output")

	return cmd
}

func (c *RecipeCommand) newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [recipe-id]",
		Short: "Delete a recipe draft",
		Long: `Delete a recipe after confirmation.

This operation cannot be undone. When stdin is not a terminal, --yes is required.`,
		Args: cobra.ExactArgs(1),
		RunE: c.runDelete,
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().Bool("quiet", false, "Suppress non-error output")

	return cmd
}

func (c *RecipeCommand) newDifficultiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "difficulties",
		Short: "List the difficulty classifications",
		Args:  cobra.NoArgs,
		RunE:  c.runDifficulties,
	}

	cmd.Flags().StringP("format", "f", "table", "Output format (table, json, yaml)")

	return cmd
}

// session is a controller bound to one command invocation
type session struct {
	app     *App
	ctrl    *controller.Controller
	nav     *cliNavigator
	printer *output.Printer
}

func (c *RecipeCommand) newSession(cmd *cobra.Command, format output.Format, confirmer controller.Confirmer) (*session, error) {
	app, err := RequireApp(cmd.Context())
	if err != nil {
		return nil, err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	printer := output.NewPrinterWithWriter(cmd.OutOrStdout(), format, quiet)
	printer.SetLocale(app.Messages, app.Config.DateFormat())

	nav := &cliNavigator{}
	ctrl := app.NewController(controller.Options{
		Notifier:  printer,
		Navigator: nav,
		Confirmer: confirmer,
	})

	return &session{app: app, ctrl: ctrl, nav: nav, printer: printer}, nil
}

// load fetches the recipe, mapping a not-found navigation to an error
func (s *session) load(cmd *cobra.Command, recipeID string) error {
	if err := s.ctrl.Load(cmd.Context(), recipeID); err != nil {
		if s.nav.notFound {
			return fmt.Errorf("recipe %s not found", recipeID)
		}
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	return nil
}

// stage reads an image file and stages it for the next save
func (s *session) stage(path string) error {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return fmt.Errorf("image file %s has no extension", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	s.ctrl.StageFile(content, ext)
	return nil
}

func (c *RecipeCommand) runShow(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	s, err := c.newSession(cmd, format, nil)
	if err != nil {
		return err
	}
	if err := s.load(cmd, args[0]); err != nil {
		return err
	}

	return s.printer.PrintRecipe(s.ctrl.Buffer())
}

func (c *RecipeCommand) runSet(cmd *cobra.Command, args []string) error {
	s, err := c.newSession(cmd, output.FormatTable, nil)
	if err != nil {
		return err
	}
	if err := s.load(cmd, args[0]); err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := 0
	setters := []struct {
		flag string
		set  func(string)
	}{
		{"name", s.ctrl.SetName},
		{"description", s.ctrl.SetDescription},
		{"time", s.ctrl.SetTime},
		{"servings", s.ctrl.SetServings},
		{"method", s.ctrl.SetMethod},
	}
	for _, setter := range setters {
		if flags.Changed(setter.flag) {
			value, _ := flags.GetString(setter.flag)
			setter.set(value)
			changed++
		}
	}

	if flags.Changed("difficulty-id") {
		id, _ := flags.GetString("difficulty-id")
		d, err := c.findDifficulty(cmd, s.app, id)
		if err != nil {
			return err
		}
		s.ctrl.SetDifficulty(d)
		changed++
	}

	ingredients, _ := flags.GetStringArray("ingredient")
	for _, entry := range ingredients {
		name, amount, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid ingredient: %s (use name=amount format)", entry)
		}
		s.ctrl.AddIngredient(recipe.Ingredient{Name: strings.TrimSpace(name), Amount: strings.TrimSpace(amount)})
		changed++
	}

	removals, _ := flags.GetStringSlice("remove-ingredient")
	for _, key := range removals {
		if _, ok := s.ctrl.Buffer().Ingredients[key]; !ok {
			return fmt.Errorf("ingredient %s not found", key)
		}
		s.ctrl.RemoveIngredient(key)
		changed++
	}

	if image, _ := flags.GetString("image"); image != "" {
		if err := s.stage(image); err != nil {
			return err
		}
		changed++
	}

	if changed == 0 {
		return fmt.Errorf("nothing to change; pass at least one field flag")
	}

	if err := s.ctrl.Save(cmd.Context()); err != nil {
		return err
	}
	return s.uploadPending()
}

// uploadPending reports a staged image that is still waiting after a save
func (s *session) uploadPending() error {
	if _, pending := s.ctrl.Staged(); pending {
		return fmt.Errorf("recipe saved but the image upload failed")
	}
	return nil
}

// findDifficulty resolves a difficulty ID against the server's list
func (c *RecipeCommand) findDifficulty(cmd *cobra.Command, app *App, id string) (recipe.Difficulty, error) {
	list, err := app.Client.ListDifficulties(cmd.Context())
	if err != nil {
		return recipe.Difficulty{}, fmt.Errorf("failed to list difficulties: %w", err)
	}
	for _, d := range list {
		if d.ID == id {
			return d, nil
		}
	}
	return recipe.Difficulty{}, fmt.Errorf("difficulty %s not found", id)
}

func (c *RecipeCommand) runImage(cmd *cobra.Command, args []string) error {
	s, err := c.newSession(cmd, output.FormatTable, nil)
	if err != nil {
		return err
	}
	if err := s.load(cmd, args[0]); err != nil {
		return err
	}
	if err := s.stage(args[1]); err != nil {
		return err
	}

	if err := s.ctrl.Save(cmd.Context()); err != nil {
		return err
	}
	return s.uploadPending()
}

func (c *RecipeCommand) runDelete(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	confirmer := newTerminalConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), yes)

	s, err := c.newSession(cmd, output.FormatTable, confirmer)
	if err != nil {
		return err
	}
	if err := s.load(cmd, args[0]); err != nil {
		return err
	}

	deleted, err := s.ctrl.DeleteDraft(cmd.Context())
	if err != nil {
		return err
	}
	if !deleted {
		s.printer.Info("Deletion cancelled")
		return nil
	}

	s.printer.Success(s.app.Messages.Get(i18n.RecipeDeleted, args[0]))
	return nil
}

func (c *RecipeCommand) runDifficulties(cmd *cobra.Command, args []string) error {
	app, err := RequireApp(cmd.Context())
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	list, err := app.Client.ListDifficulties(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list difficulties: %w", err)
	}

	return output.NewPrinterWithWriter(cmd.OutOrStdout(), format, false).PrintDifficulties(list)
}
