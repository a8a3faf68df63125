// recipe is a CLI tool for viewing and editing recipes on a recipe server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/n1rna/recipe-cli/internal/command"
	"github.com/n1rna/recipe-cli/internal/config"
	"github.com/n1rna/recipe-cli/internal/logger"
)

var (
	version     = "dev"
	globalFlags = struct {
		configPath string
		apiURL     string
		debug      bool
	}{}
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "recipe",
		Short: "recipe - View and edit recipes from the terminal",
		Long: `recipe is a CLI tool for viewing and editing recipe drafts.
It talks to a recipe server and offers both scriptable commands and an
interactive terminal interface.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(config.Overrides{
				ConfigPath: globalFlags.configPath,
				APIURL:     globalFlags.apiURL,
				Debug:      globalFlags.debug,
			})
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log := logger.GetLogger()
			log.SetLevel(cfg.Level())
			log.ResetOutputs()
			log.AddOutput(cfg.Level(), os.Stderr)
			log.SetShowFile(globalFlags.debug)

			app, err := command.NewApp(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			log.Debug("Using %s (token %s)", cfg.APIURL, config.MaskValue(cfg.Token))
			cmd.SetContext(command.WithApp(cmd.Context(), app))
			return nil
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&globalFlags.configPath, "config", "",
		"Configuration file (default: $RECIPE_CONFIG or ~/.recipe/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.apiURL, "api-url", "",
		"Recipe server URL (default: $RECIPE_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.debug, "debug", false, "Enable debug output")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "recipes",
		Title: "Recipe Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "development",
		Title: "Development:",
	})

	rootCmd.AddCommand(command.NewRecipeCommands("recipes")...)
	rootCmd.AddCommand(
		command.NewUICommand("recipes"),
		command.NewEditCommand("recipes"),
		command.NewDevServerCommand("development"),
		command.NewConfigCommand("development"),
	)

	rootCmd.SetVersionTemplate("recipe version {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
