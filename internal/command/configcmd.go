package command

import (
	"github.com/spf13/cobra"

	"github.com/n1rna/recipe-cli/internal/output"
)

// NewConfigCommand creates the config command
func NewConfigCommand(groupId string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration after the config file, environment variables
and flags have been applied. Tokens are masked.`,
		Args:    cobra.NoArgs,
		RunE:    runConfig,
		GroupID: groupId,
	}

	cmd.Flags().StringP("format", "f", "yaml", "Output format (yaml, json)")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	app, err := RequireApp(cmd.Context())
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	return output.NewPrinterWithWriter(cmd.OutOrStdout(), format, false).PrintObject(app.Config.Redacted())
}
