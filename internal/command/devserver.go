package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/n1rna/recipe-cli/internal/devserver"
	"github.com/n1rna/recipe-cli/internal/output"
)

// NewDevServerCommand creates the dev-server command
func NewDevServerCommand(groupId string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run a local recipe backend",
		Long: `Run an in-memory backend that speaks the recipe API.

The server is seeded with the Easy, Medium and Hard difficulties and a
sample draft with the ID "sample". Flags default to the dev_server section
of the configuration file.

Examples:
  recipe dev-server
  recipe dev-server --addr localhost:4000 --token secret`,
		Args:    cobra.NoArgs,
		RunE:    runDevServer,
		GroupID: groupId,
	}

	cmd.Flags().String("addr", "", "Listen address")
	cmd.Flags().String("upload-dir", "", "Directory for uploaded images")
	cmd.Flags().String("token", "", "Require this bearer token")
	cmd.Flags().Bool("no-seed", false, "Start with an empty store")

	return cmd
}

func runDevServer(cmd *cobra.Command, args []string) error {
	app, err := RequireApp(cmd.Context())
	if err != nil {
		return err
	}

	opts := app.Config.DevServer
	if cmd.Flags().Changed("addr") {
		opts.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("upload-dir") {
		opts.UploadDir, _ = cmd.Flags().GetString("upload-dir")
	}
	if cmd.Flags().Changed("token") {
		opts.Token, _ = cmd.Flags().GetString("token")
	}
	noSeed, _ := cmd.Flags().GetBool("no-seed")

	server, err := devserver.New(devserver.Options{
		Token:     opts.Token,
		UploadDir: opts.UploadDir,
		Seed:      !noSeed,
		Logger:    app.Logger.Named("devserver"),
	})
	if err != nil {
		return err
	}

	printer := output.NewPrinterWithWriter(cmd.OutOrStdout(), output.FormatTable, false)
	printer.Info(fmt.Sprintf("Serving the recipe API on http://%s", opts.Addr))
	if !noSeed {
		printer.Info(fmt.Sprintf("Sample recipe: %s", devserver.SampleRecipeID))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(opts.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		printer.Success("Server stopped")
		return nil
	}
}
