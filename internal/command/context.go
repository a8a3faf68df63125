package command

import (
	"context"
	"fmt"

	"github.com/n1rna/recipe-cli/internal/api"
	"github.com/n1rna/recipe-cli/internal/config"
	"github.com/n1rna/recipe-cli/internal/controller"
	"github.com/n1rna/recipe-cli/internal/i18n"
	"github.com/n1rna/recipe-cli/internal/logger"
)

// App holds the services shared by all commands
type App struct {
	Config   *config.Config
	Client   *api.Client
	Logger   *logger.Logger
	Messages *i18n.Messages
}

// NewApp builds the services described by cfg
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	msgs, err := i18n.New(cfg.Locale)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &App{
		Config:   cfg,
		Client:   api.NewClient(cfg.APIURL, cfg.Token, api.WithCacheTTL(cfg.CacheTTL)),
		Logger:   log,
		Messages: msgs,
	}, nil
}

// NewController creates a recipe controller backed by the app's client. The
// Store, Uploader, Messages and Logger fields of opts are filled in.
func (a *App) NewController(opts controller.Options) *controller.Controller {
	opts.Store = a.Client
	opts.Uploader = a.Client
	opts.Messages = a.Messages
	opts.Logger = a.Logger.Named("controller")
	return controller.New(opts)
}

type appKey struct{}

// WithApp returns a new context with the app instance
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// GetApp retrieves the app instance from the context
func GetApp(ctx context.Context) *App {
	if app, ok := ctx.Value(appKey{}).(*App); ok {
		return app
	}
	return nil
}

// RequireApp retrieves the app and returns an error if not found
func RequireApp(ctx context.Context) (*App, error) {
	app := GetApp(ctx)
	if app == nil {
		return nil, fmt.Errorf("application context not initialized")
	}
	return app, nil
}
