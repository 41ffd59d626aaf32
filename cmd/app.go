package cmd

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hogtail/hogtail/internal/api"
	"github.com/hogtail/hogtail/internal/errors"
	"github.com/hogtail/hogtail/internal/ui"
)

// appContextKey is the context key for the App instance.
type appContextKey struct{}

// Config holds all configuration values that were previously global.
type Config struct {
	Host         string
	Environment  string
	Token        string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Quiet        bool
}

// App holds the application dependencies that can be injected for testing.
type App struct {
	Config Config
	Render *ui.Renderer
	Logger *zap.Logger

	// client is lazily created; tests inject their own via NewAppWithClient.
	client *api.Client
}

// NewApp creates a new App with default configuration from viper.
func NewApp() *App {
	cfg := Config{
		Host:         viper.GetString("host"),
		Environment:  viper.GetString("environment"),
		Token:        viper.GetString("token"),
		OutputFormat: getOutputFormat(),
		Verbose:      IsVerbose(),
		NoColor:      noColor,
		Quiet:        quiet,
	}
	return &App{
		Config: cfg,
		Render: render,
		Logger: newLogger(),
	}
}

// NewAppWithClient creates a new App around an existing API client.
// This is primarily used for testing.
func NewAppWithClient(cfg Config, renderer *ui.Renderer, client *api.Client) *App {
	return &App{
		Config: cfg,
		Render: renderer,
		Logger: zap.NewNop(),
		client: client,
	}
}

// GetApp retrieves the App from the command context.
// If no App is set, it creates a new default one.
func GetApp(cmd *cobra.Command) *App {
	if app, ok := cmd.Context().Value(appContextKey{}).(*App); ok {
		return app
	}
	return NewApp()
}

// SetApp stores the App in the context for a command.
func SetApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appContextKey{}, app)
}

// Debugf prints a debug message if verbose mode is enabled.
func (a *App) Debugf(format string, args ...interface{}) {
	if a.Config.Verbose || viper.GetBool("verbose") {
		a.Render.Debug(format, args...)
	}
}

// Client returns the API client, creating it on first use. Missing
// connection settings surface as suggestive errors.
func (a *App) Client() (*api.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.Config.Host == "" {
		return nil, errors.MissingConfigError("host")
	}
	if a.Config.Environment == "" {
		return nil, errors.MissingConfigError("environment")
	}
	if a.Config.Token == "" {
		return nil, errors.MissingConfigError("token")
	}

	a.client = api.New(api.Config{
		Host:          a.Config.Host,
		EnvironmentID: a.Config.Environment,
		Token:         a.Config.Token,
		Logger:        a.Logger,
	})
	return a.client, nil
}

// ResolveFunction turns a function argument into an id. "@alias" goes
// through the config alias map; anything else passes through as-is.
func (a *App) ResolveFunction(input string) (string, error) {
	if !strings.HasPrefix(input, "@") {
		return input, nil
	}
	alias := strings.TrimPrefix(input, "@")

	aliases := viper.GetStringMapString("functions")
	if id, ok := aliases[strings.ToLower(alias)]; ok {
		return id, nil
	}

	available := make([]string, 0, len(aliases))
	for name := range aliases {
		available = append(available, name)
	}
	sort.Strings(available)
	return "", errors.FunctionNotFoundError(alias, available)
}
