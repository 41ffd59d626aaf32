package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hogtail/hogtail/internal/ui"
)

var (
	host         string
	environment  string
	token        string
	outputFormat string
	cfgFile      string
	verbose      bool
	noColor      bool
	quiet        bool

	// render is the global renderer for all output
	render *ui.Renderer
)

var rootCmd = &cobra.Command{
	Use:   "hogtail",
	Short: "Browse, tail and retry transform function logs",
	Long: `hogtail - follow the invocation logs of your event transform functions.

Browse historical logs, tail new entries as they arrive, and retry failed
invocations against their original events.

Functions are addressed by id or by a config alias:
  hogtail logs 0195a1b2-...                    By function id
  hogtail logs @geo-enricher                   By config alias

Configuration:
  Create ~/.hogtail.yaml to define connection settings and aliases:

    host: https://us.posthog.com
    environment: 12345
    token: phx_xxxxxxxx

    functions:
      geo-enricher: 0195a1b2-0000-7000-8000-000000000001
      pii-scrubber: 0195a1b2-0000-7000-8000-000000000002

    output: text      # text, json, csv

  Every key can also come from the environment (HOGTAIL_HOST,
  HOGTAIL_TOKEN, ...) or a flag.

Examples:
  # Recent logs, warnings and errors only
  hogtail logs @geo-enricher --level warning,error

  # Follow new entries as they arrive
  hogtail tail @geo-enricher

  # Retry every failed invocation shown by a search
  hogtail retry @geo-enricher --search "timeout"`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	cobra.OnInitialize(initConfig, initRenderer)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.hogtail.yaml)")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "API host (e.g. https://us.posthog.com)")
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "Environment (project) id")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "Personal API token")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: text, json, csv")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress status messages")

	// Bind flags to viper
	_ = viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("environment", rootCmd.PersistentFlags().Lookup("environment"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initRenderer initializes the global renderer with current settings.
func initRenderer() {
	render = ui.NewRendererWithOptions(
		ui.WithNoColor(noColor || os.Getenv("NO_COLOR") != ""),
		ui.WithQuiet(quiet),
	)
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose || viper.GetBool("verbose")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".hogtail")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("HOGTAIL")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("output", "text")
	viper.SetDefault("history_max", 50)
	viper.SetDefault("poll_interval", 5)
	// history_file defaults to ~/.hogtail_history.json (handled in history pkg)

	// Read config file (ignore if not found, warn on other errors)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}
}

// newLogger builds the zap logger for internal packages. Debug level in
// verbose mode, silent otherwise: user-facing output goes through the
// renderer, the logger is for diagnostics.
func newLogger() *zap.Logger {
	if !IsVerbose() {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// getOutputFormat returns the output format from flags or config.
func getOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	return viper.GetString("output")
}
