package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hogtail/hogtail/internal/output"
	"github.com/hogtail/hogtail/internal/ui"
)

var functionsType string

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List transform functions in the environment",
	Long: `List the transform functions registered in the environment.

Use the listed ids directly or map them to aliases in the config file
and address them as @alias everywhere.

Examples:
  # All functions
  hogtail functions

  # Transformations only
  hogtail functions --type transformation

  # As JSON, including configuration
  hogtail functions -o json`,
	RunE: runFunctions,
}

func init() {
	rootCmd.AddCommand(functionsCmd)

	functionsCmd.Flags().StringVar(&functionsType, "type", "", "Restrict to one function type (transformation, destination)")
}

func runFunctions(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	client, err := app.Client()
	if err != nil {
		return err
	}

	app.Render.Status("Fetching functions...")
	functions, err := client.ListFunctions(cmd.Context(), functionsType)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(app.Config.OutputFormat, cmd.OutOrStdout(),
		ui.WithNoColor(app.Config.NoColor),
		ui.WithQuiet(app.Config.Quiet))
	return formatter.FormatFunctions(functions)
}
