package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hogtail/hogtail/internal/settings"
)

var (
	settingsSearch string
	settingsScope  string
	settingsFlat   bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Browse the settings catalog",
	Long: `Browse the catalog of platform settings, grouped by scope
(user, organization, project, environment).

Examples:
  # Full catalog
  hogtail settings

  # Search across titles and descriptions
  hogtail settings --search retention

  # One scope only
  hogtail settings --scope environment

  # Flat list of every setting
  hogtail settings --flat`,
	RunE: runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.Flags().StringVarP(&settingsSearch, "search", "s", "", "Filter sections and settings by text")
	settingsCmd.Flags().StringVar(&settingsScope, "scope", "", "Restrict to one scope (user, organization, project, environment)")
	settingsCmd.Flags().BoolVar(&settingsFlat, "flat", false, "Flat list instead of the scope tree")
}

func runSettings(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	catalog := settings.Default().Filter(settingsSearch)

	if settingsScope != "" {
		scope := settings.Scope(settingsScope)
		valid := false
		for _, s := range settings.Scopes {
			if s == scope {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown scope %q (user, organization, project, environment)", settingsScope)
		}
		catalog = &settings.Catalog{Sections: catalog.ForScope(scope)}
	}

	if len(catalog.Sections) == 0 {
		app.Render.Info("No matching settings.")
		return nil
	}

	if settingsFlat {
		for _, item := range catalog.Flatten() {
			app.Render.KeyValue(item.Section.Title+" / "+item.Setting.Title, item.Setting.Description)
		}
		return nil
	}

	for _, scope := range settings.Scopes {
		sections := catalog.ForScope(scope)
		if len(sections) == 0 {
			continue
		}
		app.Render.Section(string(scope))
		for _, section := range sections {
			app.Render.KeyValueIndent(section.Title, "", 1)
			for _, s := range section.Settings {
				app.Render.KeyValueIndent(s.Title, s.Description, 2)
			}
		}
	}
	return nil
}
