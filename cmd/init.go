package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize hogtail configuration",
	Long: `Create default configuration and history files.

Creates platform-appropriate config files:
  Linux/macOS: ~/.hogtail.yaml, ~/.hogtail_history.json
  Windows:     %USERPROFILE%\.hogtail.yaml, %USERPROFILE%\.hogtail_history.json

Examples:
  # Create default config (won't overwrite existing)
  hogtail init

  # Force overwrite existing config
  hogtail init --force`,
	RunE: runInitCmd,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(home, ".hogtail.yaml")
	historyPath := filepath.Join(home, ".hogtail_history.json")

	if err := createFileIfNotExists(configPath, defaultConfigTemplate, initForce); err != nil {
		return err
	}
	if err := createFileIfNotExists(historyPath, "[]", initForce); err != nil {
		return err
	}

	fmt.Println("Initialized hogtail configuration:")
	fmt.Printf("  Config:  %s\n", configPath)
	fmt.Printf("  History: %s\n", historyPath)
	fmt.Printf("\nEdit %s to customize your settings.\n", configPath)

	return nil
}

const defaultConfigTemplate = `# hogtail configuration

# Connection settings
# host: https://us.posthog.com
# environment: 12345
# token: phx_xxxxxxxx

# Default output format: text, json, csv
output: text

# Polling interval for 'hogtail tail', in seconds
poll_interval: 5

# History settings
history_max: 50
# history_file: ~/.hogtail_history.json

# Aliases for frequently used functions
# functions:
#   geo-enricher: 0195a1b2-0000-7000-8000-000000000001
#   pii-scrubber: 0195a1b2-0000-7000-8000-000000000002

# Origins allowed to exchange toolbar messages ('hogtail toolbar')
# authorized_urls:
#   - https://app.example.com
#   - https://*.staging.example.com
`

func createFileIfNotExists(path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("  %s already exists (use --force to overwrite)\n", path)
			return nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("  Created %s\n", path)
	return nil
}
