package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hogtail/hogtail/internal/history"
	"github.com/hogtail/hogtail/internal/ui"
)

var (
	historyClear bool
	historyRun   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View query history",
	Long: `View and manage your query history.

Shows recent log queries, allowing you to quickly re-run previous ones.

Examples:
  # List recent queries
  hogtail history

  # Clear all history
  hogtail history --clear

  # Re-run query #3 from history
  hogtail history --run 3`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Clear query history")
	historyCmd.Flags().IntVar(&historyRun, "run", 0, "Re-run query by number")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(viper.GetString("history_file"), viper.GetInt("history_max"))
	if err != nil {
		return err
	}

	if historyClear {
		if err := store.Clear(); err != nil {
			return err
		}
		render.Success("History cleared")
		return nil
	}

	entries, err := store.Load()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		render.Info("No query history found.")
		return nil
	}

	// Re-run a specific query
	if historyRun > 0 {
		if historyRun > len(entries) {
			return fmt.Errorf("query #%d not found (history has %d entries)", historyRun, len(entries))
		}
		entry := entries[historyRun-1]
		render.Status("Re-running query from %s...", entry.Timestamp.Format("2006-01-02 15:04:05"))
		render.Newline()

		logsSearch = entry.Search
		logsLevels = entry.Levels
		logsFrom = entry.DateFrom
		logsTo = entry.DateTo
		logsUngrouped = !entry.Grouped

		return runLogs(cmd, []string{entry.Function})
	}

	// Display history
	for i, entry := range entries {
		num := ui.LabelStyle.Render(fmt.Sprintf("[%d]", i+1))
		ts := ui.MutedStyle.Render(entry.Timestamp.Format("2006-01-02 15:04:05"))
		function := ui.SuccessStyle.Render(entry.Function)

		var parts []string
		if entry.Search != "" {
			parts = append(parts, fmt.Sprintf("-s %q", entry.Search))
		}
		if len(entry.Levels) > 0 {
			parts = append(parts, "-l "+strings.Join(entry.Levels, ","))
		}
		if entry.DateFrom != "" {
			parts = append(parts, "--from "+entry.DateFrom)
		}

		var resultInfo string
		if entry.ResultCount > 0 {
			resultInfo = ui.MutedStyle.Render(fmt.Sprintf("(%d results)", entry.ResultCount))
		}

		fmt.Printf("%s %s  %s  %s  %s\n", num, ts, function, strings.Join(parts, "  "), resultInfo)
	}

	render.Newline()
	render.Info("Use 'hogtail history --run N' to re-run a query")
	return nil
}
