package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hogtail/hogtail/internal/api"
	"github.com/hogtail/hogtail/internal/errors"
	"github.com/hogtail/hogtail/internal/history"
	"github.com/hogtail/hogtail/internal/logs"
	"github.com/hogtail/hogtail/internal/output"
	"github.com/hogtail/hogtail/internal/params"
	"github.com/hogtail/hogtail/internal/ui"
	"github.com/hogtail/hogtail/pkg/timeutil"
)

var (
	logsSearch    string
	logsLevels    []string
	logsFrom      string
	logsTo        string
	logsUngrouped bool
	logsInstance  string
	logsLimit     int
	logsCollapsed bool
	logsLink      bool
	logsExport    string
)

var logsCmd = &cobra.Command{
	Use:   "logs <function>",
	Short: "Show invocation logs for a function",
	Long: `Show the invocation logs of a transform function.

By default entries are grouped per invocation: one block per function
run, ordered newest first, covering the last seven days at every level
except DEBUG.

Examples:
  # Recent logs for a function
  hogtail logs @geo-enricher

  # Only warnings and errors containing "timeout"
  hogtail logs @geo-enricher --level warning,error --search timeout

  # A specific time window
  hogtail logs @geo-enricher --from -24h --to -1h

  # A single invocation, every line
  hogtail logs @geo-enricher --instance 0195a1b2-... --level debug,log,info,warning,error

  # Export as CSV
  hogtail logs @geo-enricher -o csv --export logs.csv

  # Print a link that opens the same view in the app
  hogtail logs @geo-enricher --search timeout --link`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVarP(&logsSearch, "search", "s", "", "Substring to match in log messages")
	logsCmd.Flags().StringSliceVarP(&logsLevels, "level", "l", nil, "Levels to include (debug, log, info, warning, error)")
	logsCmd.Flags().StringVar(&logsFrom, "from", "", "Window start (relative like -24h, or RFC3339; default -7d)")
	logsCmd.Flags().StringVar(&logsTo, "to", "", "Window end (default now)")
	logsCmd.Flags().BoolVar(&logsUngrouped, "ungrouped", false, "Flat entry list instead of per-invocation groups")
	logsCmd.Flags().StringVar(&logsInstance, "instance", "", "Restrict to one invocation id")
	logsCmd.Flags().IntVar(&logsLimit, "limit", 100, "Maximum rows (invocations when grouped) to fetch")
	logsCmd.Flags().BoolVar(&logsCollapsed, "collapsed", false, "Show group headers only")
	logsCmd.Flags().BoolVar(&logsLink, "link", false, "Print a shareable app link for this view")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "Write output to a file instead of stdout")
}

// buildFilters assembles the filter state shared by logs, tail and retry.
func buildFilters(search string, levels []string, from, to, instance string, ungrouped bool) (logs.Filters, error) {
	f := logs.DefaultFilters()
	f.Search = search
	f.Grouped = !ungrouped
	f.InstanceID = instance
	if from != "" {
		f.DateFrom = from
	}
	if to != "" {
		f.DateTo = to
	}
	if len(levels) > 0 {
		parsed, err := parseLevelFlag(levels)
		if err != nil {
			return logs.Filters{}, err
		}
		f.Levels = parsed
	}
	return f, nil
}

// parseLevelFlag validates level names before the forgiving wire parser
// gets them; a typo should fail loudly at the CLI, not silently match LOG.
func parseLevelFlag(raw []string) ([]logs.Level, error) {
	valid := make([]string, 0, len(logs.Levels))
	for _, l := range logs.Levels {
		valid = append(valid, strings.ToLower(l.String()))
	}
	for _, name := range raw {
		normalized := strings.ToUpper(strings.TrimSpace(name))
		if normalized == "WARN" {
			continue
		}
		known := false
		for _, l := range logs.Levels {
			if l.String() == normalized {
				known = true
				break
			}
		}
		if !known {
			return nil, errors.InvalidLevelError(name, valid)
		}
	}
	return logs.ParseLevels(raw), nil
}

// logParamsFromFilters resolves a filter state into fetch parameters.
func logParamsFromFilters(ref api.SourceRef, f logs.Filters, limit int, now time.Time) (api.LogParams, error) {
	start, end, err := timeutil.ParseRange(f.DateFrom, f.DateTo, now)
	if err != nil {
		return api.LogParams{}, errors.InvalidTimeError(f.DateFrom + ".." + f.DateTo)
	}
	p := api.LogParams{
		Source: ref,
		Levels: f.Levels,
		Start:  start,
		End:    end,
		Order:  api.OrderDesc,
		Limit:  limit,
	}
	if f.Search != "" {
		p.Search = []string{f.Search}
	}
	if f.InstanceID != "" {
		p.InstanceIDs = []string{f.InstanceID}
	}
	return p, nil
}

// shareURL builds the app link for a function's log view.
func shareURL(appHost, environment, functionID string, f logs.Filters) (string, error) {
	base := fmt.Sprintf("%s/project/%s/pipeline/%s/logs",
		strings.TrimRight(appHost, "/"), environment, functionID)
	return params.ShareURL(base, f)
}

// openExport returns the output writer, honoring --export.
func openExport(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create export file: %w", err)
	}
	return file, file.Close, nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	functionID, err := app.ResolveFunction(args[0])
	if err != nil {
		return err
	}

	filters, err := buildFilters(logsSearch, logsLevels, logsFrom, logsTo, logsInstance, logsUngrouped)
	if err != nil {
		return err
	}

	if logsLink {
		link, err := shareURL(app.Config.Host, app.Config.Environment, functionID, filters)
		if err != nil {
			return err
		}
		app.Render.Info("%s", link)
		return nil
	}

	client, err := app.Client()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	fn, err := client.GetFunction(ctx, functionID)
	if err != nil {
		return err
	}

	p, err := logParamsFromFilters(fn.Ref(), filters, logsLimit, time.Now())
	if err != nil {
		return err
	}
	for _, w := range timeutil.ValidateRange(p.Start, p.End, time.Now()) {
		if w.Level == "warning" {
			app.Render.Warning("%s", w.Message)
		} else {
			app.Render.Status("%s", w.Message)
		}
	}

	app.Render.Status("Fetching logs for %s...", fn.Name)

	writer, closeWriter, err := openExport(logsExport)
	if err != nil {
		return err
	}
	defer func() { _ = closeWriter() }()

	formatter := output.NewFormatter(app.Config.OutputFormat, writer,
		ui.WithNoColor(app.Config.NoColor || logsExport != ""),
		ui.WithQuiet(app.Config.Quiet)).
		WithHighlight(logsSearch)

	var resultCount int
	if filters.Grouped {
		groups, err := client.LoadGroupedLogs(ctx, p)
		if err != nil {
			return err
		}
		resultCount = len(groups)
		if err := formatter.FormatGroups(groups, logsCollapsed); err != nil {
			return err
		}
	} else {
		entries, err := client.LoadLogs(ctx, p)
		if err != nil {
			return err
		}
		resultCount = len(entries)
		if err := formatter.FormatEntries(entries); err != nil {
			return err
		}
	}

	recordHistory(app, args[0], filters, resultCount)
	return nil
}

// recordHistory appends the query to the history file. Failures are
// logged, never surfaced: history is a convenience.
func recordHistory(app *App, function string, f logs.Filters, resultCount int) {
	store, err := history.NewStore(viper.GetString("history_file"), viper.GetInt("history_max"))
	if err != nil {
		app.Debugf("history unavailable: %v", err)
		return
	}
	levels := make([]string, 0, len(f.Levels))
	for _, l := range f.Levels {
		levels = append(levels, l.String())
	}
	err = store.Add(history.Entry{
		Timestamp:   time.Now(),
		Function:    function,
		Search:      f.Search,
		Levels:      levels,
		DateFrom:    f.DateFrom,
		DateTo:      f.DateTo,
		Grouped:     f.Grouped,
		ResultCount: resultCount,
	})
	if err != nil {
		app.Debugf("failed to record history: %v", err)
	}
}
