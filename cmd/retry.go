package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/hogtail/hogtail/internal/logs"
	"github.com/hogtail/hogtail/internal/retry"
	"github.com/hogtail/hogtail/internal/store"
)

var (
	retrySearch   string
	retryLevels   []string
	retryFrom     string
	retryTo       string
	retryInstance string
	retryLimit    int
	retryDryRun   bool
)

var retryCmd = &cobra.Command{
	Use:   "retry <function>",
	Short: "Retry invocations against their original events",
	Long: `Re-run selected invocations of a function against the events that
originally triggered them.

The invocations to retry are selected with the same filters as 'logs'.
By default only invocations whose logs contain an ERROR entry are
selected. Each invocation's source event is recovered from its log
messages, the events are fetched in one batch, and the function is
re-invoked with bounded parallelism. One invocation failing never stops
the others.

Examples:
  # Retry every failed invocation of the last 7 days
  hogtail retry @geo-enricher

  # Retry failures mentioning "timeout" in the last day
  hogtail retry @geo-enricher --search timeout --from -1d

  # Retry one specific invocation
  hogtail retry @geo-enricher --instance 0195a1b2-...

  # Show what would be retried without invoking anything
  hogtail retry @geo-enricher --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRetry,
}

func init() {
	rootCmd.AddCommand(retryCmd)

	retryCmd.Flags().StringVarP(&retrySearch, "search", "s", "", "Substring to match in log messages")
	retryCmd.Flags().StringSliceVarP(&retryLevels, "level", "l", []string{"error"}, "Levels selecting invocations to retry")
	retryCmd.Flags().StringVar(&retryFrom, "from", "", "Window start (default -7d)")
	retryCmd.Flags().StringVar(&retryTo, "to", "", "Window end (default now)")
	retryCmd.Flags().StringVar(&retryInstance, "instance", "", "Retry one invocation id")
	retryCmd.Flags().IntVar(&retryLimit, "limit", 100, "Maximum invocations to select")
	retryCmd.Flags().BoolVar(&retryDryRun, "dry-run", false, "List selected invocations without retrying")
}

// statusSink prints per-invocation progress as the orchestrator reports
// it. It satisfies the orchestrator's sink in place of a viewer store.
type statusSink struct {
	app *App

	mu      sync.Mutex
	entries int
}

func (s *statusSink) SetRetryStatus(instanceID string, status store.RetryStatus) {
	switch status {
	case store.RetrySuccess:
		s.app.Render.Success("  %s succeeded", instanceID)
	case store.RetryFailure:
		s.app.Render.Error("  %s failed", instanceID)
	}
}

func (s *statusSink) AddGroups(groups []logs.GroupedLogEntry) {
	s.mu.Lock()
	for _, g := range groups {
		s.entries += len(g.Entries)
	}
	s.mu.Unlock()
}

func runRetry(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	functionID, err := app.ResolveFunction(args[0])
	if err != nil {
		return err
	}
	client, err := app.Client()
	if err != nil {
		return err
	}

	filters, err := buildFilters(retrySearch, retryLevels, retryFrom, retryTo, retryInstance, false)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	fn, err := client.GetFunction(ctx, functionID)
	if err != nil {
		return err
	}

	p, err := logParamsFromFilters(fn.Ref(), filters, retryLimit, time.Now())
	if err != nil {
		return err
	}

	app.Render.Status("Selecting invocations for %s...", fn.Name)
	groups, err := client.LoadGroupedLogs(ctx, p)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		app.Render.Info("No matching invocations.")
		return nil
	}

	if retryDryRun {
		app.Render.Info("Would retry %d invocation(s):", len(groups))
		for _, g := range groups {
			eventID, ok := retry.ExtractEventID(g)
			if !ok {
				eventID = "(no event id in logs)"
			}
			app.Render.Info("  %s  event %s", g.InstanceID, eventID)
		}
		return nil
	}

	app.Render.Status("Retrying %d invocation(s)...", len(groups))

	sink := &statusSink{app: app}
	orchestrator := retry.New(client, sink, app.Logger)
	result, err := orchestrator.Retry(ctx, functionID, groups)
	if err != nil {
		app.Render.Error("%v", err)
	}

	app.Render.Newline()
	app.Render.Info("Retried %d invocation(s): %d succeeded, %d failed",
		len(groups), len(result.Succeeded), len(result.Failed))
	for _, instanceID := range result.Failed {
		app.Render.Info("  %s: %v", instanceID, result.Errors[instanceID])
	}
	if sink.entries > 0 {
		app.Render.Info("Captured %d fresh log entries; view them with 'hogtail logs %s'", sink.entries, args[0])
	}

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d retries failed", len(result.Failed), len(groups))
	}
	return nil
}
