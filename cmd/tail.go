package cmd

import (
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hogtail/hogtail/internal/logs"
	"github.com/hogtail/hogtail/internal/store"
	"github.com/hogtail/hogtail/pkg/lru"
)

// Tail command configuration constants
const (
	// DefaultTailLookback is how far back to start when beginning a tail session
	DefaultTailLookback = "-5m"

	// TailLRUCacheCapacity is the capacity of the LRU deduplication cache.
	// This prevents unbounded memory growth during long tail sessions.
	TailLRUCacheCapacity = 10000
)

var (
	tailSearch   string
	tailLevels   []string
	tailInterval int
)

var tailCmd = &cobra.Command{
	Use:   "tail <function>",
	Short: "Follow invocation logs in real-time",
	Long: `Follow a function's invocation logs as they arrive, similar to 'tail -f'.

Polls for new entries on a fixed interval and prints them in timestamp
order, deduplicated across polling cycles.

Examples:
  # Follow all new entries
  hogtail tail @geo-enricher

  # Only errors
  hogtail tail @geo-enricher --level error

  # Faster polling (every 2 seconds)
  hogtail tail @geo-enricher --interval 2`,
	Args: cobra.ExactArgs(1),
	RunE: runTail,
}

func init() {
	rootCmd.AddCommand(tailCmd)

	tailCmd.Flags().StringVarP(&tailSearch, "search", "s", "", "Substring to match in log messages")
	tailCmd.Flags().StringSliceVarP(&tailLevels, "level", "l", nil, "Levels to include (debug, log, info, warning, error)")
	tailCmd.Flags().IntVar(&tailInterval, "interval", 5, "Polling interval in seconds")
}

func runTail(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	functionID, err := app.ResolveFunction(args[0])
	if err != nil {
		return err
	}
	client, err := app.Client()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fn, err := client.GetFunction(ctx, functionID)
	if err != nil {
		return err
	}

	filters, err := buildFilters(tailSearch, tailLevels, DefaultTailLookback, "", "", true)
	if err != nil {
		return err
	}

	st := store.New(client, fn.Ref(), filters, store.Options{
		PollInterval: time.Duration(tailInterval) * time.Second,
		Logger:       app.Logger,
	})
	defer st.Close()

	// Use LRU cache to dedup across reloads and polls without holding
	// every printed key forever.
	seen := lru.New[string](TailLRUCacheCapacity)

	printNew := func(snap store.Snapshot) {
		entries := logs.Flatten(snap.Visible)
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		})
		for _, entry := range entries {
			if !seen.Add(entry.DedupKey()) {
				continue
			}
			app.Render.LogEntry(entry)
		}
	}

	unsubscribe := st.Subscribe(func(snap store.Snapshot) {
		printNew(snap)
		// Tail has no interactive reveal step: surface buffered entries
		// as soon as the poller reports them.
		if snap.HiddenCount > 0 {
			st.RevealHidden()
		}
	})
	defer unsubscribe()

	app.Render.Status("Tailing %s (Ctrl+C to stop)...", fn.Name)
	app.Render.Newline()

	if err := st.Refresh(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	app.Render.Newline()
	app.Render.Status("Stopping tail...")
	return nil
}
