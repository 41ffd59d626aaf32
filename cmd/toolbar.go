package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hogtail/hogtail/internal/frame"
)

var toolbarOrigin string

var toolbarCmd = &cobra.Command{
	Use:   "toolbar",
	Short: "Decode and validate toolbar handshake messages",
	Long: `Decode the tagged messages exchanged with the embedded toolbar.

Reads one JSON envelope ({"type": ..., "payload": ...}) per line from
stdin, checks the claimed origin against the authorized_urls list in the
config, and prints the decoded payload of each known message type.
Useful for debugging an embed handshake captured from the browser.

Examples:
  # Validate a captured handshake against the configured allowlist
  cat handshake.jsonl | hogtail toolbar --origin https://app.example.com

  # A disallowed origin is rejected before any decoding
  echo '{"type":"ph-toolbar-ready"}' | hogtail toolbar --origin https://evil.com`,
	RunE: runToolbar,
}

func init() {
	rootCmd.AddCommand(toolbarCmd)

	toolbarCmd.Flags().StringVar(&toolbarOrigin, "origin", "", "Origin the messages claim to come from (required)")
	_ = toolbarCmd.MarkFlagRequired("origin")
}

func runToolbar(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	authorized := viper.GetStringSlice("authorized_urls")
	if len(authorized) == 0 {
		return fmt.Errorf("no authorized_urls configured - add them to %s", viper.ConfigFileUsed())
	}

	dispatcher := frame.NewDispatcher(frame.NewAllowlist(authorized), app.Logger)

	dispatcher.Handle(frame.TypeAppInit, func(msg frame.Message) error {
		var init frame.AppInit
		if err := msg.Decode(&init); err != nil {
			return err
		}
		app.Render.KeyValue("app-init", fmt.Sprintf("api host %s", init.APIHost))
		return nil
	})
	dispatcher.Handle(frame.TypeToolbarReady, func(frame.Message) error {
		app.Render.KeyValue("toolbar-ready", "")
		return nil
	})
	dispatcher.Handle(frame.TypeHeatmapsConfig, func(msg frame.Message) error {
		var cfg frame.HeatmapConfig
		if err := msg.Decode(&cfg); err != nil {
			return err
		}
		app.Render.KeyValue("heatmaps-config",
			fmt.Sprintf("%s/%s viewport %d-%d", cfg.Type, cfg.AggregationType, cfg.ViewportMin, cfg.ViewportMax))
		return nil
	})
	dispatcher.Handle(frame.TypeToolbarClose, func(frame.Message) error {
		app.Render.KeyValue("toolbar-close", "")
		return nil
	})

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		if err := dispatcher.Dispatch(toolbarOrigin, raw); err != nil {
			app.Render.Error("line %d: %v", line, err)
		}
	}
	return scanner.Err()
}
