package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hogtail/hogtail/internal/api"
	"github.com/hogtail/hogtail/internal/logs"
)

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name      string
		search    string
		levels    []string
		from, to  string
		instance  string
		ungrouped bool
		wantErr   bool
		check     func(t *testing.T, f logs.Filters)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, f logs.Filters) {
				if !f.Grouped {
					t.Error("expected grouped by default")
				}
				if f.DateFrom != "-7d" {
					t.Errorf("DateFrom = %q, want -7d", f.DateFrom)
				}
				if len(f.Levels) != 4 {
					t.Errorf("levels = %v, want 4 defaults", f.Levels)
				}
			},
		},
		{
			name:   "explicit levels in severity order",
			levels: []string{"error", "warning"},
			check: func(t *testing.T, f logs.Filters) {
				if len(f.Levels) != 2 || f.Levels[0] != logs.LevelWarning || f.Levels[1] != logs.LevelError {
					t.Errorf("levels = %v", f.Levels)
				}
			},
		},
		{
			name:    "unknown level rejected",
			levels:  []string{"critical"},
			wantErr: true,
		},
		{
			name:      "window and mode overrides",
			from:      "-1d",
			to:        "-1h",
			ungrouped: true,
			check: func(t *testing.T, f logs.Filters) {
				if f.Grouped {
					t.Error("expected ungrouped")
				}
				if f.DateFrom != "-1d" || f.DateTo != "-1h" {
					t.Errorf("window = %q..%q", f.DateFrom, f.DateTo)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := buildFilters(tt.search, tt.levels, tt.from, tt.to, tt.instance, tt.ungrouped)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func TestLogParamsFromFilters(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ref := api.SourceRef{Type: "transformation", ID: "fn-1"}

	f := logs.DefaultFilters()
	f.Search = "timeout"
	f.InstanceID = "inst-1"

	p, err := logParamsFromFilters(ref, f, 50, now)
	if err != nil {
		t.Fatal(err)
	}
	if p.Start != now.AddDate(0, 0, -7) {
		t.Errorf("Start = %v", p.Start)
	}
	if p.End != now {
		t.Errorf("End = %v", p.End)
	}
	if len(p.Search) != 1 || p.Search[0] != "timeout" {
		t.Errorf("Search = %v", p.Search)
	}
	if len(p.InstanceIDs) != 1 || p.InstanceIDs[0] != "inst-1" {
		t.Errorf("InstanceIDs = %v", p.InstanceIDs)
	}
	if p.Order != api.OrderDesc || p.Limit != 50 {
		t.Errorf("Order = %v, Limit = %d", p.Order, p.Limit)
	}

	f.DateFrom = "garbage"
	if _, err := logParamsFromFilters(ref, f, 50, now); err == nil {
		t.Error("expected error for invalid window")
	}
}

func TestShareURL(t *testing.T) {
	f := logs.DefaultFilters()
	f.Search = "timeout"

	link, err := shareURL("https://us.posthog.com/", "12345", "fn-1", f)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"https://us.posthog.com/project/12345/pipeline/fn-1/logs?",
		"search=timeout",
		"grouped=true",
		"date_from=-7d",
	} {
		if !strings.Contains(link, want) {
			t.Errorf("link %q missing %q", link, want)
		}
	}
}

func TestResolveFunction(t *testing.T) {
	viper.Set("functions", map[string]string{
		"geo-enricher": "fn-123",
	})
	defer viper.Set("functions", nil)

	app := NewAppWithClient(Config{}, nil, nil)

	id, err := app.ResolveFunction("@geo-enricher")
	if err != nil {
		t.Fatal(err)
	}
	if id != "fn-123" {
		t.Errorf("id = %q", id)
	}

	id, err = app.ResolveFunction("raw-id")
	if err != nil || id != "raw-id" {
		t.Errorf("passthrough = %q, %v", id, err)
	}

	_, err = app.ResolveFunction("@geo-enrichers")
	if err == nil {
		t.Fatal("expected error for unknown alias")
	}
	if !strings.Contains(err.Error(), "geo-enricher") {
		t.Errorf("error should suggest the close alias: %v", err)
	}
}

func TestAppClientRequiresConfig(t *testing.T) {
	app := NewAppWithClient(Config{}, nil, nil)
	app.client = nil

	if _, err := app.Client(); err == nil {
		t.Error("expected error without connection settings")
	}

	app = NewAppWithClient(Config{Host: "https://x", Environment: "1"}, nil, nil)
	app.client = nil
	if _, err := app.Client(); err == nil || !strings.Contains(err.Error(), "token") {
		t.Errorf("expected token error, got %v", err)
	}
}

func TestDefaultConfigTemplate(t *testing.T) {
	checks := []string{
		"output: text",
		"history_max:",
		"poll_interval:",
		"functions:",
	}
	for _, check := range checks {
		if !strings.Contains(defaultConfigTemplate, check) {
			t.Errorf("default config should contain %q", check)
		}
	}
}

func TestSetAndGetApp(t *testing.T) {
	cfg := Config{
		Host:    "https://eu.posthog.com",
		Verbose: true,
	}
	app := NewAppWithClient(cfg, nil, nil)

	ctx := SetApp(t.Context(), app)

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)

	retrieved := GetApp(cmd)
	if retrieved.Config.Host != "https://eu.posthog.com" {
		t.Errorf("host = %q", retrieved.Config.Host)
	}
	if !retrieved.Config.Verbose {
		t.Error("expected verbose to be true")
	}
}
