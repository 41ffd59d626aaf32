package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hogtail/hogtail/internal/logs"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{
		Host:          server.URL,
		EnvironmentID: "42",
		Token:         "test-token",
		HTTPClient:    server.Client(),
	})
}

func TestLoadLogsParsesRowsPositionally(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/environments/42/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("auth header = %q", got)
		}

		var body struct {
			Query logsQuery `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if body.Query.Kind != "LogsQuery" {
			t.Errorf("kind = %q", body.Query.Kind)
		}
		if len(body.Query.Levels) != 1 || body.Query.Levels[0] != "ERROR" {
			t.Errorf("levels = %v", body.Query.Levels)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": [][]any{
				{"inst-1", "2026-08-01 12:00:01.000000", "ERROR", "boom"},
				{"inst-2", "2026-08-01T12:00:02Z", "INFO", "fine"},
			},
		})
	})

	entries, err := client.LoadLogs(context.Background(), LogParams{
		Source: SourceRef{Type: "hog_function", ID: "fn-1"},
		Levels: []logs.Level{logs.LevelError},
		Order:  OrderDesc,
		Limit:  100,
	})
	if err != nil {
		t.Fatalf("LoadLogs: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].InstanceID != "inst-1" || entries[0].Level != logs.LevelError || entries[0].Message != "boom" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	want := time.Date(2026, 8, 1, 12, 0, 2, 0, time.UTC)
	if !entries[1].Timestamp.Equal(want) {
		t.Errorf("entry 1 timestamp = %v, want %v", entries[1].Timestamp, want)
	}
}

func TestLoadGroupedLogsTwoStage(t *testing.T) {
	var queries []logsQuery
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query logsQuery `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		queries = append(queries, body.Query)

		if body.Query.Distinct {
			// Stage 1: matching instance ids, most recent first.
			_ = json.NewEncoder(w).Encode(map[string]any{
				"results": [][]any{{"inst-1"}, {"inst-2"}},
			})
			return
		}
		// Stage 2: every entry for those ids, including lines that did
		// not match the original filters.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": [][]any{
				{"inst-1", "2026-08-01 12:00:01", "INFO", "start"},
				{"inst-1", "2026-08-01 12:00:02", "ERROR", "boom"},
				{"inst-2", "2026-08-01 12:00:03", "INFO", "ok"},
			},
		})
	})

	groups, err := client.LoadGroupedLogs(context.Background(), LogParams{
		Source: SourceRef{Type: "hog_function", ID: "fn-1"},
		Levels: []logs.Level{logs.LevelError},
		Limit:  50,
	})
	if err != nil {
		t.Fatalf("LoadGroupedLogs: %v", err)
	}

	if len(queries) != 2 {
		t.Fatalf("queries issued = %d, want 2", len(queries))
	}
	if !queries[0].Distinct || queries[1].Distinct {
		t.Error("expected distinct id selection followed by full fetch")
	}
	if len(queries[1].InstanceIDs) != 2 {
		t.Errorf("stage 2 instance ids = %v", queries[1].InstanceIDs)
	}
	if len(queries[1].Levels) != 0 {
		t.Errorf("stage 2 must not filter levels, got %v", queries[1].Levels)
	}

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	// Most recently active invocation first.
	if groups[0].InstanceID != "inst-2" {
		t.Errorf("first group = %s", groups[0].InstanceID)
	}
	if groups[1].LogLevel != logs.LevelError {
		t.Errorf("inst-1 level = %s, want ERROR", groups[1].LogLevel)
	}
}

func TestLoadLogsSurfacesServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "query engine unavailable"}`, http.StatusBadGateway)
	})

	_, err := client.LoadLogs(context.Background(), LogParams{})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{input: "2026-08-01T12:00:00Z"},
		{input: "2026-08-01T12:00:00.123456789Z"},
		{input: "2026-08-01 12:00:00.000000"},
		{input: "2026-08-01 12:00:00.000"},
		{input: "2026-08-01 12:00:00"},
		{input: "not a timestamp", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		_, err := ParseTimestamp(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimestamp(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
