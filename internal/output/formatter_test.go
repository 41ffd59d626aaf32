package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hogtail/hogtail/internal/api"
	"github.com/hogtail/hogtail/internal/logs"
	"github.com/hogtail/hogtail/internal/ui"
)

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer

	tests := []struct {
		format string
		want   Format
	}{
		{"text", FormatText},
		{"json", FormatJSON},
		{"csv", FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f := NewFormatter(tt.format, &buf)
			if f.format != tt.want {
				t.Errorf("NewFormatter(%q).format = %v, want %v", tt.format, f.format, tt.want)
			}
		})
	}
}

func sampleEntries() []logs.LogEntry {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []logs.LogEntry{
		{InstanceID: "0195a1b2-0000-7000-8000-000000000001", Level: logs.LevelInfo, Message: "starting run", Timestamp: ts},
		{InstanceID: "0195a1b2-0000-7000-8000-000000000001", Level: logs.LevelError, Message: "boom", Timestamp: ts.Add(time.Second)},
	}
}

func TestFormatEntriesText(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("text", &buf, ui.WithNoColor(true))

	if err := f.FormatEntries(sampleEntries()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"starting run", "boom", "ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatEntriesJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("json", &buf)

	if err := f.FormatEntries(sampleEntries()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("entries = %d, want 2", len(decoded))
	}
	if decoded[1]["level"] != "ERROR" {
		t.Errorf("level = %v", decoded[1]["level"])
	}
}

func TestFormatEntriesCSV(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("csv", &buf)

	if err := f.FormatEntries(sampleEntries()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 records", len(lines))
	}
	if lines[0] != "timestamp,instance_id,level,message" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestFormatGroupsCSVFlattens(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("csv", &buf)

	groups := logs.GroupAndSanitize(sampleEntries())
	if err := f.FormatGroups(groups, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 flattened records", len(lines))
	}
}

func TestFormatFunctionsTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("text", &buf, ui.WithNoColor(true))

	err := f.FormatFunctions([]api.Function{
		{ID: "fn-1", Name: "geo-enricher", Type: "transformation", Enabled: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "geo-enricher") || !strings.Contains(out, "enabled") {
		t.Errorf("unexpected table output:\n%s", out)
	}
}

func TestTruncateMessage(t *testing.T) {
	got := truncateMessage("line one\nline two", 12)
	if got != "line one lin..." {
		t.Errorf("truncateMessage = %q", got)
	}
}
