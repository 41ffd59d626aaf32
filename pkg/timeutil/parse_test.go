package timeutil

import (
	"testing"
	"time"
)

var now = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

func TestParseBound(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "empty means now", input: "", want: now},
		{name: "explicit now", input: "now", want: now},
		{name: "relative days with sign", input: "-7d", want: now.Add(-7 * 24 * time.Hour)},
		{name: "relative days without sign", input: "7d", want: now.Add(-7 * 24 * time.Hour)},
		{name: "relative minutes", input: "-30m", want: now.Add(-30 * time.Minute)},
		{name: "relative hours", input: "-2h", want: now.Add(-2 * time.Hour)},
		{name: "relative weeks", input: "-1w", want: now.Add(-7 * 24 * time.Hour)},
		{name: "rfc3339", input: "2026-08-01T06:00:00Z", want: time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)},
		{name: "date only", input: "2026-08-01", want: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "yesterday-ish", wantErr: true},
		{name: "unknown unit", input: "-7y", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBound(tt.input, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBound(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBound(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseBound(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange("-7d", "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(now.Add(-7 * 24 * time.Hour)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(now) {
		t.Errorf("end = %v", end)
	}

	if _, _, err := ParseRange("now", "-1d", now); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{name: "normal range", start: now.Add(-time.Hour), end: now, want: 0},
		{name: "future start", start: now.Add(time.Hour), end: now.Add(2 * time.Hour), want: 1},
		{name: "huge range", start: now.Add(-180 * 24 * time.Hour), end: now, want: 1},
		{name: "tiny range", start: now.Add(-10 * time.Second), end: now, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(ValidateRange(tt.start, tt.end, now)); got != tt.want {
				t.Errorf("warnings = %d, want %d", got, tt.want)
			}
		})
	}
}
