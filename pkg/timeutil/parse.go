// Package timeutil parses the time bounds accepted by log filters.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Pre-compiled regex for relative bounds ("-7d", "-30m", "24h"). A
// leading minus is how shared filter URLs encode lookback; a bare value
// means the same thing.
var relativeRe = regexp.MustCompile(`^-?(\d+)([mhdw])$`)

// Absolute formats accepted for date_from/date_to values.
var absoluteFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseBound resolves a filter bound relative to now. Accepted inputs:
//
//   - "" or "now"            -> now
//   - "-7d", "-30m", "-2h"   -> that far in the past
//   - "7d" (no sign)         -> same as "-7d"
//   - RFC3339 or date-only   -> that instant, UTC
func ParseBound(input string, now time.Time) (time.Time, error) {
	if input == "" || input == "now" {
		return now.UTC(), nil
	}

	if m := relativeRe.FindStringSubmatch(input); m != nil {
		value, _ := strconv.Atoi(m[1])
		var unit time.Duration
		switch m[2] {
		case "m":
			unit = time.Minute
		case "h":
			unit = time.Hour
		case "d":
			unit = 24 * time.Hour
		case "w":
			unit = 7 * 24 * time.Hour
		}
		return now.UTC().Add(-time.Duration(value) * unit), nil
	}

	for _, format := range absoluteFormats {
		if t, err := time.Parse(format, input); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid time bound %q - use RFC3339 (2026-08-01T06:00:00Z) or relative (-7d, -2h, -30m)", input)
}

// ParseRange resolves a (from, to) bound pair and validates ordering.
func ParseRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	start, err := ParseBound(from, now)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date_from: %w", err)
	}
	end, err := ParseBound(to, now)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date_to: %w", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("date_from must be before date_to")
	}
	return start, end, nil
}

// FormatDuration renders a duration compactly for status output.
func FormatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	return fmt.Sprintf("%.1fd", d.Hours()/24)
}

// RangeWarning flags a suspicious but non-fatal time range.
type RangeWarning struct {
	Message string
	Level   string // "warning" or "info"
}

// ValidateRange checks a resolved range for likely mistakes without
// blocking the query.
func ValidateRange(start, end, now time.Time) []RangeWarning {
	var warnings []RangeWarning

	if start.After(now.Add(time.Minute)) {
		warnings = append(warnings, RangeWarning{
			Message: "start time is in the future - no results will be returned",
			Level:   "warning",
		})
	}

	duration := end.Sub(start)
	if duration > 90*24*time.Hour {
		warnings = append(warnings, RangeWarning{
			Message: fmt.Sprintf("querying %s of logs - this may be slow", FormatDuration(duration)),
			Level:   "info",
		})
	}
	if duration < time.Minute && duration > 0 {
		warnings = append(warnings, RangeWarning{
			Message: fmt.Sprintf("time range is only %s - you may miss relevant logs", FormatDuration(duration)),
			Level:   "info",
		})
	}

	return warnings
}
