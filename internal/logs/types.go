// Package logs defines the log entry model for transform function
// invocations and the grouping pipeline that aggregates raw log lines
// into per-invocation groups.
package logs

import (
	"fmt"
	"strings"
	"time"
)

// Level is the severity of a log line. The declaration order is the
// severity ranking: later levels are more severe.
type Level int

const (
	LevelDebug Level = iota
	LevelLog
	LevelInfo
	LevelWarning
	LevelError
)

// Levels lists all levels in severity order (least severe first).
var Levels = []Level{LevelDebug, LevelLog, LevelInfo, LevelWarning, LevelError}

// String returns the wire representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelLog:
		return "LOG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "LOG"
	}
}

// ParseLevel converts a wire string to a Level. Unrecognized values map
// to LOG, the platform's catch-all level for plain console output.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "LOG":
		return LevelLog
	case "INFO":
		return LevelInfo
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	default:
		return LevelLog
	}
}

// ParseLevels converts a list of wire strings, dropping duplicates and
// preserving severity order in the result.
func ParseLevels(raw []string) []Level {
	seen := make(map[Level]bool, len(raw))
	for _, s := range raw {
		seen[ParseLevel(s)] = true
	}
	var out []Level
	for _, l := range Levels {
		if seen[l] {
			out = append(out, l)
		}
	}
	return out
}

// LogEntry is one raw log line produced by a function invocation.
// Entries are immutable once fetched.
type LogEntry struct {
	InstanceID string
	Level      Level
	Message    string
	Timestamp  time.Time
}

// DedupKey identifies an entry for deduplication across the visible,
// hidden, and grouped buffers.
func (e LogEntry) DedupKey() string {
	return fmt.Sprintf("%s|%s|%d", e.InstanceID, e.Level, e.Timestamp.UnixNano())
}

// GroupedLogEntry aggregates every LogEntry sharing an InstanceID within
// the loaded window.
//
// Invariants: Entries is never empty, sorted ascending by timestamp and
// deduplicated; MinTimestamp <= MaxTimestamp; LogLevel is the highest
// severity present among Entries.
type GroupedLogEntry struct {
	InstanceID   string
	Entries      []LogEntry
	MinTimestamp time.Time
	MaxTimestamp time.Time
	LogLevel     Level
}
