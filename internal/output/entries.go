package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hogtail/hogtail/internal/logs"
	"github.com/hogtail/hogtail/internal/ui"
)

// FormatEntries outputs flat log entries in the configured format.
func (f *Formatter) FormatEntries(entries []logs.LogEntry) error {
	switch f.format {
	case FormatJSON:
		return f.formatEntriesJSON(entries)
	case FormatCSV:
		return f.formatEntriesCSV(entries)
	default:
		return f.formatEntriesText(entries)
	}
}

func (f *Formatter) formatEntriesText(entries []logs.LogEntry) error {
	if len(entries) == 0 {
		f.renderer.NoResults()
		return nil
	}
	for _, entry := range entries {
		f.renderer.LogEntry(entry)
	}
	return nil
}

type jsonEntry struct {
	InstanceID string `json:"instance_id"`
	Level      string `json:"level"`
	Timestamp  string `json:"timestamp"`
	Message    string `json:"message"`
}

func toJSONEntry(e logs.LogEntry) jsonEntry {
	return jsonEntry{
		InstanceID: e.InstanceID,
		Level:      e.Level.String(),
		Timestamp:  e.Timestamp.Format(time.RFC3339Nano),
		Message:    e.Message,
	}
}

func (f *Formatter) formatEntriesJSON(entries []logs.LogEntry) error {
	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		out[i] = toJSONEntry(e)
	}
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func (f *Formatter) formatEntriesCSV(entries []logs.LogEntry) error {
	writer := csv.NewWriter(f.writer)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "instance_id", "level", "message"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.Timestamp.Format(time.RFC3339Nano),
			e.InstanceID,
			e.Level.String(),
			e.Message,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// FormatGroups outputs grouped invocations in the configured format.
// In text mode every group is rendered expanded unless collapsed is set,
// in which case only the header line and a message preview appear.
func (f *Formatter) FormatGroups(groups []logs.GroupedLogEntry, collapsed bool) error {
	switch f.format {
	case FormatJSON:
		return f.formatGroupsJSON(groups)
	case FormatCSV:
		// CSV has no nesting; flatten to plain entries.
		return f.formatEntriesCSV(logs.Flatten(groups))
	default:
		return f.formatGroupsText(groups, collapsed)
	}
}

func (f *Formatter) formatGroupsText(groups []logs.GroupedLogEntry, collapsed bool) error {
	if len(groups) == 0 {
		f.renderer.NoResults()
		return nil
	}
	for i, group := range groups {
		f.renderer.LogGroup(group, !collapsed)
		if collapsed && len(group.Entries) > 0 {
			_, _ = fmt.Fprintf(f.writer, "  %s\n",
				ui.MutedStyle.Render(truncateMessage(group.Entries[0].Message, 120)))
		}
		if i < len(groups)-1 && !collapsed {
			_, _ = fmt.Fprintln(f.writer)
		}
	}
	return nil
}

func (f *Formatter) formatGroupsJSON(groups []logs.GroupedLogEntry) error {
	type jsonGroup struct {
		InstanceID   string      `json:"instance_id"`
		LogLevel     string      `json:"log_level"`
		MinTimestamp string      `json:"min_timestamp"`
		MaxTimestamp string      `json:"max_timestamp"`
		Entries      []jsonEntry `json:"entries"`
	}

	out := make([]jsonGroup, len(groups))
	for i, g := range groups {
		entries := make([]jsonEntry, len(g.Entries))
		for j, e := range g.Entries {
			entries[j] = toJSONEntry(e)
		}
		out[i] = jsonGroup{
			InstanceID:   g.InstanceID,
			LogLevel:     g.LogLevel.String(),
			MinTimestamp: g.MinTimestamp.Format(time.RFC3339Nano),
			MaxTimestamp: g.MaxTimestamp.Format(time.RFC3339Nano),
			Entries:      entries,
		}
	}
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
