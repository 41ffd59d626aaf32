package api

import (
	"context"
	"fmt"
	"time"

	"github.com/hogtail/hogtail/internal/logs"
	"go.uber.org/zap"
)

// Order is the sort direction of a log query.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// SourceRef identifies a log source: a transform function (or similar
// construct) by type and id.
type SourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (s SourceRef) String() string {
	return s.Type + "/" + s.ID
}

// LogParams are the inputs to a log fetch.
type LogParams struct {
	Source SourceRef

	// Levels restricts severities at fetch time. Empty means all.
	Levels []logs.Level

	// Search terms are ANDed substring matches against the message.
	Search []string

	// Start/End bound the query window.
	Start time.Time
	End   time.Time

	// Before/After exclude rows at or outside the named instant; used
	// for load-older and poll-newer pagination.
	Before time.Time
	After  time.Time

	// InstanceIDs restricts to specific invocations.
	InstanceIDs []string

	Order Order
	Limit int
}

// logsQuery is the structured query object for log rows. Column order of
// the response is fixed: instance_id, timestamp, level, message.
type logsQuery struct {
	Kind        string    `json:"kind"`
	Source      SourceRef `json:"source"`
	Levels      []string  `json:"levels,omitempty"`
	Search      []string  `json:"search,omitempty"`
	DateFrom    string    `json:"date_from,omitempty"`
	DateTo      string    `json:"date_to,omitempty"`
	Before      string    `json:"before,omitempty"`
	After       string    `json:"after,omitempty"`
	InstanceIDs []string  `json:"instance_ids,omitempty"`
	Order       string    `json:"order,omitempty"`
	Limit       int       `json:"limit,omitempty"`
	// Distinct switches the selection to one row per instance id,
	// ordered by most recent matching entry.
	Distinct bool `json:"distinct,omitempty"`
}

func buildLogsQuery(p LogParams, distinct bool) logsQuery {
	q := logsQuery{
		Kind:        "LogsQuery",
		Source:      p.Source,
		Search:      p.Search,
		InstanceIDs: p.InstanceIDs,
		Order:       string(p.Order),
		Limit:       p.Limit,
		Distinct:    distinct,
	}
	for _, l := range p.Levels {
		q.Levels = append(q.Levels, l.String())
	}
	if !p.Start.IsZero() {
		q.DateFrom = p.Start.UTC().Format(time.RFC3339Nano)
	}
	if !p.End.IsZero() {
		q.DateTo = p.End.UTC().Format(time.RFC3339Nano)
	}
	if !p.Before.IsZero() {
		q.Before = p.Before.UTC().Format(time.RFC3339Nano)
	}
	if !p.After.IsZero() {
		q.After = p.After.UTC().Format(time.RFC3339Nano)
	}
	return q
}

// LoadLogs fetches raw log rows matching the parameters.
func (c *Client) LoadLogs(ctx context.Context, p LogParams) ([]logs.LogEntry, error) {
	rows, err := c.runQuery(ctx, buildLogsQuery(p, false))
	if err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}
	return parseLogRows(rows)
}

// LoadGroupedLogs fetches per-invocation groups. Selection is two-stage:
// first pick the limited set of instance ids whose entries match the
// filters, ordered by most recent match, then fetch every entry for
// exactly those ids within the same time boundary so no group is cut off
// mid-invocation.
func (c *Client) LoadGroupedLogs(ctx context.Context, p LogParams) ([]logs.GroupedLogEntry, error) {
	idRows, err := c.runQuery(ctx, buildLogsQuery(p, true))
	if err != nil {
		return nil, fmt.Errorf("failed to select invocations: %w", err)
	}
	if len(idRows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(idRows))
	for _, row := range idRows {
		if id := stringAt(row, 0); id != "" {
			ids = append(ids, id)
		}
	}

	full := LogParams{
		Source:      p.Source,
		Start:       p.Start,
		End:         p.End,
		InstanceIDs: ids,
		Order:       OrderAsc,
	}
	rows, err := c.runQuery(ctx, buildLogsQuery(full, false))
	if err != nil {
		return nil, fmt.Errorf("failed to load invocation entries: %w", err)
	}

	entries, err := parseLogRows(rows)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("loaded grouped logs",
		zap.Int("invocations", len(ids)),
		zap.Int("entries", len(entries)))
	return logs.GroupAndSanitize(entries), nil
}

// parseLogRows interprets query rows positionally:
// 0=instance id, 1=timestamp, 2=level, 3=message.
func parseLogRows(rows [][]any) ([]logs.LogEntry, error) {
	entries := make([]logs.LogEntry, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			return nil, fmt.Errorf("malformed log row: %d columns, want 4", len(row))
		}
		ts, err := ParseTimestamp(stringAt(row, 1))
		if err != nil {
			return nil, fmt.Errorf("malformed log row: %w", err)
		}
		entries = append(entries, logs.LogEntry{
			InstanceID: stringAt(row, 0),
			Timestamp:  ts,
			Level:      logs.ParseLevel(stringAt(row, 2)),
			Message:    stringAt(row, 3),
		})
	}
	return entries, nil
}

// timestampFormats covers the known wire encodings of query timestamps.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a timestamp column in any known wire format.
func ParseTimestamp(input string) (time.Time, error) {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, input); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", input)
}
