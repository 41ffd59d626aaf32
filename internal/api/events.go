package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event is a captured analytics event, the input a transform function is
// invoked with.
type Event struct {
	UUID       string
	Name       string
	Properties map[string]any
	Timestamp  time.Time
	DistinctID string
}

// eventsQuery is the structured query object for bulk event lookup.
type eventsQuery struct {
	Kind     string   `json:"kind"`
	EventIDs []string `json:"event_ids"`
	DateFrom string   `json:"date_from"`
	DateTo   string   `json:"date_to"`
}

// FetchEvents bulk-fetches events by uuid within the given window.
// Columns: 0=uuid, 1=event name, 2=properties JSON, 3=timestamp,
// 4=distinct id. Events missing from the response were not found; the
// caller decides what that means.
func (c *Client) FetchEvents(ctx context.Context, ids []string, start, end time.Time) ([]Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := eventsQuery{
		Kind:     "EventsQuery",
		EventIDs: ids,
		DateFrom: start.UTC().Format(time.RFC3339Nano),
		DateTo:   end.UTC().Format(time.RFC3339Nano),
	}
	rows, err := c.runQuery(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("malformed event row: %d columns, want 5", len(row))
		}
		ts, err := ParseTimestamp(stringAt(row, 3))
		if err != nil {
			return nil, fmt.Errorf("malformed event row: %w", err)
		}

		var props map[string]any
		if raw := stringAt(row, 2); raw != "" {
			// Properties arrive as a JSON blob inside the scalar column.
			if err := json.Unmarshal([]byte(raw), &props); err != nil {
				return nil, fmt.Errorf("malformed event properties: %w", err)
			}
		}

		events = append(events, Event{
			UUID:       stringAt(row, 0),
			Name:       stringAt(row, 1),
			Properties: props,
			Timestamp:  ts,
			DistinctID: stringAt(row, 4),
		})
	}
	return events, nil
}
