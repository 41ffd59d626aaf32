package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hogtail/hogtail/internal/logs"
)

// invokeRequest replays one event through a function. The call is
// synchronous: the response carries the log lines the invocation
// produced.
type invokeRequest struct {
	Event         map[string]any `json:"event"`
	Configuration map[string]any `json:"configuration,omitempty"`
	InvocationID  string         `json:"invocation_id"`
}

type invokeResponse struct {
	Status string `json:"status"`
	Logs   []struct {
		Timestamp string `json:"timestamp"`
		Level     string `json:"level"`
		Message   string `json:"message"`
	} `json:"logs"`
}

// RetryInvocation re-invokes a function with the given event and returns
// the log lines the new invocation produced, tagged with invocationID.
func (c *Client) RetryInvocation(ctx context.Context, fn Function, event Event, invocationID string) ([]logs.LogEntry, error) {
	req := invokeRequest{
		Event: map[string]any{
			"uuid":        event.UUID,
			"event":       event.Name,
			"properties":  event.Properties,
			"timestamp":   event.Timestamp.UTC().Format(time.RFC3339Nano),
			"distinct_id": event.DistinctID,
		},
		Configuration: fn.Configuration,
		InvocationID:  invocationID,
	}

	var resp invokeResponse
	path := c.envPath("/hog_functions/" + fn.ID + "/invocations/")
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to invoke function %s: %w", fn.ID, err)
	}

	entries := make([]logs.LogEntry, 0, len(resp.Logs))
	for _, line := range resp.Logs {
		ts, err := ParseTimestamp(line.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("malformed invocation log: %w", err)
		}
		entries = append(entries, logs.LogEntry{
			InstanceID: invocationID,
			Level:      logs.ParseLevel(line.Level),
			Message:    line.Message,
			Timestamp:  ts,
		})
	}
	return entries, nil
}
