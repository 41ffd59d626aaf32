// Package retry replays selected invocations through their function: it
// resolves each invocation's originating event from its log messages,
// bulk-fetches the events, and re-invokes the function with bounded
// parallelism, streaming fresh log output back into the viewer.
package retry

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hogtail/hogtail/internal/api"
	"github.com/hogtail/hogtail/internal/logs"
	"github.com/hogtail/hogtail/internal/store"
	"go.uber.org/zap"
)

// MaxConcurrentInvocations bounds in-flight re-invocations. This limits
// outstanding requests, not CPU work.
const MaxConcurrentInvocations = 10

// WindowPadding widens the event-fetch window on both sides of the
// groups' log-time bounds. Event time and log time skew by however long
// the function queue was backed up; a day absorbs any realistic delay.
const WindowPadding = 24 * time.Hour

// eventIDPatterns are the known message shapes that embed the
// originating event's id. Ordered: the first pattern that matches any
// entry wins, and within a pattern the first matching entry wins.
//
// This couples retries to log message text. A format change upstream
// breaks resolution silently; there is no stronger contract available.
var eventIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[Ee]vent:? '?([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})'?`),
	regexp.MustCompile(`[Pp]rocessing event ([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`),
	regexp.MustCompile(`event_id=([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`),
}

// API is the slice of the platform client the orchestrator depends on.
type API interface {
	GetFunction(ctx context.Context, id string) (api.Function, error)
	FetchEvents(ctx context.Context, ids []string, start, end time.Time) ([]api.Event, error)
	RetryInvocation(ctx context.Context, fn api.Function, event api.Event, invocationID string) ([]logs.LogEntry, error)
}

// Sink receives per-invocation status updates and freshly produced log
// groups. *store.Store satisfies it.
type Sink interface {
	SetRetryStatus(instanceID string, status store.RetryStatus)
	AddGroups(groups []logs.GroupedLogEntry)
}

// Result aggregates a retry run. Every selected group lands in exactly
// one list; Errors maps failed instance ids to their cause.
type Result struct {
	Succeeded []string
	Failed    []string
	Errors    map[string]error
}

// Orchestrator drives retry runs against one function.
type Orchestrator struct {
	api    API
	sink   Sink
	logger *zap.Logger

	// newID generates invocation ids; overridable in tests.
	newID func() string

	maxConcurrent int
}

// New creates an Orchestrator.
func New(apiClient API, sink Sink, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		api:           apiClient,
		sink:          sink,
		logger:        logger,
		newID:         func() string { return uuid.NewString() },
		maxConcurrent: MaxConcurrentInvocations,
	}
}

// Retry replays every selected group through functionID. A single
// group's failure never aborts its siblings; the aggregate result is
// reported only after all groups settle.
func (o *Orchestrator) Retry(ctx context.Context, functionID string, groups []logs.GroupedLogEntry) (Result, error) {
	result := Result{Errors: make(map[string]error)}
	if len(groups) == 0 {
		return result, nil
	}

	for _, g := range groups {
		o.sink.SetRetryStatus(g.InstanceID, store.RetryPending)
	}

	fail := func(instanceID string, err error) {
		o.sink.SetRetryStatus(instanceID, store.RetryFailure)
		result.Failed = append(result.Failed, instanceID)
		result.Errors[instanceID] = err
		o.logger.Warn("retry failed",
			zap.String("instance_id", instanceID),
			zap.Error(err))
	}

	fn, err := o.api.GetFunction(ctx, functionID)
	if err != nil {
		for _, g := range groups {
			fail(g.InstanceID, err)
		}
		return result, fmt.Errorf("failed to load function configuration: %w", err)
	}

	// Resolve each group's originating event id up front; unresolvable
	// groups fail immediately without touching the network.
	eventIDs := make(map[string]string, len(groups))
	var candidates []logs.GroupedLogEntry
	for _, g := range groups {
		id, ok := ExtractEventID(g)
		if !ok {
			fail(g.InstanceID, fmt.Errorf("no event id found in log messages"))
			continue
		}
		eventIDs[g.InstanceID] = id
		candidates = append(candidates, g)
	}
	if len(candidates) == 0 {
		return result, nil
	}

	start, end := paddedWindow(candidates)
	uniq := uniqueValues(eventIDs)
	events, err := o.api.FetchEvents(ctx, uniq, start, end)
	if err != nil {
		for _, g := range candidates {
			fail(g.InstanceID, err)
		}
		return result, fmt.Errorf("failed to fetch source events: %w", err)
	}
	byUUID := make(map[string]api.Event, len(events))
	for _, e := range events {
		byUUID[e.UUID] = e
	}

	type outcome struct {
		instanceID string
		err        error
	}
	outcomes := make(chan outcome, len(candidates))
	sem := make(chan struct{}, o.maxConcurrent)
	var wg sync.WaitGroup

	for _, g := range candidates {
		wg.Add(1)
		go func(g logs.GroupedLogEntry) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				o.sink.SetRetryStatus(g.InstanceID, store.RetryFailure)
				outcomes <- outcome{g.InstanceID, ctx.Err()}
				return
			}

			// Each group's status settles the moment its invocation does,
			// not after the whole batch drains.
			event, ok := byUUID[eventIDs[g.InstanceID]]
			if !ok {
				err := fmt.Errorf("event %s not found", eventIDs[g.InstanceID])
				o.sink.SetRetryStatus(g.InstanceID, store.RetryFailure)
				outcomes <- outcome{g.InstanceID, err}
				return
			}

			invocationID := o.newID()
			entries, err := o.api.RetryInvocation(ctx, fn, event, invocationID)
			if err != nil {
				o.sink.SetRetryStatus(g.InstanceID, store.RetryFailure)
				outcomes <- outcome{g.InstanceID, err}
				return
			}
			if len(entries) > 0 {
				o.sink.AddGroups(logs.GroupAndSanitize(entries))
			}
			o.sink.SetRetryStatus(g.InstanceID, store.RetrySuccess)
			outcomes <- outcome{g.InstanceID, nil}
		}(g)
	}

	wg.Wait()
	close(outcomes)

	for out := range outcomes {
		if out.err != nil {
			result.Failed = append(result.Failed, out.instanceID)
			result.Errors[out.instanceID] = out.err
			o.logger.Warn("retry failed",
				zap.String("instance_id", out.instanceID),
				zap.Error(out.err))
			continue
		}
		result.Succeeded = append(result.Succeeded, out.instanceID)
	}

	return result, nil
}

// ExtractEventID scans a group's entries for a message embedding the
// originating event id. Pattern order takes precedence over entry order.
func ExtractEventID(g logs.GroupedLogEntry) (string, bool) {
	for _, re := range eventIDPatterns {
		for _, e := range g.Entries {
			if m := re.FindStringSubmatch(e.Message); m != nil {
				return m[1], true
			}
		}
	}
	return "", false
}

// paddedWindow is the union of all group bounds widened by the padding.
func paddedWindow(groups []logs.GroupedLogEntry) (time.Time, time.Time) {
	start := groups[0].MinTimestamp
	end := groups[0].MaxTimestamp
	for _, g := range groups[1:] {
		if g.MinTimestamp.Before(start) {
			start = g.MinTimestamp
		}
		if g.MaxTimestamp.After(end) {
			end = g.MaxTimestamp
		}
	}
	return start.Add(-WindowPadding), end.Add(WindowPadding)
}

func uniqueValues(m map[string]string) []string {
	seen := make(map[string]bool, len(m))
	var out []string
	for _, v := range m {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
