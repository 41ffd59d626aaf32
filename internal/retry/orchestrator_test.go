package retry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hogtail/hogtail/internal/api"
	"github.com/hogtail/hogtail/internal/logs"
	"github.com/hogtail/hogtail/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uuidX = "11111111-2222-3333-4444-555555555555"
	uuidY = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
)

func group(instance string, messages ...string) logs.GroupedLogEntry {
	var rows []logs.LogEntry
	for i, msg := range messages {
		rows = append(rows, logs.LogEntry{
			InstanceID: instance,
			Level:      logs.LevelInfo,
			Message:    msg,
			Timestamp:  time.Date(2026, 8, 20, 10, 0, i, 0, time.UTC),
		})
	}
	return logs.GroupAndSanitize(rows)[0]
}

type fakeAPI struct {
	mu          sync.Mutex
	fn          api.Function
	fnErr       error
	events      []api.Event
	eventsErr   error
	invokeErr   map[string]error         // by event uuid
	invokeGate  map[string]chan struct{} // blocks that uuid's invocation until closed
	invokeDelay time.Duration

	fetchCalls  int
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeAPI) GetFunction(ctx context.Context, id string) (api.Function, error) {
	return f.fn, f.fnErr
}

func (f *fakeAPI) FetchEvents(ctx context.Context, ids []string, start, end time.Time) ([]api.Event, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	return f.events, f.eventsErr
}

func (f *fakeAPI) RetryInvocation(ctx context.Context, fn api.Function, event api.Event, invocationID string) ([]logs.LogEntry, error) {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if current <= peak || f.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}
	if f.invokeDelay > 0 {
		time.Sleep(f.invokeDelay)
	}
	if gate := f.invokeGate[event.UUID]; gate != nil {
		<-gate
	}
	if err := f.invokeErr[event.UUID]; err != nil {
		return nil, err
	}
	return []logs.LogEntry{{
		InstanceID: invocationID,
		Level:      logs.LevelInfo,
		Message:    "replayed " + event.UUID,
		Timestamp:  time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC),
	}}, nil
}

type fakeSink struct {
	mu       sync.Mutex
	statuses map[string][]store.RetryStatus
	added    []logs.GroupedLogEntry
}

func newFakeSink() *fakeSink {
	return &fakeSink{statuses: make(map[string][]store.RetryStatus)}
}

func (s *fakeSink) SetRetryStatus(instanceID string, status store.RetryStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[instanceID] = append(s.statuses[instanceID], status)
}

func (s *fakeSink) AddGroups(groups []logs.GroupedLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, groups...)
}

func (s *fakeSink) final(instanceID string) store.RetryStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.statuses[instanceID]
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1]
}

func TestExtractEventID(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		want     string
		ok       bool
	}{
		{
			name:     "event colon form",
			messages: []string{"Executing function", "Event: " + uuidX},
			want:     uuidX,
			ok:       true,
		},
		{
			name:     "quoted event form",
			messages: []string{"event '" + uuidX + "' matched filters"},
			want:     uuidX,
			ok:       true,
		},
		{
			name:     "processing form",
			messages: []string{"Processing event " + uuidY},
			want:     uuidY,
			ok:       true,
		},
		{
			name:     "key value form",
			messages: []string{"suspended invocation event_id=" + uuidY},
			want:     uuidY,
			ok:       true,
		},
		{
			name:     "pattern order beats entry order",
			messages: []string{"event_id=" + uuidY, "Event: " + uuidX},
			want:     uuidX,
			ok:       true,
		},
		{
			name:     "first entry wins within one pattern",
			messages: []string{"Event: " + uuidX, "Event: " + uuidY},
			want:     uuidX,
			ok:       true,
		},
		{
			name:     "no match",
			messages: []string{"Function completed", "took 12ms"},
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractEventID(group("inst", tt.messages...))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("id = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetryIsolatesFailures(t *testing.T) {
	apiClient := &fakeAPI{
		fn: api.Function{ID: "fn-1", Name: "strip pii"},
		events: []api.Event{
			{UUID: uuidX, Name: "$pageview"},
		},
	}
	sink := newFakeSink()
	o := New(apiClient, sink, nil)

	groups := []logs.GroupedLogEntry{
		group("x", "Event: "+uuidX, "boom"),
		group("y", "no id in here"),
	}

	result, err := o.Retry(context.Background(), "fn-1", groups)
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, result.Succeeded)
	assert.Equal(t, []string{"y"}, result.Failed)
	assert.Error(t, result.Errors["y"])

	assert.Equal(t, store.RetrySuccess, sink.final("x"))
	assert.Equal(t, store.RetryFailure, sink.final("y"))

	// x went pending before settling.
	assert.Equal(t, store.RetryPending, sink.statuses["x"][0])

	// Fresh invocation output reached the viewer.
	require.Len(t, sink.added, 1)
	assert.Equal(t, "replayed "+uuidX, sink.added[0].Entries[0].Message)
}

func TestRetryEventNotFoundFailsThatGroupOnly(t *testing.T) {
	apiClient := &fakeAPI{
		fn:     api.Function{ID: "fn-1"},
		events: []api.Event{{UUID: uuidX}},
	}
	sink := newFakeSink()
	o := New(apiClient, sink, nil)

	result, err := o.Retry(context.Background(), "fn-1", []logs.GroupedLogEntry{
		group("x", "Event: "+uuidX),
		group("y", "Event: "+uuidY), // resolvable, but the event is gone
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, result.Succeeded)
	assert.Equal(t, []string{"y"}, result.Failed)
	assert.Equal(t, 1, apiClient.fetchCalls, "events are fetched in one bulk call")
}

func TestRetryDownstreamErrorMarksFailure(t *testing.T) {
	apiClient := &fakeAPI{
		fn:        api.Function{ID: "fn-1"},
		events:    []api.Event{{UUID: uuidX}},
		invokeErr: map[string]error{uuidX: errors.New("invocation timed out")},
	}
	sink := newFakeSink()
	o := New(apiClient, sink, nil)

	result, err := o.Retry(context.Background(), "fn-1", []logs.GroupedLogEntry{
		group("x", "Event: "+uuidX),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)
	assert.Equal(t, []string{"x"}, result.Failed)
	assert.Equal(t, store.RetryFailure, sink.final("x"))
}

func TestRetryStatusSettlesPerInvocation(t *testing.T) {
	gate := make(chan struct{})
	apiClient := &fakeAPI{
		fn:         api.Function{ID: "fn-1"},
		events:     []api.Event{{UUID: uuidX}, {UUID: uuidY}},
		invokeGate: map[string]chan struct{}{uuidY: gate},
	}
	sink := newFakeSink()
	o := New(apiClient, sink, nil)

	type retryDone struct {
		result Result
		err    error
	}
	done := make(chan retryDone, 1)
	go func() {
		result, err := o.Retry(context.Background(), "fn-1", []logs.GroupedLogEntry{
			group("x", "Event: "+uuidX),
			group("y", "Event: "+uuidY),
		})
		done <- retryDone{result, err}
	}()

	// x settles while y is still in flight; its status must not wait
	// for the batch to drain.
	require.Eventually(t, func() bool {
		return sink.final("x") == store.RetrySuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, store.RetryPending, sink.final("y"))

	close(gate)
	out := <-done
	require.NoError(t, out.err)
	assert.ElementsMatch(t, []string{"x", "y"}, out.result.Succeeded)
	assert.Equal(t, store.RetrySuccess, sink.final("y"))
}

func TestRetryFunctionLookupFailureFailsEverything(t *testing.T) {
	apiClient := &fakeAPI{fnErr: errors.New("not found")}
	sink := newFakeSink()
	o := New(apiClient, sink, nil)

	result, err := o.Retry(context.Background(), "fn-404", []logs.GroupedLogEntry{
		group("x", "Event: "+uuidX),
		group("y", "Event: "+uuidY),
	})
	require.Error(t, err)
	assert.Len(t, result.Failed, 2)
	assert.Equal(t, store.RetryFailure, sink.final("x"))
	assert.Equal(t, store.RetryFailure, sink.final("y"))
}

func TestRetryBoundsConcurrency(t *testing.T) {
	var events []api.Event
	var groups []logs.GroupedLogEntry
	uuids := []string{
		"00000000-0000-0000-0000-000000000001",
		"00000000-0000-0000-0000-000000000002",
		"00000000-0000-0000-0000-000000000003",
		"00000000-0000-0000-0000-000000000004",
		"00000000-0000-0000-0000-000000000005",
		"00000000-0000-0000-0000-000000000006",
	}
	for i, id := range uuids {
		events = append(events, api.Event{UUID: id})
		groups = append(groups, group("inst-"+string(rune('a'+i)), "Event: "+id))
	}

	apiClient := &fakeAPI{
		fn:          api.Function{ID: "fn-1"},
		events:      events,
		invokeDelay: 20 * time.Millisecond,
	}
	sink := newFakeSink()
	o := New(apiClient, sink, nil)
	o.maxConcurrent = 2

	result, err := o.Retry(context.Background(), "fn-1", groups)
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, len(groups))
	assert.LessOrEqual(t, apiClient.maxInFlight.Load(), int32(2))
}
