// Package store implements the client-side cache behind the log viewer:
// a visible buffer of per-invocation groups, a hidden buffer of newly
// polled entries awaiting an explicit reveal, pagination cursors, and the
// single-timer polling loop that keeps the view fresh.
//
// The store is an explicit state machine behind a narrow interface:
// mutate through its operations, observe through Snapshot and Subscribe.
// All dependencies are injected; nothing is read from ambient globals.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/hogtail/hogtail/internal/api"
	"github.com/hogtail/hogtail/internal/logs"
	"github.com/hogtail/hogtail/pkg/timeutil"
	"go.uber.org/zap"
)

// Source is the slice of the API client the store depends on.
type Source interface {
	LoadLogs(ctx context.Context, p api.LogParams) ([]logs.LogEntry, error)
	LoadGroupedLogs(ctx context.Context, p api.LogParams) ([]logs.GroupedLogEntry, error)
}

// RetryStatus tracks one invocation's replay through the retry flow.
// Terminal on success/failure; cleared only by a fresh retry.
type RetryStatus string

const (
	RetryPending RetryStatus = "pending"
	RetrySuccess RetryStatus = "success"
	RetryFailure RetryStatus = "failure"
)

// Defaults for Options fields left zero.
const (
	DefaultPollInterval   = 5 * time.Second
	DefaultPageLimit      = 100
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultFilterDebounce = 10 * time.Millisecond
)

// Options configures a Store.
type Options struct {
	// PollInterval is the delay between poll-for-newer fetches.
	// Zero means DefaultPollInterval; negative disables polling.
	PollInterval time.Duration

	// PageLimit caps rows (or invocations, in grouped mode) per fetch.
	PageLimit int

	// SearchDebounce delays the reload after a free-text search change;
	// FilterDebounce after any other filter change. Free text gets the
	// long delay so a query is not fired per keystroke.
	SearchDebounce time.Duration
	FilterDebounce time.Duration

	// OnFilterChange is invoked synchronously on every filter mutation,
	// before the debounced reload. Used to mirror state into a URL.
	OnFilterChange func(logs.Filters)

	// Now supplies the current time for resolving relative date bounds.
	Now func() time.Time

	Logger *zap.Logger
}

// Snapshot is an immutable view of the store's state.
type Snapshot struct {
	Filters       logs.Filters
	Visible       []logs.GroupedLogEntry
	HiddenCount   int
	MoreToLoad    bool
	Loading       bool
	RetryStatuses map[string]RetryStatus
}

// Store is the log viewer cache. Within one filter session it only
// grows; a filter change resets it entirely.
type Store struct {
	source Source
	ref    api.SourceRef
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	filters  logs.Filters
	visible  []logs.GroupedLogEntry
	hidden   []logs.GroupedLogEntry
	expanded map[string]bool
	retries  map[string]RetryStatus

	// moreToLoad goes false when an older-page fetch comes back empty
	// and stays false until the next full reload.
	moreToLoad bool

	// rangeStart/rangeEnd are the resolved time boundary of the current
	// session; older/newer fetches stay within it.
	rangeStart time.Time
	rangeEnd   time.Time

	// generation increments on every full reload. Async completions
	// started under an older generation are discarded: last reload wins.
	generation int
	loading    bool
	olderBusy  bool
	newerBusy  bool

	pollTimer     *time.Timer
	debounceTimer *time.Timer

	closed    bool
	listeners map[int]func(Snapshot)
	nextSub   int
}

// New creates a Store for one log source. Call Close when done; after
// Close no state mutation occurs, including from pending timers.
func New(source Source, ref api.SourceRef, filters logs.Filters, opts Options) *Store {
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.PageLimit == 0 {
		opts.PageLimit = DefaultPageLimit
	}
	if opts.SearchDebounce == 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.FilterDebounce == 0 {
		opts.FilterDebounce = DefaultFilterDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		source:     source,
		ref:        ref,
		opts:       opts,
		logger:     logger,
		filters:    filters,
		expanded:   make(map[string]bool),
		retries:    make(map[string]RetryStatus),
		moreToLoad: true,
		listeners:  make(map[int]func(Snapshot)),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	visible := make([]logs.GroupedLogEntry, len(s.visible))
	copy(visible, s.visible)
	retries := make(map[string]RetryStatus, len(s.retries))
	for k, v := range s.retries {
		retries[k] = v
	}
	return Snapshot{
		Filters:       s.filters,
		Visible:       visible,
		HiddenCount:   len(s.hidden),
		MoreToLoad:    s.moreToLoad,
		Loading:       s.loading,
		RetryStatuses: retries,
	}
}

// Subscribe registers a listener notified after every state change.
// The returned function unsubscribes. Subscribing to a closed store
// registers nothing.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// notifyLocked snapshots state and returns a closure that delivers it.
// The caller invokes the closure after releasing the lock.
func (s *Store) notifyLocked() func() {
	if len(s.listeners) == 0 {
		return func() {}
	}
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(snap)
		}
	}
}

// Filters returns the current filter state.
func (s *Store) Filters() logs.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters applies a new filter state. The change is mirrored to
// OnFilterChange immediately; the reload is debounced, and a newer call
// cancels a pending one.
func (s *Store) SetFilters(ctx context.Context, f logs.Filters) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	searchChanged := f.Search != s.filters.Search
	s.filters = f
	onChange := s.opts.OnFilterChange

	delay := s.opts.FilterDebounce
	if searchChanged {
		delay = s.opts.SearchDebounce
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(delay, func() {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("debounced reload failed", zap.Error(err))
		}
	})
	notify := s.notifyLocked()
	s.mu.Unlock()

	if onChange != nil {
		onChange(f)
	}
	notify()
}

// Refresh performs a full reload: the hidden buffer is dropped, the
// visible buffer is replaced wholesale, and the older-page cursor is
// re-armed. Any reload or poll still in flight is superseded.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.generation++
	gen := s.generation
	s.loading = true
	s.hidden = nil
	f := s.filters
	s.mu.Unlock()

	start, end, err := timeutil.ParseRange(f.DateFrom, f.DateTo, s.opts.Now())
	if err != nil {
		s.finishReload(gen, nil, time.Time{}, time.Time{}, err)
		return err
	}

	groups, err := s.fetch(ctx, api.LogParams{
		Source:      s.ref,
		Levels:      f.Levels,
		Search:      searchTerms(f),
		Start:       start,
		End:         end,
		InstanceIDs: instanceFilter(f),
		Order:       api.OrderDesc,
		Limit:       s.opts.PageLimit,
	}, f.Grouped)

	s.finishReload(gen, groups, start, end, err)
	return err
}

// finishReload applies a reload result unless a newer reload started or
// the store closed meanwhile. The poll timer is rescheduled either way.
func (s *Store) finishReload(gen int, groups []logs.GroupedLogEntry, start, end time.Time, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if gen != s.generation {
		// A newer reload owns the state now.
		s.mu.Unlock()
		return
	}
	s.loading = false
	if err == nil {
		s.visible = groups
		s.hidden = nil
		s.moreToLoad = true
		s.rangeStart = start
		s.rangeEnd = end
	} else {
		s.logger.Warn("reload failed", zap.Error(err))
	}
	s.schedulePollLocked()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// LoadOlder fetches the page strictly older than the oldest visible
// entry and merges it in. An empty page means the backlog is exhausted:
// moreToLoad goes false and stays false until the next full reload.
func (s *Store) LoadOlder(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.olderBusy || !s.moreToLoad || len(s.visible) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.olderBusy = true
	gen := s.generation
	oldest := oldestTimestamp(s.visible)
	f := s.filters
	start := s.rangeStart
	s.mu.Unlock()

	groups, err := s.fetch(ctx, api.LogParams{
		Source:      s.ref,
		Levels:      f.Levels,
		Search:      searchTerms(f),
		Start:       start,
		End:         oldest,
		Before:      oldest,
		InstanceIDs: instanceFilter(f),
		Order:       api.OrderDesc,
		Limit:       s.opts.PageLimit,
	}, f.Grouped)

	s.mu.Lock()
	s.olderBusy = false
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if len(groups) == 0 {
		s.moreToLoad = false
	} else {
		s.visible = logs.GroupAndSanitize(append(logs.Flatten(s.visible), logs.Flatten(groups)...))
	}
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// RevealHidden merges the hidden buffer into the visible view. No-op
// when nothing is hidden.
func (s *Store) RevealHidden() {
	s.mu.Lock()
	if s.closed || len(s.hidden) == 0 {
		s.mu.Unlock()
		return
	}
	s.visible = logs.GroupAndSanitize(append(logs.Flatten(s.visible), logs.Flatten(s.hidden)...))
	s.hidden = nil
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// AddGroups injects externally produced groups straight into the visible
// buffer, bypassing the poll cycle. Used by the retry flow to show fresh
// invocation output immediately.
func (s *Store) AddGroups(groups []logs.GroupedLogEntry) {
	if len(groups) == 0 {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.visible = logs.GroupAndSanitize(append(logs.Flatten(s.visible), logs.Flatten(groups)...))
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SetExpanded records a row's expansion state. Pure presentation state:
// no fetch is implied.
func (s *Store) SetExpanded(instanceID string, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if expanded {
		s.expanded[instanceID] = true
	} else {
		delete(s.expanded, instanceID)
	}
}

// IsExpanded reports a row's expansion state.
func (s *Store) IsExpanded(instanceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[instanceID]
}

// SetRetryStatus records an invocation's retry state. Implements the
// retry orchestrator's sink.
func (s *Store) SetRetryStatus(instanceID string, status RetryStatus) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.retries[instanceID] = status
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// Close tears the store down: timers are cancelled and every subsequent
// operation becomes a no-op, so no state mutation can happen after.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.pollTimer != nil {
		s.pollTimer.Stop()
		s.pollTimer = nil
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	s.listeners = nil
}

// fetch loads groups through the grouped two-stage path or by grouping a
// raw row fetch client-side, depending on the view mode.
func (s *Store) fetch(ctx context.Context, p api.LogParams, grouped bool) ([]logs.GroupedLogEntry, error) {
	if grouped {
		return s.source.LoadGroupedLogs(ctx, p)
	}
	rows, err := s.source.LoadLogs(ctx, p)
	if err != nil {
		return nil, err
	}
	return logs.GroupAndSanitize(rows), nil
}

func searchTerms(f logs.Filters) []string {
	if f.Search == "" {
		return nil
	}
	return []string{f.Search}
}

func instanceFilter(f logs.Filters) []string {
	if f.InstanceID == "" {
		return nil
	}
	return []string{f.InstanceID}
}

// oldestTimestamp returns the earliest entry time across groups.
func oldestTimestamp(groups []logs.GroupedLogEntry) time.Time {
	var oldest time.Time
	for _, g := range groups {
		if oldest.IsZero() || g.MinTimestamp.Before(oldest) {
			oldest = g.MinTimestamp
		}
	}
	return oldest
}

// newestTimestamp returns the latest entry time across groups.
func newestTimestamp(groups []logs.GroupedLogEntry) time.Time {
	var newest time.Time
	for _, g := range groups {
		if g.MaxTimestamp.After(newest) {
			newest = g.MaxTimestamp
		}
	}
	return newest
}
