package store

import (
	"context"
	"time"

	"github.com/hogtail/hogtail/internal/api"
	"github.com/hogtail/hogtail/internal/logs"
	"go.uber.org/zap"
)

// LoadNewer fetches entries strictly newer than the newest already held,
// in ascending order. Results are partitioned: entries for invocations
// already visible merge straight into the visible buffer (a still-running
// invocation gaining lines), everything else lands in the hidden buffer
// until the user reveals it.
//
// The poll timer is rescheduled on every completion, including error and
// discard paths. Retry-by-polling is unconditional and indefinite; there
// is deliberately no backoff.
func (s *Store) LoadNewer(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.loading || s.newerBusy {
		// A full reload owns the next state, or a poll is already in
		// flight. Either way, keep the loop alive and do nothing else.
		s.schedulePollLocked()
		s.mu.Unlock()
		return nil
	}
	s.newerBusy = true
	gen := s.generation
	f := s.filters
	after := newestTimestamp(s.visible)
	if hiddenNewest := newestTimestamp(s.hidden); hiddenNewest.After(after) {
		after = hiddenNewest
	}
	if after.IsZero() {
		after = s.rangeStart
	}
	s.mu.Unlock()

	groups, err := s.fetch(ctx, api.LogParams{
		Source:      s.ref,
		Levels:      f.Levels,
		Search:      searchTerms(f),
		Start:       after,
		After:       after,
		InstanceIDs: instanceFilter(f),
		Order:       api.OrderAsc,
		Limit:       s.opts.PageLimit,
	}, f.Grouped)

	s.mu.Lock()
	s.newerBusy = false
	if s.closed {
		// Torn down while the fetch was in flight: no mutation, no timer.
		s.mu.Unlock()
		return nil
	}
	if gen != s.generation {
		// A reload superseded this poll; its result is stale. Discard
		// silently: last reload wins.
		s.schedulePollLocked()
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.logger.Warn("poll for newer logs failed", zap.Error(err))
		s.schedulePollLocked()
		s.mu.Unlock()
		return err
	}

	visibleIDs := make(map[string]bool, len(s.visible))
	for _, g := range s.visible {
		visibleIDs[g.InstanceID] = true
	}

	var toVisible, toHidden []logs.LogEntry
	for _, g := range groups {
		if visibleIDs[g.InstanceID] {
			toVisible = append(toVisible, g.Entries...)
		} else {
			toHidden = append(toHidden, g.Entries...)
		}
	}
	if len(toVisible) > 0 {
		s.visible = logs.GroupAndSanitize(append(logs.Flatten(s.visible), toVisible...))
	}
	if len(toHidden) > 0 {
		s.hidden = logs.GroupAndSanitize(append(logs.Flatten(s.hidden), toHidden...))
	}

	s.schedulePollLocked()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// schedulePollLocked arms the single poll timer, replacing any pending
// one. Callers hold s.mu. At most one timer is ever outstanding.
func (s *Store) schedulePollLocked() {
	if s.closed || s.opts.PollInterval < 0 {
		return
	}
	if s.pollTimer != nil {
		s.pollTimer.Stop()
	}
	s.pollTimer = time.AfterFunc(s.opts.PollInterval, func() {
		// Errors are already logged; the reschedule happened inside.
		_ = s.LoadNewer(context.Background())
	})
}
