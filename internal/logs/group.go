package logs

import "sort"

// GroupAndSanitize merges raw log rows into per-invocation groups.
//
// Rows are partitioned by instance id, deduplicated on the
// (instance, level, timestamp) triple keeping the first-seen copy, and
// sorted ascending by timestamp within each group. Each group's bounds
// and LogLevel (highest severity present) are derived from its entries.
// Output groups are sorted descending by MaxTimestamp, so the most
// recently active invocation comes first.
//
// The function is idempotent: regrouping the flattened output of a
// previous call yields the same groups.
func GroupAndSanitize(rows []LogEntry) []GroupedLogEntry {
	if len(rows) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(rows))
	byInstance := make(map[string][]LogEntry)
	var order []string

	for _, row := range rows {
		key := row.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := byInstance[row.InstanceID]; !ok {
			order = append(order, row.InstanceID)
		}
		byInstance[row.InstanceID] = append(byInstance[row.InstanceID], row)
	}

	groups := make([]GroupedLogEntry, 0, len(order))
	for _, id := range order {
		entries := byInstance[id]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		})

		group := GroupedLogEntry{
			InstanceID:   id,
			Entries:      entries,
			MinTimestamp: entries[0].Timestamp,
			MaxTimestamp: entries[len(entries)-1].Timestamp,
			LogLevel:     maxSeverity(entries),
		}
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].MaxTimestamp.After(groups[j].MaxTimestamp)
	})

	return groups
}

// Flatten concatenates every group's entries, preserving group order.
func Flatten(groups []GroupedLogEntry) []LogEntry {
	var out []LogEntry
	for _, g := range groups {
		out = append(out, g.Entries...)
	}
	return out
}

// maxSeverity returns the highest-severity level among entries. Ties are
// broken by severity rank, not by entry time.
func maxSeverity(entries []LogEntry) Level {
	level := LevelDebug
	for _, e := range entries {
		if e.Level > level {
			level = e.Level
		}
	}
	return level
}
