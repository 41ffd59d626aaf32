package logs

// Filters holds the user-adjustable query state for the log viewer.
// Level and date filtering happen at fetch time, not client-side.
type Filters struct {
	// Search terms are substring matches ANDed together, alongside any
	// caller-supplied forced terms.
	Search string

	// Levels is the set of severities to fetch. Empty means all.
	Levels []Level

	// DateFrom/DateTo accept relative strings ("-7d") or absolute
	// RFC3339 instants. Empty DateTo means "now".
	DateFrom string
	DateTo   string

	// Grouped selects the per-invocation view.
	Grouped bool

	// InstanceID restricts the view to a single invocation.
	InstanceID string
}

// DefaultFilters returns the initial viewer state: everything except
// DEBUG over the last seven days, grouped by invocation.
func DefaultFilters() Filters {
	return Filters{
		Levels:   []Level{LevelLog, LevelInfo, LevelWarning, LevelError},
		DateFrom: "-7d",
		Grouped:  true,
	}
}

// HasLevel reports whether the filter set admits the given level.
func (f Filters) HasLevel(l Level) bool {
	if len(f.Levels) == 0 {
		return true
	}
	for _, have := range f.Levels {
		if have == l {
			return true
		}
	}
	return false
}

// Equal reports whether two filter states are identical.
func (f Filters) Equal(other Filters) bool {
	if f.Search != other.Search ||
		f.DateFrom != other.DateFrom ||
		f.DateTo != other.DateTo ||
		f.Grouped != other.Grouped ||
		f.InstanceID != other.InstanceID ||
		len(f.Levels) != len(other.Levels) {
		return false
	}
	for i := range f.Levels {
		if f.Levels[i] != other.Levels[i] {
			return false
		}
	}
	return true
}
