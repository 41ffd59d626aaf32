// Package params maps log viewer filter state to and from URL query
// parameters, so any filter combination is shareable as a link and a
// pasted link restores the same view.
package params

import (
	"net/url"
	"strconv"

	"github.com/hogtail/hogtail/internal/logs"
)

// Query parameter keys. levels repeats, one value per selected level.
const (
	KeySearch     = "search"
	KeyLevels     = "levels"
	KeyDateFrom   = "date_from"
	KeyDateTo     = "date_to"
	KeyGrouped    = "grouped"
	KeyInstanceID = "instance_id"
)

// Encode renders a filter state as URL query parameters. Fields at their
// default are still written so a shared link pins the exact view.
func Encode(f logs.Filters) url.Values {
	values := url.Values{}
	if f.Search != "" {
		values.Set(KeySearch, f.Search)
	}
	for _, l := range f.Levels {
		values.Add(KeyLevels, l.String())
	}
	if f.DateFrom != "" {
		values.Set(KeyDateFrom, f.DateFrom)
	}
	if f.DateTo != "" {
		values.Set(KeyDateTo, f.DateTo)
	}
	values.Set(KeyGrouped, strconv.FormatBool(f.Grouped))
	if f.InstanceID != "" {
		values.Set(KeyInstanceID, f.InstanceID)
	}
	return values
}

// Decode restores a filter state from URL query parameters. Absent keys
// keep their defaults; unknown keys are ignored.
func Decode(values url.Values) logs.Filters {
	f := logs.DefaultFilters()

	if values.Has(KeySearch) {
		f.Search = values.Get(KeySearch)
	}
	if raw, ok := values[KeyLevels]; ok {
		f.Levels = logs.ParseLevels(raw)
	}
	if values.Has(KeyDateFrom) {
		f.DateFrom = values.Get(KeyDateFrom)
	}
	if values.Has(KeyDateTo) {
		f.DateTo = values.Get(KeyDateTo)
	}
	if values.Has(KeyGrouped) {
		grouped, err := strconv.ParseBool(values.Get(KeyGrouped))
		if err == nil {
			f.Grouped = grouped
		}
	}
	if values.Has(KeyInstanceID) {
		f.InstanceID = values.Get(KeyInstanceID)
	}
	return f
}

// ShareURL builds a shareable link for the given view. base is the log
// viewer page URL; existing query parameters are replaced, not appended,
// mirroring replace-style navigation.
func ShareURL(base string, f logs.Filters) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.RawQuery = Encode(f).Encode()
	return u.String(), nil
}
