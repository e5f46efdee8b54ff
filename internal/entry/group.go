package entry

import "sort"

// GroupKind distinguishes the two aggregation variants. The engine only
// produces DateScoped groups for issue-bound entries; Ungrouped is the
// issue-only form used for display of historical data and kept for
// work-log drafts that carry no date.
type GroupKind uint8

const (
	// Ungrouped aggregates by description or by bare issue key.
	Ungrouped GroupKind = iota

	// DateScoped aggregates by (issue key, UTC calendar date).
	DateScoped
)

// Group is one aggregation unit over time entries.
//
// For description groups, Description holds the (possibly sentinel) group
// key. For issue groups, IssueKey is set and Date is additionally set when
// the group is DateScoped.
type Group struct {
	Kind         GroupKind
	Description  string
	IssueKey     string
	Date         string // UTC calendar date, DateFormat layout
	Entries      []TimeEntry
	TotalSeconds int64
}

// Key returns the composite identity of the group: the description for
// description groups, "ISSUE_DATE" for date-scoped groups, and the bare
// issue key otherwise.
func (g Group) Key() string {
	if g.IssueKey == "" {
		return g.Description
	}
	if g.Kind == DateScoped {
		return g.IssueKey + "_" + g.Date
	}
	return g.IssueKey
}

// GroupByDescription groups entries by exact description equality. Entries
// with an empty description coalesce under the NoDescription sentinel.
// Group order is insertion order of first occurrence.
func GroupByDescription(entries []TimeEntry) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, e := range entries {
		key := e.DisplayDescription()

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Kind:        Ungrouped,
				Description: key,
			})
		}

		groups[i].Entries = append(groups[i].Entries, e)
		groups[i].TotalSeconds += e.DurationSeconds
	}

	return groups
}

// GroupByIssueAndDate groups issue-bound entries by (issue key, UTC date of
// start time). Within each group entries are sorted ascending by start time
// with a stable sort, so entries sharing a timestamp keep their original
// relative order. Entries without an issue key are skipped; pre-filtering
// is the caller's job but the function does not rely on it.
func GroupByIssueAndDate(entries []TimeEntry) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, e := range entries {
		if e.IssueKey == "" {
			continue
		}

		date := e.UTCDate()
		key := e.IssueKey + "_" + date

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Kind:     DateScoped,
				IssueKey: e.IssueKey,
				Date:     date,
			})
		}

		groups[i].Entries = append(groups[i].Entries, e)
		groups[i].TotalSeconds += e.DurationSeconds
	}

	for i := range groups {
		sortEntriesByStart(groups[i].Entries)
	}

	return groups
}

// GroupByIssue groups issue-bound entries by bare issue key, ignoring dates.
// This is the legacy ungrouped form, used for displaying historical buckets.
func GroupByIssue(entries []TimeEntry) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, e := range entries {
		if e.IssueKey == "" {
			continue
		}

		i, ok := index[e.IssueKey]
		if !ok {
			i = len(groups)
			index[e.IssueKey] = i
			groups = append(groups, Group{
				Kind:     Ungrouped,
				IssueKey: e.IssueKey,
			})
		}

		groups[i].Entries = append(groups[i].Entries, e)
		groups[i].TotalSeconds += e.DurationSeconds
	}

	return groups
}

// WithIssueKey returns a copy of the entry re-pointed at the given issue
// key. Used by the interactive reassignment step; the original entry is not
// mutated.
func (e TimeEntry) WithIssueKey(key string) TimeEntry {
	e.IssueKey = key
	e.HasIssue = key != ""
	return e
}

func sortEntriesByStart(entries []TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartedAt.Before(entries[j].StartedAt)
	})
}
