package reconcile

import (
	"fmt"
	"strings"

	"github.com/tildaslashalef/togglsync/internal/entry"
	"github.com/tildaslashalef/togglsync/internal/ledger"
	"github.com/tildaslashalef/togglsync/internal/utils"
)

// BuildDraft converts one issue group into a submittable work-log draft.
//
// Date-scoped groups get a structured per-entry breakdown and a multi-line
// comment enumerating each entry's UTC time range, duration and
// description, closed by a total line. Ungrouped groups fall back to the
// distinct descriptions joined with "; ", deduplicated by exact text in
// order of first occurrence.
func BuildDraft(g entry.Group) WorkLogDraft {
	draft := WorkLogDraft{
		Kind:         g.Kind,
		IssueKey:     g.IssueKey,
		Date:         g.Date,
		TotalSeconds: g.TotalSeconds,
		EntryCount:   len(g.Entries),
		Entries:      g.Entries,
	}

	if len(g.Entries) > 0 {
		draft.StartedAt = g.Entries[0].StartedAt
		for _, e := range g.Entries[1:] {
			if e.StartedAt.Before(draft.StartedAt) {
				draft.StartedAt = e.StartedAt
			}
		}
	}

	if g.Kind == entry.DateScoped {
		draft.Breakdown = buildBreakdown(g.Entries)
		draft.Comment = buildBreakdownComment(draft.Breakdown, g.TotalSeconds)
	} else {
		draft.Comment = joinDistinctDescriptions(g.Entries)
	}

	return draft
}

// BuildDrafts converts every issue group, preserving group order.
func BuildDrafts(groups []entry.Group) []WorkLogDraft {
	drafts := make([]WorkLogDraft, 0, len(groups))
	for _, g := range groups {
		drafts = append(drafts, BuildDraft(g))
	}
	return drafts
}

// BuildSummary assembles the read-only projection over the three buckets.
func BuildSummary(synced []ledger.SyncedGroup, drafts []WorkLogDraft, nonIssue []entry.Group) Summary {
	s := Summary{Drafts: drafts}

	for _, g := range synced {
		entries := make([]entry.TimeEntry, 0, len(g.Entries))
		for _, se := range g.Entries {
			entries = append(entries, se.TimeEntry)
		}
		s.AlreadySynced = append(s.AlreadySynced, SyncedSummary{
			IssueKey:     g.IssueKey,
			TotalSeconds: g.TotalSeconds,
			EntryCount:   len(g.Entries),
			Description:  joinDistinctDescriptions(entries),
		})
		s.Totals.SyncedSeconds += g.TotalSeconds
	}

	for _, d := range drafts {
		s.Totals.DraftSeconds += d.TotalSeconds
	}

	for _, g := range nonIssue {
		s.NonIssue = append(s.NonIssue, NonIssueSummary{
			Description:  g.Description,
			TotalSeconds: g.TotalSeconds,
			EntryCount:   len(g.Entries),
		})
		s.Totals.NonIssueSeconds += g.TotalSeconds
	}

	s.Totals.TotalSeconds = s.Totals.SyncedSeconds + s.Totals.DraftSeconds + s.Totals.NonIssueSeconds

	return s
}

func buildBreakdown(entries []entry.TimeEntry) []BreakdownLine {
	lines := make([]BreakdownLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, BreakdownLine{
			TimeRange:       utils.FormatTimeRange(e.StartedAt, e.DurationSeconds),
			DurationSeconds: e.DurationSeconds,
			Description:     e.DisplayDescription(),
		})
	}
	return lines
}

func buildBreakdownComment(breakdown []BreakdownLine, totalSeconds int64) string {
	var b strings.Builder
	for _, line := range breakdown {
		fmt.Fprintf(&b, "%s (%s): %s\n", line.TimeRange, utils.FormatDuration(line.DurationSeconds), line.Description)
	}
	fmt.Fprintf(&b, "Total: %s", utils.FormatDuration(totalSeconds))
	return b.String()
}

// joinDistinctDescriptions joins the distinct entry descriptions with "; ",
// deduplicated by exact text, order of first occurrence preserved.
func joinDistinctDescriptions(entries []entry.TimeEntry) string {
	var out []string
	seen := make(map[string]bool)

	for _, e := range entries {
		desc := e.DisplayDescription()
		if seen[desc] {
			continue
		}
		seen[desc] = true
		out = append(out, desc)
	}

	return strings.Join(out, "; ")
}
