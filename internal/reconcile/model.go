// Package reconcile implements the reconciliation engine: it turns raw
// time-tracking records into deduplicated, aggregated work-log drafts,
// drives the optional interactive reassignment of unmatched entries, and
// records successful submissions in the sync ledger.
package reconcile

import (
	"time"

	"github.com/tildaslashalef/togglsync/internal/entry"
)

// BreakdownLine is one row of a date-scoped draft's per-entry breakdown.
type BreakdownLine struct {
	TimeRange       string // "HH:MM-HH:MM" in UTC
	DurationSeconds int64
	Description     string
}

// WorkLogDraft is an aggregated, not-yet-submitted work-log candidate.
// Kind distinguishes the date-scoped form (with a breakdown) from the
// legacy ungrouped form (descriptions joined into a single line).
type WorkLogDraft struct {
	Kind         entry.GroupKind
	IssueKey     string
	Date         string // set when Kind == entry.DateScoped
	TotalSeconds int64
	StartedAt    time.Time // earliest entry start, used as the remote work log start
	Comment      string
	EntryCount   int
	Entries      []entry.TimeEntry
	Breakdown    []BreakdownLine // date-scoped only
}

// SyncedSummary is the display row for one already-synced issue bucket.
type SyncedSummary struct {
	IssueKey     string
	TotalSeconds int64
	EntryCount   int
	Description  string // distinct entry descriptions, "; "-joined
}

// NonIssueSummary is the display row for one description group without an
// issue key.
type NonIssueSummary struct {
	Description  string
	TotalSeconds int64
	EntryCount   int
}

// Totals holds the per-bucket and grand totals of a reconciliation pass.
// A bucket with no entries reports zero, it is never omitted.
type Totals struct {
	DraftSeconds    int64
	NonIssueSeconds int64
	SyncedSeconds   int64
	TotalSeconds    int64
}

// Summary is the read-only projection over the three buckets of a pass.
// It is rebuilt from scratch on every pass, never mutated in place.
type Summary struct {
	AlreadySynced []SyncedSummary
	Drafts        []WorkLogDraft
	NonIssue      []NonIssueSummary
	Totals        Totals
}

// SubmittedDraft pairs a draft with the remote work log id it was created
// under.
type SubmittedDraft struct {
	Draft     WorkLogDraft
	WorkLogID string
}

// FailedDraft pairs a draft with the error that prevented its submission.
type FailedDraft struct {
	Draft WorkLogDraft
	Err   error
}

// SubmitResult is the outcome of a batch submission. Partial failure is a
// first-class outcome: failed drafts never block their siblings.
type SubmitResult struct {
	Successful []SubmittedDraft
	Failed     []FailedDraft
}
