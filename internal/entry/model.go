// Package entry contains the time entry domain model: parsing raw
// time-tracking records, Jira issue key extraction, and the grouping
// operations the reconciliation engine is built on. Everything in this
// package is pure; no I/O happens here.
package entry

import (
	"regexp"
	"strings"
	"time"
)

// NoDescription is the sentinel used when a time entry has no description.
const NoDescription = "(no description)"

// DateFormat is the layout of the calendar date component of a composite
// group key.
const DateFormat = "2006-01-02"

var (
	// issueKeyPattern matches a Jira issue key anywhere in free text,
	// e.g. "ABC-123" inside "ABC-123 fix login flow". Matching is
	// case-sensitive: lowercase look-alikes are not issue keys.
	issueKeyPattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]+-\d+)\b`)

	// issueKeyExact matches a complete, well-formed issue key.
	issueKeyExact = regexp.MustCompile(`^[A-Z][A-Z0-9]+-\d+$`)
)

// TimeEntry is one normalized remote time record. Immutable after parsing.
type TimeEntry struct {
	ID              string    `json:"id"`
	Description     string    `json:"description"`
	DurationSeconds int64     `json:"duration_seconds"`
	StartedAt       time.Time `json:"started_at"`
	IssueKey        string    `json:"issue_key,omitempty"`
	HasIssue        bool      `json:"has_issue"`
}

// Parse normalizes one raw time record into a TimeEntry. Negative durations
// (the remote convention for "still running") are clamped to zero, and the
// issue key is extracted from the description once, here.
func Parse(id, description string, durationSeconds int64, startedAt time.Time) TimeEntry {
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	key, ok := ExtractIssueKey(description)

	return TimeEntry{
		ID:              id,
		Description:     description,
		DurationSeconds: durationSeconds,
		StartedAt:       startedAt,
		IssueKey:        key,
		HasIssue:        ok,
	}
}

// ExtractIssueKey returns the first issue key found in the given free text,
// scanning left to right. The second return is false when no key is present.
func ExtractIssueKey(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	match := issueKeyPattern.FindString(text)
	if match == "" {
		return "", false
	}

	return match, true
}

// IsValidIssueKey reports whether key is a complete, well-formed issue key.
func IsValidIssueKey(key string) bool {
	return issueKeyExact.MatchString(key)
}

// NormalizeIssueKey upper-cases and trims a user-supplied issue key before
// format checking and remote validation.
func NormalizeIssueKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// DisplayDescription returns the entry description, or the NoDescription
// sentinel when it is empty.
func (e TimeEntry) DisplayDescription() string {
	if e.Description == "" {
		return NoDescription
	}
	return e.Description
}

// UTCDate returns the UTC calendar date of the entry's start time, formatted
// as DateFormat. Entries spanning a day boundary belong to the date they
// started on.
func (e TimeEntry) UTCDate() string {
	return e.StartedAt.UTC().Format(DateFormat)
}
