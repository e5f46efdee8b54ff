package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tildaslashalef/togglsync/internal/entry"
	"github.com/tildaslashalef/togglsync/internal/ledger"
	"github.com/tildaslashalef/togglsync/internal/loggy"
	"github.com/tildaslashalef/togglsync/internal/toggl"
	"github.com/tildaslashalef/togglsync/internal/ulid"
)

// EntrySource fetches raw time entries for a date range. Implemented by
// the Toggl client.
type EntrySource interface {
	GetTimeEntries(ctx context.Context, start, end time.Time) ([]toggl.TimeEntry, error)
}

// WorkLogSink creates work logs and validates issue keys on the remote
// tracker. Implemented by the Jira client.
type WorkLogSink interface {
	CreateWorkLog(ctx context.Context, issueKey string, timeSpentSeconds int64, startedAt time.Time, comment string) (string, error)
	ValidateIssueKey(ctx context.Context, key string) (bool, error)
}

// Service drives one end-to-end reconciliation pass. It is single-threaded
// and fully synchronous: no two passes run concurrently and remote
// submissions are processed one draft at a time, so ledger writes are
// strictly ordered.
type Service struct {
	source EntrySource
	sink   WorkLogSink
	ledger *ledger.Ledger
	logger *loggy.Logger
}

// NewService creates a new reconciliation service
func NewService(source EntrySource, sink WorkLogSink, l *ledger.Ledger, logger *loggy.Logger) *Service {
	return &Service{
		source: source,
		sink:   sink,
		ledger: l,
		logger: logger,
	}
}

// PlanOptions controls one reconciliation pass.
type PlanOptions struct {
	Start time.Time
	End   time.Time

	// Prompter enables the interactive reassignment of non-issue groups.
	// Nil (always the case in dry-run mode) skips the step.
	Prompter Prompter
}

// Plan is the outcome of the planning half of a pass: everything needed to
// display the summary and to submit the drafts.
type Plan struct {
	Entries  []entry.TimeEntry
	Synced   []ledger.SyncedEntry
	NonIssue []entry.Group
	Drafts   []WorkLogDraft
	Summary  Summary
}

// Plan runs steps 1-7 of a reconciliation pass: parse, partition against
// the ledger, group, optionally reassign interactively, and build the
// final drafts and summary. Submission is a separate call so the caller
// can confirm first.
func (s *Service) Plan(ctx context.Context, opts PlanOptions) (*Plan, error) {
	runID := ulid.RunID()
	logger := s.logger.With("run_id", runID)

	raw, err := s.source.GetTimeEntries(ctx, opts.Start, opts.End)
	if err != nil {
		return nil, fmt.Errorf("fetching time entries: %w", err)
	}

	parsed := s.parseAll(raw)
	logger.Info("fetched time entries", "count", len(parsed), "start", opts.Start, "end", opts.End)

	synced, unsynced := s.ledger.Partition(parsed)

	var issueBound, nonIssue []entry.TimeEntry
	for _, e := range unsynced {
		if e.HasIssue {
			issueBound = append(issueBound, e)
		} else {
			nonIssue = append(nonIssue, e)
		}
	}

	issueGroups := entry.GroupByIssueAndDate(issueBound)
	nonIssueGroups := entry.GroupByDescription(nonIssue)

	logger.Debug("partitioned entries",
		"synced", len(synced),
		"issue_bound", len(issueBound),
		"non_issue", len(nonIssue),
	)

	if opts.Prompter != nil && len(nonIssueGroups) > 0 {
		assignments, remaining, err := s.reassign(ctx, nonIssueGroups, opts.Prompter, s.sink)
		if err != nil {
			return nil, fmt.Errorf("interactive reassignment: %w", err)
		}
		issueGroups = mergeAssignments(issueGroups, assignments)
		nonIssueGroups = remaining
	}

	drafts := BuildDrafts(issueGroups)
	summary := BuildSummary(ledger.GroupSyncedByIssue(synced), drafts, nonIssueGroups)

	return &Plan{
		Entries:  parsed,
		Synced:   synced,
		NonIssue: nonIssueGroups,
		Drafts:   drafts,
		Summary:  summary,
	}, nil
}

// Submit sends every draft to the remote tracker sequentially. Each
// successful draft is recorded in the ledger before the next submission
// starts; a failed draft is reported and never blocks its siblings. A
// ledger flush failure after a successful remote write is a warning, not a
// rollback: the in-memory mark stands and the next flush persists it.
func (s *Service) Submit(ctx context.Context, drafts []WorkLogDraft) *SubmitResult {
	result := &SubmitResult{}

	for _, draft := range drafts {
		workLogID, err := s.sink.CreateWorkLog(ctx, draft.IssueKey, draft.TotalSeconds, draft.StartedAt, draft.Comment)
		if err != nil {
			s.logger.Warn("work log submission failed",
				"issue_key", draft.IssueKey,
				"entries", draft.EntryCount,
				"error", err,
			)
			result.Failed = append(result.Failed, FailedDraft{Draft: draft, Err: err})
			continue
		}

		if err := s.ledger.MarkSynced(draft.Entries, draft.IssueKey, workLogID); err != nil {
			s.logger.Warn("failed to persist sync ledger after submission",
				"issue_key", draft.IssueKey,
				"work_log_id", workLogID,
				"error", err,
			)
		}

		result.Successful = append(result.Successful, SubmittedDraft{Draft: draft, WorkLogID: workLogID})
	}

	return result
}

// parseAll normalizes raw records into domain entries, dropping duplicate
// ids so the per-pass uniqueness invariant holds even against a misbehaving
// source.
func (s *Service) parseAll(raw []toggl.TimeEntry) []entry.TimeEntry {
	parsed := make([]entry.TimeEntry, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		id := strconv.FormatInt(r.ID, 10)
		if seen[id] {
			s.logger.Warn("dropping duplicate time entry id", "id", id)
			continue
		}
		seen[id] = true
		parsed = append(parsed, entry.Parse(id, r.Description, r.Duration, r.Start))
	}

	return parsed
}
