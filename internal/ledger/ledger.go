// Package ledger implements the persisted idempotency store for submitted
// work logs. The ledger is a single JSON file mapping entry ids to the
// record of their prior submission; absence of an id is the only condition
// under which an entry may be submitted again.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/tildaslashalef/togglsync/internal/entry"
	"github.com/tildaslashalef/togglsync/internal/loggy"
	"github.com/tildaslashalef/togglsync/internal/ulid"
)

// SyncRecord is one ledger entry: everything known about a prior submission
// of a single time entry.
type SyncRecord struct {
	EntryID         string    `json:"entryId"`
	Description     string    `json:"description"`
	DurationSeconds int64     `json:"durationSeconds"`
	StartedAt       time.Time `json:"startedAt"`
	IssueKey        string    `json:"jiraIssueKey"`
	WorkLogID       string    `json:"jiraWorkLogId"`
	BatchID         string    `json:"batchId,omitempty"`
	SyncedAt        time.Time `json:"syncedAt"`
}

// SyncedEntry is a time entry annotated with its stored sync record, as
// produced by Partition for the already-synced bucket.
type SyncedEntry struct {
	entry.TimeEntry
	Record SyncRecord
}

// SyncedGroup aggregates already-synced entries under the issue key they
// were submitted to. Display only.
type SyncedGroup struct {
	IssueKey     string
	Entries      []SyncedEntry
	TotalSeconds int64
}

// Stats summarizes the whole ledger.
type Stats struct {
	TotalEntries int
	TotalSeconds int64
	UniqueIssues int
	Issues       []string
}

// ledgerFile is the on-disk wire format.
type ledgerFile struct {
	SyncedEntries map[string]SyncRecord `json:"syncedEntries"`
}

// Ledger is the in-memory view of the sync ledger file. It is loaded once
// at construction and flushed synchronously after every mutation. A single
// process instance per invocation is assumed; there is no file locking.
type Ledger struct {
	path   string
	logger *loggy.Logger
	data   ledgerFile
}

// New loads the ledger from the given path. A missing or unparseable file
// degrades to an empty ledger with a warning; it is never fatal, at the
// accepted cost of re-exposing already-submitted entries when the file was
// corrupted.
func New(path string, logger *loggy.Logger) *Ledger {
	l := &Ledger{
		path:   path,
		logger: logger,
		data:   ledgerFile{SyncedEntries: make(map[string]SyncRecord)},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read sync ledger, starting fresh", "path", path, "error", err)
		}
		return l
	}

	var parsed ledgerFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logger.Warn("failed to parse sync ledger, starting fresh", "path", path, "error", err)
		return l
	}

	if parsed.SyncedEntries != nil {
		l.data = parsed
	}

	return l
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// IsSynced reports whether the entry id has a prior submission record.
func (l *Ledger) IsSynced(id string) bool {
	_, ok := l.data.SyncedEntries[id]
	return ok
}

// Get returns the sync record for an entry id, if present.
func (l *Ledger) Get(id string) (SyncRecord, bool) {
	rec, ok := l.data.SyncedEntries[id]
	return rec, ok
}

// Len returns the number of records in the ledger.
func (l *Ledger) Len() int {
	return len(l.data.SyncedEntries)
}

// MarkSynced upserts a record for every entry with a single shared syncedAt
// timestamp and batch id, then flushes the ledger. A later call for the
// same entry id overwrites the prior record (last-write-wins): the overwrite
// re-points metadata only and never undoes the remote effect of the original
// submission.
//
// A flush failure is returned to the caller but does not roll back the
// in-memory marks; the next successful flush persists them.
func (l *Ledger) MarkSynced(entries []entry.TimeEntry, issueKey, workLogID string) error {
	syncedAt := time.Now().UTC()
	batchID := ulid.BatchID()

	for _, e := range entries {
		l.data.SyncedEntries[e.ID] = SyncRecord{
			EntryID:         e.ID,
			Description:     e.Description,
			DurationSeconds: e.DurationSeconds,
			StartedAt:       e.StartedAt,
			IssueKey:        issueKey,
			WorkLogID:       workLogID,
			BatchID:         batchID,
			SyncedAt:        syncedAt,
		}
	}

	l.logger.Debug("marked entries as synced",
		"count", len(entries),
		"issue_key", issueKey,
		"work_log_id", workLogID,
		"batch_id", batchID,
	)

	return l.save()
}

// Partition classifies every entry independently into already-synced and
// unsynced. Synced entries carry their stored record for display.
func (l *Ledger) Partition(entries []entry.TimeEntry) (synced []SyncedEntry, unsynced []entry.TimeEntry) {
	for _, e := range entries {
		if rec, ok := l.data.SyncedEntries[e.ID]; ok {
			synced = append(synced, SyncedEntry{TimeEntry: e, Record: rec})
		} else {
			unsynced = append(unsynced, e)
		}
	}
	return synced, unsynced
}

// GroupSyncedByIssue aggregates already-synced entries by the issue key
// recorded at submission time. Group order is insertion order of first
// occurrence.
func GroupSyncedByIssue(synced []SyncedEntry) []SyncedGroup {
	var groups []SyncedGroup
	index := make(map[string]int)

	for _, se := range synced {
		key := se.Record.IssueKey

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, SyncedGroup{IssueKey: key})
		}

		groups[i].Entries = append(groups[i].Entries, se)
		groups[i].TotalSeconds += se.DurationSeconds
	}

	return groups
}

// Clear resets the ledger to empty and persists immediately.
func (l *Ledger) Clear() error {
	l.data = ledgerFile{SyncedEntries: make(map[string]SyncRecord)}
	return l.save()
}

// Stats summarizes the ledger contents. The issue list is sorted.
func (l *Ledger) Stats() Stats {
	var s Stats
	seen := make(map[string]bool)

	for _, rec := range l.data.SyncedEntries {
		s.TotalEntries++
		s.TotalSeconds += rec.DurationSeconds
		if !seen[rec.IssueKey] {
			seen[rec.IssueKey] = true
			s.Issues = append(s.Issues, rec.IssueKey)
		}
	}

	sort.Strings(s.Issues)
	s.UniqueIssues = len(s.Issues)

	return s
}

// Records returns every sync record ordered by synced-at time, then entry
// id for records sharing a timestamp.
func (l *Ledger) Records() []SyncRecord {
	records := make([]SyncRecord, 0, len(l.data.SyncedEntries))
	for _, rec := range l.data.SyncedEntries {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].SyncedAt.Equal(records[j].SyncedAt) {
			return records[i].SyncedAt.Before(records[j].SyncedAt)
		}
		return records[i].EntryID < records[j].EntryID
	})

	return records
}

// save writes the whole ledger to disk with stable formatting. Map keys are
// emitted sorted, so repeated saves of identical state are byte-identical.
func (l *Ledger) save() error {
	raw, err := json.MarshalIndent(l.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling sync ledger: %w", err)
	}

	if err := os.WriteFile(l.path, raw, 0644); err != nil {
		return fmt.Errorf("writing sync ledger: %w", err)
	}

	return nil
}
