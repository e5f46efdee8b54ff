package reconcile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/togglsync/internal/entry"
	"github.com/tildaslashalef/togglsync/internal/ledger"
	"github.com/tildaslashalef/togglsync/internal/loggy"
	"github.com/tildaslashalef/togglsync/internal/toggl"
)

// fakeSource returns a canned set of raw time entries.
type fakeSource struct {
	entries []toggl.TimeEntry
	err     error
}

func (s *fakeSource) GetTimeEntries(ctx context.Context, start, end time.Time) ([]toggl.TimeEntry, error) {
	return s.entries, s.err
}

// fakeSink records created work logs and fails for flagged issue keys.
type fakeSink struct {
	created []string // issue keys in creation order
	fails   map[string]error
	nextID  int
}

func (s *fakeSink) CreateWorkLog(ctx context.Context, issueKey string, timeSpentSeconds int64, startedAt time.Time, comment string) (string, error) {
	if err, ok := s.fails[issueKey]; ok {
		return "", err
	}
	s.nextID++
	s.created = append(s.created, issueKey)
	return "wl-" + issueKey, nil
}

func (s *fakeSink) ValidateIssueKey(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	return ledger.New(filepath.Join(t.TempDir(), "ledger.json"), loggy.NewNoopLogger())
}

func rawEntry(id int64, description string, durationSeconds int64, startedAt time.Time) toggl.TimeEntry {
	return toggl.TimeEntry{
		ID:          id,
		Description: description,
		Duration:    durationSeconds,
		Start:       startedAt,
	}
}

func TestPlan(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	t.Run("classifies entries into the three buckets", func(t *testing.T) {
		l := newTestLedger(t)
		require.NoError(t, l.MarkSynced(
			[]entry.TimeEntry{entry.Parse("10", "OLD-1 earlier", 3600, day.Add(-24*time.Hour))},
			"OLD-1", "wl-old"))

		source := &fakeSource{entries: []toggl.TimeEntry{
			rawEntry(10, "OLD-1 earlier", 3600, day.Add(-24*time.Hour)),
			rawEntry(11, "ABC-123 fix login", 1800, day),
			rawEntry(12, "standup", 900, day.Add(time.Hour)),
		}}

		s := NewService(source, &fakeSink{}, l, loggy.NewNoopLogger())
		plan, err := s.Plan(ctx, PlanOptions{Start: day.Add(-48 * time.Hour), End: day.Add(24 * time.Hour)})
		require.NoError(t, err)

		assert.Len(t, plan.Entries, 3)
		require.Len(t, plan.Synced, 1)
		assert.Equal(t, "10", plan.Synced[0].ID)

		require.Len(t, plan.Drafts, 1)
		assert.Equal(t, "ABC-123", plan.Drafts[0].IssueKey)

		require.Len(t, plan.NonIssue, 1)
		assert.Equal(t, "standup", plan.NonIssue[0].Description)

		assert.Equal(t, int64(6300), plan.Summary.Totals.TotalSeconds)
	})

	t.Run("duplicate ids from the source are dropped", func(t *testing.T) {
		source := &fakeSource{entries: []toggl.TimeEntry{
			rawEntry(11, "ABC-123 fix login", 1800, day),
			rawEntry(11, "ABC-123 fix login", 1800, day),
		}}

		s := NewService(source, &fakeSink{}, newTestLedger(t), loggy.NewNoopLogger())
		plan, err := s.Plan(ctx, PlanOptions{Start: day, End: day.Add(24 * time.Hour)})
		require.NoError(t, err)

		assert.Len(t, plan.Entries, 1)
		require.Len(t, plan.Drafts, 1)
		assert.Equal(t, int64(1800), plan.Drafts[0].TotalSeconds)
	})

	t.Run("source failure aborts the pass", func(t *testing.T) {
		source := &fakeSource{err: errors.New("connection refused")}
		s := NewService(source, &fakeSink{}, newTestLedger(t), loggy.NewNoopLogger())

		_, err := s.Plan(ctx, PlanOptions{Start: day, End: day.Add(24 * time.Hour)})
		assert.Error(t, err)
	})

	t.Run("prompter assignments merge into the draft set", func(t *testing.T) {
		source := &fakeSource{entries: []toggl.TimeEntry{
			rawEntry(11, "ABC-123 fix login", 1800, day),
			rawEntry(12, "standup", 900, day.Add(time.Hour)),
		}}
		prompter := &scriptedPrompter{
			confirm: true,
			actions: []GroupAction{ActionAssign},
			keys:    []string{"ABC-123"},
		}

		s := NewService(source, &fakeSink{}, newTestLedger(t), loggy.NewNoopLogger())
		plan, err := s.Plan(ctx, PlanOptions{
			Start:    day,
			End:      day.Add(24 * time.Hour),
			Prompter: prompter,
		})
		require.NoError(t, err)

		require.Len(t, plan.Drafts, 1)
		assert.Equal(t, int64(2700), plan.Drafts[0].TotalSeconds)
		assert.Equal(t, 2, plan.Drafts[0].EntryCount)
		assert.Empty(t, plan.NonIssue)
	})

	t.Run("nil prompter skips reassignment", func(t *testing.T) {
		source := &fakeSource{entries: []toggl.TimeEntry{
			rawEntry(12, "standup", 900, day),
		}}

		s := NewService(source, &fakeSink{}, newTestLedger(t), loggy.NewNoopLogger())
		plan, err := s.Plan(ctx, PlanOptions{Start: day, End: day.Add(24 * time.Hour)})
		require.NoError(t, err)

		assert.Empty(t, plan.Drafts)
		assert.Len(t, plan.NonIssue, 1)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	buildPlanDrafts := func(descs ...string) []WorkLogDraft {
		var entries []entry.TimeEntry
		for i, d := range descs {
			entries = append(entries, entry.Parse(
				string(rune('a'+i)), d, 600, day.Add(time.Duration(i)*time.Hour)))
		}
		return BuildDrafts(entry.GroupByIssueAndDate(entries))
	}

	t.Run("successful drafts are recorded in the ledger", func(t *testing.T) {
		l := newTestLedger(t)
		sink := &fakeSink{}
		s := NewService(&fakeSource{}, sink, l, loggy.NewNoopLogger())

		drafts := buildPlanDrafts("ABC-1 work", "DEF-2 work")
		result := s.Submit(ctx, drafts)

		require.Len(t, result.Successful, 2)
		assert.Empty(t, result.Failed)
		assert.Equal(t, []string{"ABC-1", "DEF-2"}, sink.created)
		assert.Equal(t, "wl-ABC-1", result.Successful[0].WorkLogID)

		assert.True(t, l.IsSynced("a"))
		assert.True(t, l.IsSynced("b"))
	})

	t.Run("a failed draft does not block its siblings", func(t *testing.T) {
		l := newTestLedger(t)
		sink := &fakeSink{fails: map[string]error{"ABC-1": errors.New("403 forbidden")}}
		s := NewService(&fakeSource{}, sink, l, loggy.NewNoopLogger())

		drafts := buildPlanDrafts("ABC-1 work", "DEF-2 work")
		result := s.Submit(ctx, drafts)

		require.Len(t, result.Failed, 1)
		assert.Equal(t, "ABC-1", result.Failed[0].Draft.IssueKey)
		require.Len(t, result.Successful, 1)
		assert.Equal(t, "DEF-2", result.Successful[0].Draft.IssueKey)

		// only the successful draft's entries are marked
		assert.False(t, l.IsSynced("a"))
		assert.True(t, l.IsSynced("b"))
	})

	t.Run("submitting the same period twice creates nothing new", func(t *testing.T) {
		l := newTestLedger(t)
		sink := &fakeSink{}
		source := &fakeSource{entries: []toggl.TimeEntry{
			rawEntry(11, "ABC-123 fix login", 1800, day),
		}}
		s := NewService(source, sink, l, loggy.NewNoopLogger())

		plan, err := s.Plan(ctx, PlanOptions{Start: day, End: day.Add(24 * time.Hour)})
		require.NoError(t, err)
		s.Submit(ctx, plan.Drafts)
		require.Len(t, sink.created, 1)

		again, err := s.Plan(ctx, PlanOptions{Start: day, End: day.Add(24 * time.Hour)})
		require.NoError(t, err)
		assert.Empty(t, again.Drafts)
		assert.Len(t, again.Synced, 1)

		s.Submit(ctx, again.Drafts)
		assert.Len(t, sink.created, 1)
	})
}
