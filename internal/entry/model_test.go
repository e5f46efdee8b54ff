package entry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractIssueKey(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		found    bool
	}{
		{
			name:     "key at start of description",
			text:     "ABC-123 fix login flow",
			expected: "ABC-123",
			found:    true,
		},
		{
			name:     "key in the middle",
			text:     "working on PROJ-42 refactor",
			expected: "PROJ-42",
			found:    true,
		},
		{
			name:     "first of multiple keys wins",
			text:     "ABC-1 and DEF-2",
			expected: "ABC-1",
			found:    true,
		},
		{
			name:     "digits in project prefix",
			text:     "K2-77 platform work",
			expected: "K2-77",
			found:    true,
		},
		{
			name:  "lowercase is not a key",
			text:  "abc-123 fix login flow",
			found: false,
		},
		{
			name:  "no key",
			text:  "daily standup",
			found: false,
		},
		{
			name:  "empty text",
			text:  "",
			found: false,
		},
		{
			name:  "single letter prefix is not a key",
			text:  "A-1 something",
			found: false,
		},
		{
			name:  "key glued to a preceding word is rejected by the boundary",
			text:  "see ticketABC-123",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := ExtractIssueKey(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, key)
			} else {
				assert.Empty(t, key)
			}
		})
	}
}

func TestIsValidIssueKey(t *testing.T) {
	assert.True(t, IsValidIssueKey("ABC-123"))
	assert.True(t, IsValidIssueKey("K2-7"))
	assert.False(t, IsValidIssueKey("abc-123"))
	assert.False(t, IsValidIssueKey("ABC-123 trailing"))
	assert.False(t, IsValidIssueKey("leading ABC-123"))
	assert.False(t, IsValidIssueKey("ABC-"))
	assert.False(t, IsValidIssueKey(""))
}

func TestNormalizeIssueKey(t *testing.T) {
	assert.Equal(t, "ABC-123", NormalizeIssueKey("  abc-123 "))
	assert.Equal(t, "PROJ-1", NormalizeIssueKey("proj-1"))
	assert.Equal(t, "", NormalizeIssueKey("   "))
}

func TestParse(t *testing.T) {
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	t.Run("extracts issue key from description", func(t *testing.T) {
		e := Parse("42", "ABC-123 fix login flow", 1800, start)

		assert.Equal(t, "42", e.ID)
		assert.Equal(t, "ABC-123 fix login flow", e.Description)
		assert.Equal(t, int64(1800), e.DurationSeconds)
		assert.Equal(t, start, e.StartedAt)
		assert.Equal(t, "ABC-123", e.IssueKey)
		assert.True(t, e.HasIssue)
	})

	t.Run("no issue key", func(t *testing.T) {
		e := Parse("43", "daily standup", 900, start)

		assert.Empty(t, e.IssueKey)
		assert.False(t, e.HasIssue)
	})

	t.Run("negative duration is clamped to zero", func(t *testing.T) {
		e := Parse("44", "ABC-123 still running", -1710512345, start)

		assert.Equal(t, int64(0), e.DurationSeconds)
	})
}

func TestDisplayDescription(t *testing.T) {
	withDesc := TimeEntry{Description: "ABC-123 fix login"}
	assert.Equal(t, "ABC-123 fix login", withDesc.DisplayDescription())

	empty := TimeEntry{}
	assert.Equal(t, NoDescription, empty.DisplayDescription())
}

func TestUTCDate(t *testing.T) {
	t.Run("converts to UTC before taking the date", func(t *testing.T) {
		// 23:30 on the 15th in UTC+2 is 21:30 on the 15th UTC
		loc := time.FixedZone("UTC+2", 2*3600)
		e := TimeEntry{StartedAt: time.Date(2024, 3, 15, 23, 30, 0, 0, loc)}
		assert.Equal(t, "2024-03-15", e.UTCDate())
	})

	t.Run("entry crossing midnight belongs to its start date", func(t *testing.T) {
		// 01:30 on the 16th in UTC+2 is 23:30 on the 15th UTC
		loc := time.FixedZone("UTC+2", 2*3600)
		e := TimeEntry{StartedAt: time.Date(2024, 3, 16, 1, 30, 0, 0, loc)}
		assert.Equal(t, "2024-03-15", e.UTCDate())
	})
}
