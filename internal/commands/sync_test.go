package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	t.Run("explicit range", func(t *testing.T) {
		start, end, err := parseDateRange("2024-03-01", "2024-03-15")
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC), end)
	})

	t.Run("single day covers the whole day", func(t *testing.T) {
		start, end, err := parseDateRange("2024-03-15", "2024-03-15")
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC), end)
	})

	t.Run("defaults to today", func(t *testing.T) {
		start, end, err := parseDateRange("", "")
		require.NoError(t, err)

		today := time.Now().UTC().Format(dateLayout)
		assert.Equal(t, today, start.Format(dateLayout))
		assert.True(t, end.After(start))
	})

	t.Run("malformed dates are rejected", func(t *testing.T) {
		_, _, err := parseDateRange("15-03-2024", "")
		assert.Error(t, err)

		_, _, err = parseDateRange("", "2024/03/15")
		assert.Error(t, err)
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		_, _, err := parseDateRange("2024-03-15", "2024-03-01")
		assert.Error(t, err)
	})
}
