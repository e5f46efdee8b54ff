package utils

import (
	"fmt"
	"time"
)

// FormatDuration renders a second count as "Xh Ym", or "Ym" when under an
// hour. Zero renders as "0m".
func FormatDuration(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatTimeRange renders a start time and duration as a fixed-width
// "HH:MM-HH:MM" range in UTC.
func FormatTimeRange(start time.Time, durationSeconds int64) string {
	s := start.UTC()
	e := s.Add(time.Duration(durationSeconds) * time.Second)
	return s.Format("15:04") + "-" + e.Format("15:04")
}

// Truncate shortens a string to max runes, appending "..." when it was cut.
func Truncate(s string, max int) string {
	if max <= 3 {
		max = 3
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
