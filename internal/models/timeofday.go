package models

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time stored as zero-padded "HH:MM" text.
// Lexicographic order matches temporal order, so the same comparisons
// work in Go and in SQL.
type TimeOfDay string

// ParseTimeOfDay validates s against the 24-hour HH:MM format.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("invalid time %q: use HH:MM", s)
	}
	return TimeOfDay(t.Format("15:04")), nil
}

// Clock returns the hour and minute components.
func (t TimeOfDay) Clock() (hour, minute int) {
	parsed, err := time.Parse("15:04", string(t))
	if err != nil {
		return 0, 0
	}
	return parsed.Hour(), parsed.Minute()
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	h, m := t.Clock()
	return h*60 + m
}

func (t TimeOfDay) String() string { return string(t) }
