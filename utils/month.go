package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseMonth accepts "YYYY-MM-DD" or "YYYY-MM" and normalizes to the
// first day of that month in UTC, which is the uniqueness key for
// monthly payments and electricity bills.
func ParseMonth(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("month is required")
	}

	var t time.Time
	var err error
	switch {
	case len(s) == 10 && s[4] == '-' && s[7] == '-':
		t, err = time.Parse("2006-01-02", s)
	case len(s) == 7 && s[4] == '-':
		t, err = time.Parse("2006-01", s)
	default:
		return time.Time{}, fmt.Errorf("invalid month format: %s (use YYYY-MM or YYYY-MM-DD)", s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}

	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// ParseDate accepts "YYYY-MM-DD" only.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return t, nil
}

// FirstOfMonth truncates any date to the first day of its month in UTC.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
