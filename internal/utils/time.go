package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04"
)

// ParseDate parses YYYY-MM-DD as a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.UTC)
}

// DayBounds returns [start, end) of the UTC day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(layoutDate)
}

// FormatDateTime renders "YYYY-MM-DD HH:MM UTC" for notes and printed tickets.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(layoutDateTime) + " UTC"
}
