package helpers

import (
	"strings"
	"time"
)

// inputLayouts are accepted for event dates, most specific first.
// datetime-local form values carry no zone and are read as UTC.
var inputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02",
}

// ParseTimeAny parses s with the first matching input layout.
func ParseTimeAny(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range inputLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatEventTime renders t the way notification emails show dates.
func FormatEventTime(t time.Time) string {
	return t.UTC().Format("Monday, 02 January 2006, 15:04 MST")
}
