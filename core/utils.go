package core

import (
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// SameDay reports whether t falls on the calendar day `day` (YYYY-MM-DD) in loc.
func SameDay(t time.Time, day string, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout) == day
}
