// Package calendar works with whole UTC calendar days.
//
// A "date" here is a time.Time at 00:00:00 UTC. Every exported helper returns
// values in that normalized form so dates can be compared with Equal, Before
// and After without caring about the clock part.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

const day = 24 * time.Hour

// Truncate drops the time-of-day component of t, interpreting t in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Today returns the calendar day containing now.
func Today(now time.Time) time.Time {
	return Truncate(now)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Truncate(a).Equal(Truncate(b))
}

// DaysBetween returns the number of whole days from start to end.
// The result is negative when end is before start.
func DaysBetween(start, end time.Time) int {
	return int(Truncate(end).Sub(Truncate(start)) / day)
}

// Expand returns one date per calendar day in [start, end], ascending.
// An inverted range yields an empty slice.
func Expand(start, end time.Time) []time.Time {
	first, last := Truncate(start), Truncate(end)
	if last.Before(first) {
		return []time.Time{}
	}

	dates := make([]time.Time, 0, DaysBetween(first, last)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
