// Package metrics derives aggregate views from snapshots of domain records.
// Every function is pure: it takes the records plus an explicit reference
// time, mutates nothing, and returns the same output for the same input.
package metrics

import (
	"time"

	"tally/internal/core"
)

// Range is an inclusive calendar-day range used for aggregation.
type Range struct {
	Start core.Date
	End   core.Date
}

// Contains reports whether d falls inside the range, bounds inclusive.
func (r Range) Contains(d core.Date) bool {
	return d.In(r.Start, r.End)
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Range {
	start, end := core.MonthBounds(t)
	return Range{Start: start, End: end}
}

// WeekOf returns the Monday-start week containing t.
func WeekOf(t time.Time) Range {
	start, end := core.WeekBounds(t)
	return Range{Start: start, End: end}
}

// LastNDays returns the n most recent calendar days ending on t's day.
func LastNDays(t time.Time, n int) Range {
	end := core.DateOf(t)
	return Range{Start: end.AddDays(-(n - 1)), End: end}
}
