package models

import "time"

// Window is a closed time interval [Start, End] scoping an aggregation
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, both endpoints included
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Valid reports whether the window is non-empty
func (w Window) Valid() bool {
	return !w.Start.IsZero() && !w.End.Before(w.Start)
}

// MonthWindow returns the calendar month containing t, in t's location
func MonthWindow(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// TrailingMonths returns the window covering the n calendar months ending with the month of t
func TrailingMonths(t time.Time, n int) Window {
	if n < 1 {
		n = 1
	}
	current := MonthWindow(t)
	return Window{Start: current.Start.AddDate(0, -(n - 1), 0), End: current.End}
}

// DaysInMonth returns the number of days of t's month
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// TrailingMonthsToDate is TrailingMonths cut at the end of t's day, so that
// days which have not happened yet are left out
func TrailingMonthsToDate(t time.Time, n int) Window {
	w := TrailingMonths(t, n)
	dayEnd := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
	if dayEnd.Before(w.End) {
		w.End = dayEnd
	}
	return w
}

// CalendarLocation is the zone calendar buckets (month, weekday, day) are
// computed in. The process-local zone has no portable name, so it maps to UTC.
func CalendarLocation(loc *time.Location) *time.Location {
	if loc == nil || loc == time.Local {
		return time.UTC
	}
	return loc
}

// CalendarTime returns t in its CalendarLocation
func CalendarTime(t time.Time) time.Time {
	return t.In(CalendarLocation(t.Location()))
}
