package model

import "time"

// TimeWindow is a half-open [Start, End) interval derived from a calendar
// unit: a day, an ISO week or a month. Arbitrary intervals are not built
// here; the UI only offers calendar units.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the window.
func (w TimeWindow) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && ts.Before(w.End)
}

// Day returns the window covering the calendar day of d.
func Day(d time.Time) TimeWindow {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// Week returns the window for week n of the given year. The first week
// starts on the Monday on or before January 1st, so week 1 may begin in the
// previous year. End is always start plus seven days.
func Week(year, n int) TimeWindow {
	firstDay := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	// time.Weekday counts Sunday as 0; ISO weekdays count Monday as 1.
	isoWeekday := int(firstDay.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}

	start := firstDay.AddDate(0, 0, -(isoWeekday - 1))
	start = start.AddDate(0, 0, (n-1)*7)
	return TimeWindow{Start: start, End: start.AddDate(0, 0, 7)}
}

// Month returns the window for month m of the given year.
func Month(year int, m time.Month) TimeWindow {
	start := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	return TimeWindow{Start: start, End: start.AddDate(0, 0, daysInMonth(year, m))}
}

// daysInMonth applies the Gregorian rules explicitly: February has 29 days
// iff the year is divisible by 4 and (not divisible by 100 or divisible by
// 400); April, June, September and November have 30; the rest have 31.
func daysInMonth(year int, m time.Month) int {
	switch m {
	case time.February:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
