package report

import (
	"fmt"
	"time"
)

// NextRun returns the first occurrence of anchor under cadence that is
// strictly after now. Occurrences are computed on the wall clock of tz, so a
// 09:00 daily report stays at 09:00 across DST changes. Monthly occurrences
// keep the anchor's day of month and fall back to the last day of shorter
// months; every occurrence is derived from the anchor, never from the
// previous run.
func NextRun(cadence Cadence, anchor time.Time, tz string, now time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	a := anchor.In(loc)
	n := now.In(loc)

	var k int
	switch cadence {
	case CadenceDaily:
		k = int(n.Sub(a).Hours()/24) - 1
	case CadenceWeekly:
		k = int(n.Sub(a).Hours()/(24*7)) - 1
	case CadenceMonthly:
		k = (n.Year()-a.Year())*12 + int(n.Month()-a.Month()) - 1
	default:
		return time.Time{}, fmt.Errorf("unknown cadence %q", cadence)
	}
	if k < 0 {
		k = 0
	}

	next := occurrence(cadence, a, k)
	for !next.After(now) {
		k++
		next = occurrence(cadence, a, k)
	}
	return next, nil
}

func occurrence(cadence Cadence, a time.Time, k int) time.Time {
	y, m, d := a.Date()
	hh, mm, ss := a.Clock()
	ns, loc := a.Nanosecond(), a.Location()

	switch cadence {
	case CadenceDaily:
		return time.Date(y, m, d+k, hh, mm, ss, ns, loc)
	case CadenceWeekly:
		return time.Date(y, m, d+7*k, hh, mm, ss, ns, loc)
	default:
		first := time.Date(y, m+time.Month(k), 1, hh, mm, ss, ns, loc)
		day := min(d, daysIn(first.Year(), first.Month()))
		return time.Date(first.Year(), first.Month(), day, hh, mm, ss, ns, loc)
	}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
