package quota

import (
	"time"
)

// Billing periods are anchored on the signup day-of-month, not a fixed
// 30-day window. A signup on the 31st rolls to the 30th (or 28th/29th) in
// shorter months and back to the 31st when the month allows it, so periods
// span 28-31 calendar days.

// NextCycleEnd returns the end of the period that starts at from, anchored
// on anchorDay (1-31). The result lands in the month after from, on the
// anchor day clamped to that month's length, preserving from's time of day.
func NextCycleEnd(from time.Time, anchorDay int) time.Time {
	from = from.UTC()
	year, month := from.Year(), from.Month()
	month++
	if month > 12 {
		month = 1
		year++
	}

	day := anchorDay
	if max := daysInMonth(year, month); day > max {
		day = max
	}

	return time.Date(year, month, day,
		from.Hour(), from.Minute(), from.Second(), 0, time.UTC)
}

// RollForward advances a period repeatedly until it contains now. Returns
// the new start/end unchanged if the current period has not expired.
func RollForward(cycleStart, cycleEnd time.Time, anchorDay int, now time.Time) (time.Time, time.Time) {
	for now.After(cycleEnd) {
		cycleStart = cycleEnd
		cycleEnd = NextCycleEnd(cycleStart, anchorDay)
	}
	return cycleStart, cycleEnd
}

// DaysUntil returns the number of whole-or-partial days from now until t,
// never negative. Used for the "days until reset" quota summary field.
func DaysUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// daysInMonth returns the number of days in the given month.
// Day 0 of the next month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
