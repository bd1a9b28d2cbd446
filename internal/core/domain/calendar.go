package domain

import "time"

// Calendar arithmetic for billing dates. All functions treat their input as a
// calendar date; time-of-day is discarded and results are midnight UTC.
//
// AddMonths clamps to the end of the target month (Jan 31 + 1 month = Feb 28),
// which is what billing timelines need. time.Time.AddDate instead normalizes
// overflow (Jan 31 + 1 month = Mar 3), so it is not used here.

// AddMonths returns the date n months after t, clamped to the last day of the
// target month when t's day does not exist there.
func AddMonths(t time.Time, n int) time.Time {
	t = DateOf(t)
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := DaysInMonth(firstOfTarget); d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in t's month
func DaysInMonth(t time.Time) int {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LastDayOfMonth returns the last calendar day of t's month
func LastDayOfMonth(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// FirstDayOfNextMonth returns the first day of the month after t's month
func FirstDayOfNextMonth(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
}

// RemainingDaysInMonth counts t's day through the end of its month, inclusive
func RemainingDaysInMonth(t time.Time) int {
	return DaysInMonth(t) - t.UTC().Day() + 1
}

// CommitmentEndDate derives a membership's end date from its start date and
// duration class. The start month counts as month one, so the end date is the
// last day of startDate + (months - 1).
func CommitmentEndDate(startDate time.Time, d Duration) time.Time {
	return LastDayOfMonth(AddMonths(startDate, d.Months()-1))
}
