package service

import "time"

// NextDueDate advances t by exactly one calendar month, preserving the
// day-of-month where the target month has that many days and clamping to the
// last day otherwise. Jan 31 becomes Feb 28 (29 in leap years), never Mar 2.
func NextDueDate(t time.Time) time.Time {
	return addMonthsClamped(t, 1)
}

// LoanClosingMonth projects the final installment date of a loan starting at
// t with the given tenure. It applies one clamped N-month advance, the same
// rollover policy NextDueDate uses.
func LoanClosingMonth(t time.Time, months int) time.Time {
	return addMonthsClamped(t, months)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	// anchor on day 1 so time.Date normalization only shifts the month
	anchor := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(anchor.Year(), anchor.Month()); d > last {
		d = last
	}
	return time.Date(anchor.Year(), anchor.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month; day 0 of the next
// month normalizes to its last day.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
