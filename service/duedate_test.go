package service

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"mid month", date(2024, time.March, 15), date(2024, time.April, 15)},
		{"jan 31 leap year clamps to feb 29", date(2024, time.January, 31), date(2024, time.February, 29)},
		{"jan 31 non leap clamps to feb 28", date(2023, time.January, 31), date(2023, time.February, 28)},
		{"aug 31 clamps to sep 30", date(2024, time.August, 31), date(2024, time.September, 30)},
		{"dec 31 rolls the year", date(2024, time.December, 31), date(2025, time.January, 31)},
		{"feb 29 keeps day where it fits", date(2024, time.February, 29), date(2024, time.March, 29)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextDueDate(tc.in)
			if !got.Equal(tc.want) {
				t.Errorf("NextDueDate(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNextDueDate_NeverRollsIntoNextMonth(t *testing.T) {
	got := NextDueDate(date(2023, time.January, 31))
	if got.Month() != time.February {
		t.Fatalf("expected February, got %v", got.Month())
	}
}

func TestLoanClosingMonth(t *testing.T) {
	cases := []struct {
		name   string
		in     time.Time
		months int
		want   time.Time
	}{
		{"full year", date(2024, time.January, 15), 12, date(2025, time.January, 15)},
		{"one month clamps", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"thirteen months clamps in target", date(2024, time.January, 31), 13, date(2025, time.February, 28)},
		{"day preserved across short months", date(2024, time.January, 31), 2, date(2024, time.March, 31)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LoanClosingMonth(tc.in, tc.months)
			if !got.Equal(tc.want) {
				t.Errorf("LoanClosingMonth(%v, %d) = %v, want %v", tc.in, tc.months, got, tc.want)
			}
		})
	}
}

func TestNextDueDate_PreservesTimeOfDay(t *testing.T) {
	in := time.Date(2024, time.May, 10, 9, 30, 0, 0, time.UTC)
	got := NextDueDate(in)
	if got.Hour() != 9 || got.Minute() != 30 {
		t.Errorf("expected time of day preserved, got %v", got)
	}
}
