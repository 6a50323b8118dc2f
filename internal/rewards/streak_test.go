package rewards

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 30, 0, 0, time.UTC)
}

func TestNextStreak(t *testing.T) {
	now := date(2025, time.March, 10)
	yesterday := date(2025, time.March, 9)
	threeDaysAgo := date(2025, time.March, 7)

	cases := []struct {
		name    string
		last    *time.Time
		current int
		want    int
		counted bool
	}{
		{"first practice ever", nil, 0, 1, true},
		{"already practiced today", &now, 5, 5, false},
		{"consecutive day", &yesterday, 5, 6, true},
		{"streak broken restarts at 1", &threeDaysAgo, 12, 1, true},
	}

	for _, tc := range cases {
		got, counted := NextStreak(tc.last, now, tc.current)
		if got != tc.want || counted != tc.counted {
			t.Fatalf("%s: NextStreak = (%d, %v); want (%d, %v)", tc.name, got, counted, tc.want, tc.counted)
		}
	}
}

func TestNextStreakIgnoresTimeOfDay(t *testing.T) {
	// late-night practice followed by an early-morning one the next day
	last := time.Date(2025, time.March, 9, 23, 59, 0, 0, time.UTC)
	now := time.Date(2025, time.March, 10, 0, 5, 0, 0, time.UTC)

	got, counted := NextStreak(&last, now, 3)
	if got != 4 || !counted {
		t.Fatalf("NextStreak across midnight = (%d, %v); want (4, true)", got, counted)
	}
}

func TestNextStreakMonthBoundary(t *testing.T) {
	last := date(2025, time.January, 31)
	now := date(2025, time.February, 1)

	got, counted := NextStreak(&last, now, 9)
	if got != 10 || !counted {
		t.Fatalf("NextStreak over month boundary = (%d, %v); want (10, true)", got, counted)
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		a, b time.Time
		want int
	}{
		{date(2025, time.March, 10), date(2025, time.March, 10), 0},
		{date(2025, time.March, 9), date(2025, time.March, 10), 1},
		{date(2025, time.March, 1), date(2025, time.March, 10), 9},
		{date(2025, time.March, 10), date(2025, time.March, 9), -1},
	}

	for _, tc := range cases {
		if got := DaysBetween(tc.a, tc.b); got != tc.want {
			t.Fatalf("DaysBetween(%v, %v) = %d; want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
