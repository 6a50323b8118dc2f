package rewards

import "time"

// NextStreak computes the new streak length after a practice activity,
// comparing dates at day granularity (time of day is ignored).
//
//   - no prior practice date     → 1
//   - last practice is today     → unchanged (already counted)
//   - last practice is yesterday → current + 1
//   - anything older             → 1 (today starts a new streak)
//
// counted reports whether today is a new practice day, i.e. whether
// last_practice_date should be moved to today.
func NextStreak(lastPractice *time.Time, now time.Time, current int) (streak int, counted bool) {
	if lastPractice == nil {
		return 1, true
	}

	switch DaysBetween(*lastPractice, now) {
	case 0:
		return current, false
	case 1:
		return current + 1, true
	default:
		return 1, true
	}
}

// DaysBetween returns the number of calendar days from a to b, both
// truncated to their date in UTC. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	da := startOfDay(a)
	db := startOfDay(b)
	return int(db.Sub(da).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
