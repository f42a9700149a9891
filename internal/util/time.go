package util

import "time"

// StartOfWeek normalizes t to the start of its calendar week: Sunday at
// midnight UTC. Week buckets are half-open intervals [start, start+7d).
func StartOfWeek(t time.Time) time.Time {
	t = t.UTC()
	days := int(t.Weekday())
	day := t.AddDate(0, 0, -days)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStarts returns n week-start dates ending at the week containing now,
// most recent first.
func WeekStarts(now time.Time, n int) []time.Time {
	starts := make([]time.Time, 0, n)
	current := StartOfWeek(now)
	for i := 0; i < n; i++ {
		starts = append(starts, current.AddDate(0, 0, -7*i))
	}
	return starts
}

// FormatDateOnly renders a date as YYYY-MM-DD, the key format used for
// snapshot rows.
func FormatDateOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
