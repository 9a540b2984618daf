package domain

import "time"

// NextDaily returns the first instant strictly after now whose wall clock in
// loc is d. A candidate equal to now counts as passed and rolls to tomorrow.
// The day is advanced by calendar, not by 24h, so DST transitions keep the
// wall-clock time.
func NextDaily(d DailyTime, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !candidate.After(now) {
		candidate = time.Date(local.Year(), local.Month(), local.Day()+1, d.Hour, d.Minute, 0, 0, loc)
	}
	return candidate
}
