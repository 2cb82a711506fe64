package service

import "time"

// AddDays returns now shifted forward by the given number of days.
// Key expiry is computed at day granularity from the creation instant.
func AddDays(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, days)
}

// InactivityCutoff returns the instant before which a last-activity
// timestamp counts as stale for the inactivity rule.
func InactivityCutoff(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
