package domain

import "time"

// DateOnly truncates t to a calendar date at midnight UTC. All domain dates
// (loan, due, return, request, expiry) are normalized through this so that
// day arithmetic is exact.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b. Negative when b
// precedes a. Both arguments are expected to be DateOnly-normalized.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
