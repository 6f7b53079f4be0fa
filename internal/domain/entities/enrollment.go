package entities

import "time"

// Enrollment records that a user has encountered a word. There is exactly one
// enrollment per (user, word) pair; re-encountering a word moves TouchedAt to
// the current moment, which restarts the full review cycle.
type Enrollment struct {
	ChatID    int64
	WordID    int64
	TouchedAt time.Time
}

// DateUTC truncates t to its calendar date in UTC. All scheduling math
// compares dates produced by this function, never raw timestamps.
func DateUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
