package timehelper

import "time"

// DayKey buckets a timestamp to its UTC calendar day. Matches played
// near midnight attribute to the UTC day of their playedAt value.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
