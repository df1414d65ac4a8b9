// Package timeutil is the single source of truth for "how many days until
// renewal". All day math is done on UTC-midnight-normalized dates so that
// timezone drift can never cause an off-by-one trigger miss.
package timeutil

import (
	"math"
	"time"
)

const millisPerDay = 86_400_000

// StartOfDayUTC truncates a timestamp to midnight UTC.
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayDifference returns the number of calendar days between a and b,
// positive when a is later than b. The division is rounded, not truncated,
// to absorb floating-point noise in the millisecond math.
func DayDifference(a, b time.Time) int {
	ms := StartOfDayUTC(a).Sub(StartOfDayUTC(b)).Milliseconds()
	return int(math.Round(float64(ms) / float64(millisPerDay)))
}

// DayKey renders the UTC calendar day as "YYYY-MM-DD". The notification
// ledger keys its same-day guard on this value.
func DayKey(t time.Time) string {
	return StartOfDayUTC(t).Format("2006-01-02")
}
