package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDayUTC(t *testing.T) {
	in := time.Date(2025, 6, 2, 23, 59, 59, 999_000_000, time.UTC)
	got := StartOfDayUTC(in)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestStartOfDayUTCNormalizesZone(t *testing.T) {
	// 01:30 on June 3rd in UTC+3 is still June 2nd in UTC.
	zone := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2025, 6, 3, 1, 30, 0, 0, zone)
	got := StartOfDayUTC(in)
	assert.Equal(t, time.Date(2025, 6, 2, 22, 30, 0, 0, time.UTC).Truncate(24*time.Hour).Day(), got.Day())
	assert.Equal(t, time.June, got.Month())
	assert.Equal(t, 2, got.Day())
}

func TestDayDifference(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DayDifference(base, base))
	assert.Equal(t, 7, DayDifference(base.AddDate(0, 0, 7), base))
	assert.Equal(t, 30, DayDifference(base.AddDate(0, 0, 30), base))
	assert.Equal(t, -3, DayDifference(base.AddDate(0, 0, -3), base))
}

func TestDayDifferenceIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2025, 6, 9, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 6, 2, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, 7, DayDifference(a, b))
}

func TestDayKey(t *testing.T) {
	in := time.Date(2025, 1, 5, 18, 4, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-05", DayKey(in))
}
