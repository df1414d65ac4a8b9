// Package trigger decides, for one contract on one "today", whether a
// renewal alert is due and with what urgency.
package trigger

import (
	"sort"
	"time"

	"github.com/RenewalHub/RenewalHub/app/models"
	"github.com/RenewalHub/RenewalHub/internal/pkg/timeutil"
)

// DefaultNoticeDays is the global fallback when neither the contract nor the
// tenant settings carry a usable notice-days value.
const DefaultNoticeDays = 30

// fixedOffsets are the policy day-offsets before renewal at which an alert
// fires, independent of any per-contract override.
var fixedOffsets = []int{30, 15, 7, 5, 3, 2, 1}

// OffsetSet is an ordered, de-duplicated set of non-negative trigger offsets.
type OffsetSet struct {
	offsets []int
}

// NewOffsetSet merges the fixed policy offsets with any extra offsets,
// dropping negatives and duplicates. Values are kept sorted ascending.
func NewOffsetSet(extra ...int) OffsetSet {
	seen := make(map[int]struct{}, len(fixedOffsets)+len(extra))
	var offsets []int
	for _, candidates := range [][]int{fixedOffsets, extra} {
		for _, o := range candidates {
			if o < 0 {
				continue
			}
			if _, ok := seen[o]; ok {
				continue
			}
			seen[o] = struct{}{}
			offsets = append(offsets, o)
		}
	}
	sort.Ints(offsets)
	return OffsetSet{offsets: offsets}
}

// Contains reports whether d is a trigger offset.
func (s OffsetSet) Contains(d int) bool {
	i := sort.SearchInts(s.offsets, d)
	return i < len(s.offsets) && s.offsets[i] == d
}

// Values returns the offsets in ascending order.
func (s OffsetSet) Values() []int {
	return append([]int(nil), s.offsets...)
}

// EffectiveNoticeDays resolves the notice-days chain: contract override if
// present and valid, else tenant settings, else the global default.
func EffectiveNoticeDays(contract *models.Contract, settings *models.NotificationSettings) int {
	if contract != nil && contract.NoticeDaysOverride != nil {
		if v := *contract.NoticeDaysOverride; v >= 1 && v <= 365 {
			return v
		}
	}
	if settings != nil && settings.NoticeDays >= 1 && settings.NoticeDays <= 365 {
		return settings.NoticeDays
	}
	return DefaultNoticeDays
}

// Urgency labels the message tone. It never affects whether an alert fires.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyElevated Urgency = "elevated"
	UrgencyNotice   Urgency = "notice"
	UrgencyUpcoming Urgency = "upcoming"
)

// UrgencyFor derives the tone label from days-until-renewal.
func UrgencyFor(daysUntil int) Urgency {
	switch {
	case daysUntil <= 1:
		return UrgencyCritical
	case daysUntil <= 3:
		return UrgencyHigh
	case daysUntil <= 7:
		return UrgencyElevated
	case daysUntil <= 15:
		return UrgencyNotice
	default:
		return UrgencyUpcoming
	}
}

// Result is the evaluation outcome for one contract on one day.
type Result struct {
	Due        bool
	DaysUntil  int
	NoticeDays int
	Urgency    Urgency
}

// Evaluate applies the alert rule: due iff the day difference between
// renewal date and today is in the trigger set. Negative day differences
// never match because the set excludes negatives by construction, so no
// alert fires after the renewal date has passed.
func Evaluate(contract *models.Contract, settings *models.NotificationSettings, today time.Time) Result {
	if contract == nil || contract.RenewalDate == nil || contract.IsDeleted() {
		return Result{}
	}

	daysUntil := timeutil.DayDifference(*contract.RenewalDate, today)
	noticeDays := EffectiveNoticeDays(contract, settings)
	set := NewOffsetSet(noticeDays)

	return Result{
		Due:        set.Contains(daysUntil),
		DaysUntil:  daysUntil,
		NoticeDays: noticeDays,
		Urgency:    UrgencyFor(daysUntil),
	}
}
