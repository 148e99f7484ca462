package engine

import (
	"soggiorno/internal/model"
)

// PeriodAllocation partitions one booking's stay into calendar-month night
// buckets and classifies it into a fiscal quarter. Months is empty for
// non-valid bookings (they are excluded from periodic reporting) and for
// zero-night stays.
type PeriodAllocation struct {
	Months      map[model.YearMonth]int `json:"months"`
	Quarter     model.Quarter           `json:"quarter"`
	SpansMonths bool                    `json:"spans_months"`
}

// AllocatePeriod walks the stay one night at a time, attributing each night
// to the month containing its start date. The sum of the per-month counts
// always equals the booking's total nights.
//
// The quarter comes from the arrival month alone: a stay crossing a quarter
// boundary is still reported whole in its arrival quarter.
func AllocatePeriod(cb model.ComputedBooking) PeriodAllocation {
	alloc := PeriodAllocation{
		Months:  make(map[model.YearMonth]int),
		Quarter: model.QuarterOf(cb.Arrival),
	}
	if !cb.Status.IsTaxable() {
		return alloc
	}

	for night := cb.Arrival; night.Before(cb.Departure); night = night.AddDate(0, 0, 1) {
		alloc.Months[model.YearMonthOf(night)]++
	}
	alloc.SpansMonths = len(alloc.Months) > 1
	return alloc
}
