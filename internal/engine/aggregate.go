package engine

import (
	"sort"
	"strings"

	"soggiorno/internal/model"

	"github.com/shopspring/decimal"
)

// Aggregation is the full fold over a computed dataset: the shapes the
// report endpoints and the CSV/PDF exports consume.
type Aggregation struct {
	Overall    model.OverallTotals                      `json:"overall"`
	ByCountry  []model.CountryTotal                     `json:"by_country"`
	ByMonth    map[model.YearMonth]*model.MonthBucket   `json:"by_month"`
	ByQuarter  map[model.QuarterKey]*model.QuarterGroup `json:"by_quarter"`
	GrandTotal model.QuarterTotals                      `json:"grand_total"`
}

// Aggregate folds an ordered sequence of computed bookings into overall,
// per-country, per-month and per-quarter totals. Every fold is additive and
// commutative, so permuting the input changes no total; only the tie-break
// order of the country ranking depends on encounter order.
func Aggregate(cbs []model.ComputedBooking) Aggregation {
	agg := Aggregation{
		ByMonth:   make(map[model.YearMonth]*model.MonthBucket),
		ByQuarter: make(map[model.QuarterKey]*model.QuarterGroup),
	}
	countryIndex := make(map[string]int)

	for _, cb := range cbs {
		agg.Overall.TotalBookings++
		if cb.Status.IsTaxable() {
			agg.Overall.TaxableBookings++
			agg.Overall.TotalTax = agg.Overall.TotalTax.Add(cb.TaxAmount)
		} else {
			agg.Overall.ExcludedBookings++
		}

		code := strings.ToUpper(strings.TrimSpace(cb.CountryCode))
		if code == "" {
			code = "IT"
		}
		idx, seen := countryIndex[code]
		if !seen {
			idx = len(agg.ByCountry)
			countryIndex[code] = idx
			agg.ByCountry = append(agg.ByCountry, model.CountryTotal{CountryCode: code})
		}
		agg.ByCountry[idx].Bookings++
		agg.ByCountry[idx].Guests += cb.TotalGuests
		agg.ByCountry[idx].Amount = agg.ByCountry[idx].Amount.Add(cb.TaxAmount)

		// Cancellations and no-shows stay out of the periodic reports.
		if !cb.Status.IsTaxable() {
			continue
		}

		foldMonths(&agg, cb)
		foldQuarter(&agg, cb)
	}

	// Ranking pass: booking count descending, ties keep encounter order.
	sort.SliceStable(agg.ByCountry, func(i, j int) bool {
		return agg.ByCountry[i].Bookings > agg.ByCountry[j].Bookings
	})

	for _, group := range agg.ByQuarter {
		agg.GrandTotal.Merge(group.Totals)
	}
	return agg
}

func foldMonths(agg *Aggregation, cb model.ComputedBooking) {
	alloc := AllocatePeriod(cb)
	arrivalMonth := model.YearMonthOf(cb.Arrival)

	for month, nightCount := range alloc.Months {
		bucket := agg.ByMonth[month]
		if bucket == nil {
			bucket = &model.MonthBucket{}
			agg.ByMonth[month] = bucket
		}

		entry := model.MonthEntry{
			GuestName:           cb.GuestName,
			NightsInMonth:       nightCount,
			PersonNightsInMonth: cb.TotalGuests * nightCount,
			AmountInMonth:       monthAmount(cb, nightCount),
			GuestCountCounted:   month == arrivalMonth,
		}
		// Guests are attributed to the arrival month only, never repeated in
		// the following months of a multi-month stay.
		if entry.GuestCountCounted {
			bucket.TotalGuests += cb.TotalGuests
		}
		bucket.TotalPersonNights += entry.PersonNightsInMonth
		bucket.TotalAmount = bucket.TotalAmount.Add(entry.AmountInMonth)
		bucket.Entries = append(bucket.Entries, entry)
	}
}

// monthAmount splits the stay's tax across months proportionally by raw
// night count. The taxable-nights cap applies once to the whole-stay tax and
// is not re-applied per month; a booking whose whole-stay tax is zero
// (manual exemption) contributes zero everywhere.
func monthAmount(cb model.ComputedBooking, nightCount int) decimal.Decimal {
	if cb.TaxAmount.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(cb.TaxableAdults) * int64(nightCount)).Mul(cb.ResolvedRate)
}

func foldQuarter(agg *Aggregation, cb model.ComputedBooking) {
	key := model.QuarterKeyOf(cb.Arrival)
	group := agg.ByQuarter[key]
	if group == nil {
		group = &model.QuarterGroup{
			Quarter:  key.Quarter,
			Year:     key.Year,
			Deadline: key.Quarter.FilingDeadline(key.Year),
		}
		agg.ByQuarter[key] = group
	}
	group.Bookings = append(group.Bookings, cb)
	group.Totals.Add(cb)
}
