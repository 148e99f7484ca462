package engine

import (
	"math"
	"time"

	"soggiorno/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeTax applies a municipality rule and the manual exemption set to one
// normalized booking. Pure and total: invalid inputs are coerced, never
// rejected, and the result is rebuilt whole on every call.
//
// The seasonal rate, when the rule has one, wins over the caller-supplied
// override; a non-positive override means "use the rule default".
func ComputeTax(b model.Booking, rule model.MunicipalityRule, overrideRate decimal.Decimal, exemptions model.ExemptionSet) model.ComputedBooking {
	nights := NightsBetween(b.Arrival, b.Departure)

	taxableNights := nights
	if rule.MaxTaxableNights > 0 && taxableNights > rule.MaxTaxableNights {
		taxableNights = rule.MaxTaxableNights
	}

	exemptChildren := 0
	taxableChildren := 0
	taxableAdults := b.TotalGuests
	// Exemption needs explicit ages: a child count without ages leaves every
	// guest taxable.
	if b.ChildCount > 0 && len(b.ChildAges) > 0 {
		for _, age := range b.ChildAges {
			if age < rule.ChildExemptionAge {
				exemptChildren++
			} else {
				taxableChildren++
			}
		}
		taxableAdults = b.TotalGuests - b.ChildCount + taxableChildren
		if taxableAdults < 0 {
			taxableAdults = 0
		}
	}

	rate := resolveRate(rule, b.Arrival, overrideRate)
	manuallyExempt := exemptions.Has(b.GuestName)

	amount := decimal.Zero
	if b.Status.IsTaxable() && !manuallyExempt {
		amount = decimal.NewFromInt(int64(taxableAdults) * int64(taxableNights)).Mul(rate)
	}

	return model.ComputedBooking{
		Booking:         b,
		Nights:          nights,
		TaxableNights:   taxableNights,
		ExemptChildren:  exemptChildren,
		TaxableChildren: taxableChildren,
		TaxableAdults:   taxableAdults,
		ResolvedRate:    rate,
		ManuallyExempt:  manuallyExempt,
		TaxAmount:       amount,
	}
}

// ComputeAll recomputes every booking against the same rule, rate and
// exemption set — the whole-collection recompute entry point the host
// triggers whenever any of those inputs changes.
func ComputeAll(bookings []model.Booking, rule model.MunicipalityRule, overrideRate decimal.Decimal, exemptions model.ExemptionSet) []model.ComputedBooking {
	out := make([]model.ComputedBooking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ComputeTax(b, rule, overrideRate, exemptions))
	}
	return out
}

// NightsBetween counts the calendar nights between two dates. A same-day
// stay yields 0 nights and therefore no tax and no month buckets.
func NightsBetween(arrival, departure time.Time) int {
	hours := departure.Sub(arrival).Hours()
	return int(math.Ceil(math.Abs(hours) / 24))
}

func resolveRate(rule model.MunicipalityRule, arrival time.Time, overrideRate decimal.Decimal) decimal.Decimal {
	if rule.HasSeasonality {
		if rule.InHighSeason(arrival) {
			return rule.HighSeasonRate
		}
		return rule.LowSeasonRate
	}
	if overrideRate.IsPositive() {
		return overrideRate
	}
	return rule.DefaultRate
}
