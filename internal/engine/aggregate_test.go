package engine

import (
	"testing"
	"time"

	"soggiorno/internal/model"
	"soggiorno/internal/rules"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleComputed(t *testing.T) []model.ComputedBooking {
	t.Helper()
	rule, ok := rules.Lookup("Roma")
	require.True(t, ok)

	bookings := []model.Booking{
		{GuestName: "Mario Rossi", TotalGuests: 2, CountryCode: "it", Arrival: day(2025, time.June, 1), Departure: day(2025, time.June, 4), Status: model.StatusValid},
		{GuestName: "John Smith", TotalGuests: 3, CountryCode: "us", Arrival: day(2025, time.June, 29), Departure: day(2025, time.July, 3), Status: model.StatusValid},
		{GuestName: "Anna Bianchi", TotalGuests: 1, CountryCode: "it", Arrival: day(2025, time.August, 10), Departure: day(2025, time.August, 12), Status: model.StatusValid},
		{GuestName: "Jane Doe", TotalGuests: 2, CountryCode: "uk", Arrival: day(2025, time.June, 1), Departure: day(2025, time.June, 4), Status: model.StatusCancelled},
	}
	return ComputeAll(bookings, rule, decimal.Zero, nil)
}

func TestAggregateOverallTotals(t *testing.T) {
	agg := Aggregate(sampleComputed(t))

	assert.Equal(t, 4, agg.Overall.TotalBookings)
	assert.Equal(t, 3, agg.Overall.TaxableBookings)
	assert.Equal(t, 1, agg.Overall.ExcludedBookings)
	// 2*3*6 + 3*4*6 + 1*2*6 = 36 + 72 + 12
	assert.Equal(t, "120.00", agg.Overall.TotalTax.StringFixed(2))
}

func TestAggregateCancelledExcludedFromPeriods(t *testing.T) {
	agg := Aggregate(sampleComputed(t))

	// The cancelled booking appears in totals but in no month or quarter.
	juneEntries := agg.ByMonth["2025-06"].Entries
	for _, e := range juneEntries {
		assert.NotEqual(t, "Jane Doe", e.GuestName)
	}
	for _, group := range agg.ByQuarter {
		for _, cb := range group.Bookings {
			assert.NotEqual(t, "Jane Doe", cb.GuestName)
		}
	}
}

func TestAggregateMonthGuestAttribution(t *testing.T) {
	agg := Aggregate(sampleComputed(t))

	june := agg.ByMonth["2025-06"]
	july := agg.ByMonth["2025-07"]
	require.NotNil(t, june)
	require.NotNil(t, july)

	// John Smith's 3 guests count in June (arrival month) only.
	assert.Equal(t, 5, june.TotalGuests, "Mario 2 + John 3")
	assert.Equal(t, 0, july.TotalGuests, "cross-month guests are not re-counted")
	assert.Equal(t, 6, july.TotalPersonNights, "3 guests x 2 July nights")
}

func TestAggregateCountryRanking(t *testing.T) {
	agg := Aggregate(sampleComputed(t))

	require.Len(t, agg.ByCountry, 3)
	assert.Equal(t, "IT", agg.ByCountry[0].CountryCode, "country codes are uppercased and ranked by bookings")
	assert.Equal(t, 2, agg.ByCountry[0].Bookings)
	// US and UK tie at 1 booking: encounter order breaks the tie.
	assert.Equal(t, "US", agg.ByCountry[1].CountryCode)
	assert.Equal(t, "UK", agg.ByCountry[2].CountryCode)
}

func TestAggregateEmptyCountryDefaultsToIT(t *testing.T) {
	rule, _ := rules.Lookup("Roma")
	cbs := ComputeAll([]model.Booking{
		{GuestName: "A", TotalGuests: 1, CountryCode: "", Arrival: day(2025, time.June, 1), Departure: day(2025, time.June, 2), Status: model.StatusValid},
	}, rule, decimal.Zero, nil)

	agg := Aggregate(cbs)

	require.Len(t, agg.ByCountry, 1)
	assert.Equal(t, "IT", agg.ByCountry[0].CountryCode)
}

func TestAggregateQuarterDeadlines(t *testing.T) {
	agg := Aggregate(sampleComputed(t))

	q2 := agg.ByQuarter[model.QuarterKey{Year: 2025, Quarter: model.Q2}]
	require.NotNil(t, q2)
	assert.Equal(t, 2025, q2.Year)
	assert.Equal(t, day(2025, time.July, 16), q2.Deadline)
	assert.Len(t, q2.Bookings, 2)

	q3 := agg.ByQuarter[model.QuarterKey{Year: 2025, Quarter: model.Q3}]
	require.NotNil(t, q3)
	assert.Equal(t, day(2025, time.October, 16), q3.Deadline)
}

func TestAggregateSeparatesSameQuarterAcrossYears(t *testing.T) {
	rule, _ := rules.Lookup("Roma")
	cbs := ComputeAll([]model.Booking{
		{GuestName: "A", TotalGuests: 1, Arrival: day(2025, time.February, 1), Departure: day(2025, time.February, 3), Status: model.StatusValid},
		{GuestName: "B", TotalGuests: 1, Arrival: day(2026, time.February, 1), Departure: day(2026, time.February, 3), Status: model.StatusValid},
	}, rule, decimal.Zero, nil)

	agg := Aggregate(cbs)

	require.Len(t, agg.ByQuarter, 2, "Q1 of different years must not merge")

	q1of2025 := agg.ByQuarter[model.QuarterKey{Year: 2025, Quarter: model.Q1}]
	q1of2026 := agg.ByQuarter[model.QuarterKey{Year: 2026, Quarter: model.Q1}]
	require.NotNil(t, q1of2025)
	require.NotNil(t, q1of2026)
	assert.Equal(t, day(2025, time.April, 16), q1of2025.Deadline)
	assert.Equal(t, day(2026, time.April, 16), q1of2026.Deadline)
	assert.Len(t, q1of2025.Bookings, 1)
	assert.Len(t, q1of2026.Bookings, 1)
	assert.True(t, agg.GrandTotal.TaxAmount.Equal(agg.Overall.TotalTax))
}

func TestAggregateGrandTotalMatchesOverall(t *testing.T) {
	agg := Aggregate(sampleComputed(t))

	assert.True(t, agg.GrandTotal.TaxAmount.Equal(agg.Overall.TotalTax),
		"quarter grand total must reconcile with the overall tax sum")
}

func TestAggregateOrderIndependentTotals(t *testing.T) {
	cbs := sampleComputed(t)
	reversed := make([]model.ComputedBooking, len(cbs))
	for i, cb := range cbs {
		reversed[len(cbs)-1-i] = cb
	}

	a := Aggregate(cbs)
	b := Aggregate(reversed)

	assert.True(t, a.Overall.TotalTax.Equal(b.Overall.TotalTax))
	assert.Equal(t, a.Overall.TotalBookings, b.Overall.TotalBookings)
	assert.True(t, a.GrandTotal.TaxAmount.Equal(b.GrandTotal.TaxAmount))
	for ym, bucket := range a.ByMonth {
		other := b.ByMonth[ym]
		require.NotNil(t, other, "month %s missing after permutation", ym)
		assert.Equal(t, bucket.TotalGuests, other.TotalGuests)
		assert.Equal(t, bucket.TotalPersonNights, other.TotalPersonNights)
		assert.True(t, bucket.TotalAmount.Equal(other.TotalAmount))
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	cbs := sampleComputed(t)

	first := Aggregate(cbs)
	second := Aggregate(cbs)

	assert.True(t, first.Overall.TotalTax.Equal(second.Overall.TotalTax))
	assert.Equal(t, len(first.ByMonth), len(second.ByMonth))
	assert.Equal(t, len(first.ByQuarter), len(second.ByQuarter))
}

func TestAggregateManuallyExemptContributesZero(t *testing.T) {
	rule, _ := rules.Lookup("Roma")
	exemptions := model.NewExemptionSet("John Smith")
	cbs := ComputeAll([]model.Booking{
		{GuestName: "John Smith", TotalGuests: 3, Arrival: day(2025, time.June, 29), Departure: day(2025, time.July, 3), Status: model.StatusValid},
	}, rule, decimal.Zero, exemptions)

	agg := Aggregate(cbs)

	assert.True(t, agg.Overall.TotalTax.IsZero())
	// Still allocated: the stay occupies nights even when its tax is zero.
	require.NotNil(t, agg.ByMonth["2025-06"])
	assert.True(t, agg.ByMonth["2025-06"].TotalAmount.IsZero())
	assert.Equal(t, 6, agg.ByMonth["2025-06"].TotalPersonNights)
}
