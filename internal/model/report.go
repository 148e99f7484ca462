package model

import "github.com/shopspring/decimal"

// OverallTotals is the headline summary over a whole computed dataset.
// TotalTax sums valid bookings only; excluded bookings (cancellations,
// no-shows) still count toward TotalBookings.
type OverallTotals struct {
	TotalTax         decimal.Decimal `json:"total_tax"`
	TaxableBookings  int             `json:"taxable_bookings"`
	ExcludedBookings int             `json:"excluded_bookings"`
	TotalBookings    int             `json:"total_bookings"`
}

// CountryTotal is one row of the per-country breakdown, ranked by booking
// count descending with ties kept in first-encounter order.
type CountryTotal struct {
	CountryCode string          `json:"country_code"`
	Bookings    int             `json:"bookings"`
	Guests      int             `json:"guests"`
	Amount      decimal.Decimal `json:"amount"`
}
