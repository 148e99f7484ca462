package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// YearMonth is a calendar month key in "YYYY-MM" form. The string form keeps
// JSON map keys readable and sorts chronologically.
type YearMonth string

// YearMonthOf returns the YearMonth containing d.
func YearMonthOf(d time.Time) YearMonth {
	return YearMonth(fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month())))
}

// Quarter is a fiscal quarter of the calendar year (Q1 = Jan-Mar).
type Quarter int

const (
	Q1 Quarter = 1
	Q2 Quarter = 2
	Q3 Quarter = 3
	Q4 Quarter = 4
)

// QuarterOf classifies a date by its month. A stay is classified by arrival
// only and is never split across quarters for reporting.
func QuarterOf(d time.Time) Quarter {
	return Quarter((int(d.Month())-1)/3 + 1)
}

// Label returns "Q1".."Q4".
func (q Quarter) Label() string {
	return fmt.Sprintf("Q%d", int(q))
}

// MonthsLabel returns the month span covered by the quarter.
func (q Quarter) MonthsLabel() string {
	switch q {
	case Q1:
		return "Gen-Mar"
	case Q2:
		return "Apr-Giu"
	case Q3:
		return "Lug-Set"
	default:
		return "Ott-Dic"
	}
}

// FilingDeadline returns the filing deadline for the quarter of the given
// fiscal year: the 16th of the month following the quarter (Q4 files in
// January of the next year).
func (q Quarter) FilingDeadline(year int) time.Time {
	switch q {
	case Q1:
		return time.Date(year, time.April, 16, 0, 0, 0, 0, time.UTC)
	case Q2:
		return time.Date(year, time.July, 16, 0, 0, 0, 0, time.UTC)
	case Q3:
		return time.Date(year, time.October, 16, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(year+1, time.January, 16, 0, 0, 0, 0, time.UTC)
	}
}

// MonthEntry cross-references one booking's contribution to a month bucket.
// GuestCountCounted is true only in the arrival month, so cross-month
// summaries never count the same guests twice.
type MonthEntry struct {
	GuestName           string          `json:"guest_name"`
	NightsInMonth       int             `json:"nights_in_month"`
	PersonNightsInMonth int             `json:"person_nights_in_month"`
	AmountInMonth       decimal.Decimal `json:"amount_in_month"`
	GuestCountCounted   bool            `json:"guest_count_counted"`
}

// MonthBucket aggregates one calendar month across all bookings touching it.
type MonthBucket struct {
	TotalGuests       int             `json:"total_guests"`
	TotalPersonNights int             `json:"total_person_nights"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Entries           []MonthEntry    `json:"entries"`
}

// QuarterTotals are the additive per-quarter subtotals exports reconcile
// against.
type QuarterTotals struct {
	Guests         int             `json:"guests"`
	Children       int             `json:"children"`
	ExemptChildren int             `json:"exempt_children"`
	TaxableAdults  int             `json:"taxable_adults"`
	Nights         int             `json:"nights"`
	TaxableNights  int             `json:"taxable_nights"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
}

// Add folds one computed booking into the totals.
func (t *QuarterTotals) Add(cb ComputedBooking) {
	t.Guests += cb.TotalGuests
	t.Children += cb.ChildCount
	t.ExemptChildren += cb.ExemptChildren
	t.TaxableAdults += cb.TaxableAdults
	t.Nights += cb.Nights
	t.TaxableNights += cb.TaxableNights
	t.TaxAmount = t.TaxAmount.Add(cb.TaxAmount)
}

// Merge adds another totals block (used for the grand total).
func (t *QuarterTotals) Merge(other QuarterTotals) {
	t.Guests += other.Guests
	t.Children += other.Children
	t.ExemptChildren += other.ExemptChildren
	t.TaxableAdults += other.TaxableAdults
	t.Nights += other.Nights
	t.TaxableNights += other.TaxableNights
	t.TaxAmount = t.TaxAmount.Add(other.TaxAmount)
}

// QuarterKey identifies one fiscal quarter of one calendar year, so datasets
// spanning a year boundary never merge distinct filing periods.
type QuarterKey struct {
	Year    int     `json:"year"`
	Quarter Quarter `json:"quarter"`
}

// QuarterKeyOf classifies a date into its year-scoped quarter.
func QuarterKeyOf(d time.Time) QuarterKey {
	return QuarterKey{Year: d.Year(), Quarter: QuarterOf(d)}
}

// QuarterGroup holds the valid bookings arriving in one fiscal quarter plus
// their subtotals.
type QuarterGroup struct {
	Quarter  Quarter           `json:"quarter"`
	Year     int               `json:"year"`
	Deadline time.Time         `json:"deadline"`
	Bookings []ComputedBooking `json:"bookings"`
	Totals   QuarterTotals     `json:"totals"`
}
