package service

import (
	"context"
	"testing"
	"time"

	"soggiorno/internal/engine"
	"soggiorno/internal/model"
	"soggiorno/internal/rules"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBookingService serves a fixed computed collection so report assembly
// can be tested without a database.
type stubBookingService struct {
	BookingService
	computed []model.ComputedBooking
	rc       RecomputeContext
}

func (s *stubBookingService) Recompute(ctx context.Context, datasetID string, opts RecomputeOptions) ([]model.ComputedBooking, RecomputeContext, error) {
	return s.computed, s.rc, nil
}

func newReportFixture(t *testing.T) ReportService {
	t.Helper()
	rule, ok := rules.Lookup("Roma")
	require.True(t, ok)

	bookings := []model.Booking{
		{GuestName: "Mario Rossi", TotalGuests: 2, CountryCode: "it", Arrival: day(2025, time.February, 1), Departure: day(2025, time.February, 3), Status: model.StatusValid},
		{GuestName: "John Smith", TotalGuests: 3, CountryCode: "us", Arrival: day(2025, time.June, 1), Departure: day(2025, time.June, 4), Status: model.StatusValid},
		{GuestName: "Jane Doe", TotalGuests: 1, CountryCode: "uk", Arrival: day(2025, time.June, 10), Departure: day(2025, time.June, 12), Status: model.StatusCancelled},
	}
	stub := &stubBookingService{
		computed: engine.ComputeAll(bookings, rule, decimal.Zero, nil),
		rc: RecomputeContext{
			Dataset: model.Dataset{ID: uuid.New(), Name: "Estate 2025", Municipality: "Roma"},
			Rule:    rule,
			Rate:    rule.DefaultRate,
		},
	}
	return NewReportService(stub)
}

func TestGetReportGrandTotalReconciles(t *testing.T) {
	svc := newReportFixture(t)

	report, err := svc.GetReport(context.Background(), "any", RecomputeOptions{})
	require.NoError(t, err)

	// 2*2*6 + 3*3*6 = 78; the cancelled booking contributes nothing.
	assert.Equal(t, "78.00", report.GrandTotal)
	assert.Equal(t, report.Overall.TotalTax, report.GrandTotal)
}

func TestGetReportOverallAndQuarters(t *testing.T) {
	svc := newReportFixture(t)

	report, err := svc.GetReport(context.Background(), "any", RecomputeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Overall.TotalBookings)
	assert.Equal(t, 2, report.Overall.TaxableBookings)
	assert.Equal(t, 1, report.Overall.ExcludedBookings)
	assert.Equal(t, "Roma", report.RuleName)
	assert.Equal(t, "6.00", report.Rate)

	require.Len(t, report.ByQuarter, 2)
	assert.Equal(t, "Q1", report.ByQuarter[0].Quarter)
	assert.Equal(t, "2025-04-16", report.ByQuarter[0].Deadline)
	assert.Equal(t, "Q2", report.ByQuarter[1].Quarter)
	assert.Equal(t, "2025-07-16", report.ByQuarter[1].Deadline)
}

func TestGetReportMonthsSorted(t *testing.T) {
	svc := newReportFixture(t)

	report, err := svc.GetReport(context.Background(), "any", RecomputeOptions{})
	require.NoError(t, err)

	require.Len(t, report.ByMonth, 2)
	assert.Equal(t, "2025-02", report.ByMonth[0].Month)
	assert.Equal(t, "2025-06", report.ByMonth[1].Month)
}
