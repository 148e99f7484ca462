package service

import (
	"testing"
	"time"

	"soggiorno/internal/engine"
	"soggiorno/internal/model"
	"soggiorno/internal/rules"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func exportFixture(t *testing.T) engine.Aggregation {
	t.Helper()
	rule, ok := rules.Lookup("Roma")
	require.True(t, ok)

	bookings := []model.Booking{
		{GuestName: "Mario Rossi", TotalGuests: 2, CountryCode: "it", Arrival: day(2025, time.February, 1), Departure: day(2025, time.February, 3), Status: model.StatusValid},
		{GuestName: "John Smith", TotalGuests: 3, CountryCode: "us", Arrival: day(2025, time.June, 1), Departure: day(2025, time.June, 4), Status: model.StatusValid},
		{GuestName: "Jane Doe", TotalGuests: 1, CountryCode: "uk", Arrival: day(2025, time.June, 10), Departure: day(2025, time.June, 12), Status: model.StatusCancelled},
	}
	return engine.Aggregate(engine.ComputeAll(bookings, rule, decimal.Zero, nil))
}

func TestBuildQuarterRowsLayout(t *testing.T) {
	rows := buildQuarterRows(exportFixture(t))

	// Q1 booking, Q1 subtotal, Q2 booking, Q2 subtotal, grand total.
	// The cancelled booking arrives in Q2 but is excluded from quarter groups.
	require.Len(t, rows, 5)

	assert.Equal(t, "Mario Rossi", rows[0][0])
	assert.Equal(t, "Totale Q1 (scadenza 16/04/2025)", rows[1][0])
	assert.Equal(t, "John Smith", rows[2][0])
	assert.Equal(t, "Totale Q2 (scadenza 16/07/2025)", rows[3][0])
	assert.Equal(t, "Totale complessivo", rows[4][0])
}

func TestBuildQuarterRowsBookingColumns(t *testing.T) {
	rows := buildQuarterRows(exportFixture(t))

	row := rows[0] // Mario Rossi: 2 guests, 2 nights, rate 6.00
	require.Len(t, row, len(exportHeader))
	assert.Equal(t, "Italia", row[1])
	assert.Equal(t, "2", row[2])
	assert.Equal(t, "01/02/2025", row[6])
	assert.Equal(t, "03/02/2025", row[7])
	assert.Equal(t, "2", row[8])
	assert.Equal(t, "Valida", row[10])
	assert.Equal(t, "No", row[11])
	assert.Equal(t, "24.00", row[12])
}

func TestBuildQuarterRowsGrandTotal(t *testing.T) {
	rows := buildQuarterRows(exportFixture(t))

	grand := rows[len(rows)-1]
	// 2*2*6 + 3*3*6 = 24 + 54
	assert.Equal(t, "78.00", grand[len(grand)-1])
	assert.Equal(t, "5", grand[2], "guest subtotal over valid bookings")
}

func TestCountryName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"it", "Italia"},
		{"IT", "Italia"},
		{"us", "Stati Uniti"},
		{"kr", "Corea del Sud"},
		{"", "Italia"},
		{"zz", "ZZ"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CountryName(tt.code), "code %q", tt.code)
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Valida", statusLabel(model.StatusValid))
	assert.Equal(t, "Cancellata", statusLabel(model.StatusCancelled))
	assert.Equal(t, "No-show", statusLabel(model.StatusNoShow))
}

func TestExportFilename(t *testing.T) {
	name := exportFilename("Estate 2025", "csv")
	assert.Regexp(t, `^tassa-soggiorno-estate-2025-\d{8}\.csv$`, name)

	assert.Regexp(t, `^tassa-soggiorno-report-\d{8}\.pdf$`, exportFilename("", "pdf"))
}
