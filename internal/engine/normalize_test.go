package engine

import (
	"testing"
	"time"

	"soggiorno/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBookingComRow(t *testing.T) {
	row := RawRow{
		"Nome ospite(i)":  "Mario Rossi",
		"Persone":         float64(2),
		"Bambini":         float64(1),
		"Età dei bambini": "8",
		"Arrivo":          "2025-06-01",
		"Partenza":        "2025-06-04",
		"Stato":           "ok",
		"Booker country":  "it",
	}

	b := Normalize(row, PlatformBookingCom)

	assert.Equal(t, "Mario Rossi", b.GuestName)
	assert.Equal(t, 2, b.TotalGuests)
	assert.Equal(t, 1, b.ChildCount)
	assert.Equal(t, []int{8}, b.ChildAges)
	assert.Equal(t, day(2025, time.June, 1), b.Arrival)
	assert.Equal(t, day(2025, time.June, 4), b.Departure)
	assert.Equal(t, model.StatusValid, b.Status)
	assert.Equal(t, "it", b.CountryCode)
}

func TestNormalizeAirbnbRow(t *testing.T) {
	row := RawRow{
		"Guest Name":   "John Smith",
		"Total Guests": "4",
		"Check-in":     "2025-07-10",
		"Check-out":    "2025-07-15",
		"Status":       "Confirmed",
		"Country":      "us",
	}

	b := Normalize(row, PlatformAirbnb)

	assert.Equal(t, "John Smith", b.GuestName)
	assert.Equal(t, 4, b.TotalGuests)
	assert.Equal(t, 0, b.ChildCount)
	assert.Equal(t, "us", b.CountryCode)
}

func TestNormalizeDefaults(t *testing.T) {
	b := Normalize(RawRow{}, PlatformGeneric)

	assert.Equal(t, "Ospite", b.GuestName)
	assert.Equal(t, 1, b.TotalGuests)
	assert.Equal(t, 0, b.ChildCount)
	assert.Equal(t, "IT", b.CountryCode)
	assert.Equal(t, model.StatusValid, b.Status)
	// Unparseable dates resolve to today.
	today := time.Now().UTC()
	assert.Equal(t, day(today.Year(), today.Month(), today.Day()), b.Arrival)
}

func TestNormalizeAllNumbersUnnamedGuests(t *testing.T) {
	rows := []RawRow{
		{"Nome": "Anna"},
		{},
		{},
	}

	bookings := NormalizeAll(rows, PlatformGeneric)

	require.Len(t, bookings, 3)
	assert.Equal(t, "Anna", bookings[0].GuestName)
	assert.Equal(t, "Ospite 2", bookings[1].GuestName)
	assert.Equal(t, "Ospite 3", bookings[2].GuestName)
}

func TestNormalizeSingleAgeBroadcast(t *testing.T) {
	row := RawRow{
		"Nome":        "Famiglia Verdi",
		"Persone":     float64(5),
		"Bambini":     float64(3),
		"Età Bambini": "7",
		"Arrivo":      "2025-06-01",
		"Partenza":    "2025-06-03",
	}

	b := Normalize(row, PlatformGeneric)

	assert.Equal(t, []int{7, 7, 7}, b.ChildAges, "a single age is replicated across all declared children")
}

func TestNormalizeAgeListParsing(t *testing.T) {
	row := RawRow{
		"Persone":     float64(4),
		"Bambini":     float64(2),
		"Età Bambini": "5, 12",
		"Arrivo":      "2025-06-01",
		"Partenza":    "2025-06-03",
	}

	b := Normalize(row, PlatformGeneric)

	assert.Equal(t, []int{5, 12}, b.ChildAges)
}

func TestNormalizeSwapsInvertedDates(t *testing.T) {
	row := RawRow{
		"Arrivo":   "2025-06-10",
		"Partenza": "2025-06-05",
	}

	b := Normalize(row, PlatformGeneric)

	assert.True(t, b.Arrival.Before(b.Departure))
	assert.Equal(t, day(2025, time.June, 5), b.Arrival)
}

func TestNormalizeExcelSerialDates(t *testing.T) {
	// Serial 45809 = 2025-06-01 in the 1900 date system.
	row := RawRow{
		"Arrivo":   float64(45809),
		"Partenza": float64(45812),
	}

	b := Normalize(row, PlatformGeneric)

	assert.Equal(t, day(2025, time.June, 1), b.Arrival)
	assert.Equal(t, day(2025, time.June, 4), b.Departure)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want model.BookingStatus
	}{
		{"ok", model.StatusValid},
		{"Confirmed", model.StatusValid},
		{"", model.StatusValid},
		{"cancelled", model.StatusCancelled},
		{"Cancelled by guest", model.StatusCancelled},
		{"Annullata", model.StatusCancelled},
		{"no_show", model.StatusNoShow},
		{"No-Show", model.StatusNoShow},
		{"Mancata presentazione", model.StatusNoShow},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.raw))
		})
	}
}

func TestParsePlatform(t *testing.T) {
	assert.Equal(t, PlatformBookingCom, ParsePlatform("booking"))
	assert.Equal(t, PlatformBookingCom, ParsePlatform("Booking.com"))
	assert.Equal(t, PlatformAirbnb, ParsePlatform("airbnb"))
	assert.Equal(t, PlatformGeneric, ParsePlatform(""))
	assert.Equal(t, PlatformGeneric, ParsePlatform("csv"))
}

func TestParseDateLayouts(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"iso", "2025-06-01", day(2025, time.June, 1)},
		{"iso with time", "2025-06-01T14:30:00Z", day(2025, time.June, 1)},
		{"italian", "01/06/2025", day(2025, time.June, 1)},
		{"serial string", "45809", day(2025, time.June, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDate(tt.in))
		})
	}
}
