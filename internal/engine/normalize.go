// Package engine implements the booking tax pipeline: normalization of raw
// platform rows, per-booking tax calculation, calendar-period allocation and
// report aggregation. Every operation is a pure function over its inputs;
// the engine holds no state and performs no I/O.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"soggiorno/internal/model"
)

// RawRow is one already-tabular record from a platform export: header cell
// to value. Values may be strings, numbers (spreadsheet cells decode as
// float64) or nil for blanks.
type RawRow map[string]any

// Platform identifies the source of an export so the right column aliases
// are tried first. Unknown hints fall back to the generic alias set.
type Platform string

const (
	PlatformBookingCom Platform = "booking"
	PlatformAirbnb     Platform = "airbnb"
	PlatformGeneric    Platform = "generic"
)

// ParsePlatform maps a free-form hint to a known platform.
func ParsePlatform(hint string) Platform {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "booking", "booking.com":
		return PlatformBookingCom
	case "airbnb":
		return PlatformAirbnb
	default:
		return PlatformGeneric
	}
}

// fieldAliases lists, in priority order, the header names a platform uses
// for each canonical booking field.
type fieldAliases struct {
	guestName []string
	guests    []string
	children  []string
	childAges []string
	arrival   []string
	departure []string
	status    []string
	country   []string
}

var bookingComAliases = fieldAliases{
	guestName: []string{"Nome ospite(i)", "Prenotato da", "Booker"},
	guests:    []string{"Persone", "Ospiti", "Adults"},
	children:  []string{"Bambini", "Children"},
	childAges: []string{"Età dei bambini", "Età Bambini", "Children Ages"},
	arrival:   []string{"Arrivo", "Check-in"},
	departure: []string{"Partenza", "Check-out"},
	status:    []string{"Stato", "Status"},
	country:   []string{"Booker country", "Paese", "Country"},
}

var airbnbAliases = fieldAliases{
	guestName: []string{"Guest Name", "Nome"},
	guests:    []string{"Total Guests", "Adults", "Persone"},
	children:  []string{"Children", "Bambini"},
	childAges: []string{"Children Ages", "Età Bambini"},
	arrival:   []string{"Check-in", "Checkin", "Arrivo"},
	departure: []string{"Check-out", "Checkout", "Partenza"},
	status:    []string{"Status", "Stato"},
	country:   []string{"Country", "Paese"},
}

var genericAliases = fieldAliases{
	guestName: []string{"Nome ospite(i)", "Nome ospite", "Prenotato da", "Booker", "Nome", "Guest Name"},
	guests:    []string{"Persone", "Ospiti", "Numero Ospiti", "Adults", "Total Guests"},
	children:  []string{"Bambini", "Children"},
	childAges: []string{"Età dei bambini", "Età Bambini", "Children Ages"},
	arrival:   []string{"Arrivo", "Check-in", "Checkin"},
	departure: []string{"Partenza", "Check-out", "Checkout"},
	status:    []string{"Stato", "Status"},
	country:   []string{"Booker country", "Paese", "Country"},
}

var aliasesByPlatform = map[Platform]fieldAliases{
	PlatformBookingCom: bookingComAliases,
	PlatformAirbnb:     airbnbAliases,
	PlatformGeneric:    genericAliases,
}

// Normalize maps one raw platform row to a canonical Booking. It never
// fails: missing guest counts default to 1, missing children to 0, and
// unparseable dates resolve to today. Rows this lenient default fires for
// still flow through the pipeline rather than aborting an import.
func Normalize(row RawRow, platform Platform) model.Booking {
	aliases, ok := aliasesByPlatform[platform]
	if !ok {
		aliases = genericAliases
	}

	name := stringField(row, aliases.guestName)
	if name == "" {
		name = "Ospite"
	}

	guests := intField(row, aliases.guests, 1)
	if guests < 1 {
		guests = 1
	}
	children := intField(row, aliases.children, 0)
	if children < 0 {
		children = 0
	}

	ages := parseAges(firstValue(row, aliases.childAges))
	// Documented source behavior: a single supplied age is replicated across
	// all declared children.
	if len(ages) == 1 && children > 1 {
		age := ages[0]
		ages = make([]int, children)
		for i := range ages {
			ages[i] = age
		}
	}

	arrival := parseDate(firstValue(row, aliases.arrival))
	departure := parseDate(firstValue(row, aliases.departure))
	if departure.Before(arrival) {
		arrival, departure = departure, arrival
	}

	country := stringField(row, aliases.country)
	if country == "" {
		country = "IT"
	}

	return model.Booking{
		GuestName:   name,
		TotalGuests: guests,
		ChildCount:  children,
		ChildAges:   ages,
		Arrival:     arrival,
		Departure:   departure,
		Status:      ParseStatus(stringField(row, aliases.status)),
		CountryCode: country,
	}
}

// NormalizeAll normalizes a batch, numbering unnamed guests by row position
// the way the platform exports do.
func NormalizeAll(rows []RawRow, platform Platform) []model.Booking {
	out := make([]model.Booking, 0, len(rows))
	for i, row := range rows {
		b := Normalize(row, platform)
		if b.GuestName == "Ospite" {
			b.GuestName = fmt.Sprintf("Ospite %d", i+1)
		}
		out = append(out, b)
	}
	return out
}

// ParseStatus classifies a raw status string by substring, case-insensitive.
// Everything that is not recognisably cancelled or a no-show counts as valid.
func ParseStatus(raw string) model.BookingStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "cancel") || strings.Contains(s, "annull"):
		return model.StatusCancelled
	case strings.Contains(s, "no_show") || strings.Contains(s, "no-show") || strings.Contains(s, "mancata"):
		return model.StatusNoShow
	default:
		return model.StatusValid
	}
}

func firstValue(row RawRow, aliases []string) any {
	for _, key := range aliases {
		if v, ok := row[key]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

func stringField(row RawRow, aliases []string) string {
	v := firstValue(row, aliases)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func intField(row RawRow, aliases []string, def int) int {
	v := firstValue(row, aliases)
	switch n := v.(type) {
	case nil:
		return def
	case float64:
		return int(n)
	case int:
		return n
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

// parseAges reads a comma-separated age list (or a single numeric cell),
// dropping anything non-numeric.
func parseAges(v any) []int {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return []int{int(n)}
	case int:
		return []int{n}
	}

	var ages []int
	for _, part := range strings.Split(fmt.Sprint(v), ",") {
		age, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ages = append(ages, age)
	}
	return ages
}

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// excelEpoch is day zero of the 1900 date system used by spreadsheet serial
// numbers (Dec 30 1899 accounts for the historical leap-year bug).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// parseDate accepts ISO strings, spreadsheet serial numbers and a handful of
// locale layouts, normalizing to a pure calendar date (midnight UTC).
// Anything unreadable resolves to today: a lenient default, not an error.
func parseDate(v any) time.Time {
	switch n := v.(type) {
	case float64:
		return truncateToDay(excelEpoch.AddDate(0, 0, int(n)))
	case int:
		return truncateToDay(excelEpoch.AddDate(0, 0, n))
	case string:
		s := strings.TrimSpace(n)
		if isoDateRe.MatchString(s) {
			if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
				return truncateToDay(t)
			}
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncateToDay(t)
			}
		}
		if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
			return truncateToDay(excelEpoch.AddDate(0, 0, int(serial)))
		}
	}
	return truncateToDay(time.Now().UTC())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
