package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"soggiorno/internal/engine"
	"soggiorno/internal/model"
	"soggiorno/internal/pdf"
)

// Italian display names for the country codes the platform exports use.
// Unknown codes fall back to the uppercased code itself.
var countryNames = map[string]string{
	"it": "Italia",
	"us": "Stati Uniti",
	"uk": "Regno Unito",
	"de": "Germania",
	"fr": "Francia",
	"es": "Spagna",
	"nl": "Paesi Bassi",
	"ch": "Svizzera",
	"at": "Austria",
	"be": "Belgio",
	"au": "Australia",
	"ca": "Canada",
	"jp": "Giappone",
	"br": "Brasile",
	"ar": "Argentina",
	"mx": "Messico",
	"ru": "Russia",
	"cn": "Cina",
	"in": "India",
	"kr": "Corea del Sud",
}

// CountryName maps an ISO-ish country code to its Italian display name.
func CountryName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return countryNames["it"]
	}
	if name, ok := countryNames[strings.ToLower(code)]; ok {
		return name
	}
	return strings.ToUpper(code)
}

var exportHeader = []string{
	"Nome", "Paese", "Ospiti", "Bambini", "Bambini Esenti", "Adulti Tassabili",
	"Arrivo", "Partenza", "Notti", "Notti Tassabili", "Stato", "Esente Manuale", "Tassa Totale",
}

// --- Interface ---

type ExportService interface {
	ExportCSV(ctx context.Context, datasetID string, opts RecomputeOptions) ([]byte, string, error)
	ExportPDF(ctx context.Context, datasetID string, opts RecomputeOptions) ([]byte, string, error)
}

type exportService struct {
	bookings BookingService
}

func NewExportService(bookings BookingService) ExportService {
	return &exportService{bookings: bookings}
}

// --- Implementation ---

func (s *exportService) ExportCSV(ctx context.Context, datasetID string, opts RecomputeOptions) ([]byte, string, error) {
	computed, rc, err := s.bookings.Recompute(ctx, datasetID, opts)
	if err != nil {
		return nil, "", err
	}

	agg := engine.Aggregate(computed)
	rows := buildQuarterRows(agg)

	var buf bytes.Buffer
	// BOM so spreadsheet tools pick up UTF-8; semicolon to match the Italian
	// locale's list separator.
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(exportHeader); err != nil {
		return nil, "", fmt.Errorf("failed to write csv: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, "", fmt.Errorf("failed to write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to write csv: %w", err)
	}

	filename := exportFilename(rc.Dataset.Name, "csv")
	return buf.Bytes(), filename, nil
}

func (s *exportService) ExportPDF(ctx context.Context, datasetID string, opts RecomputeOptions) ([]byte, string, error) {
	computed, rc, err := s.bookings.Recompute(ctx, datasetID, opts)
	if err != nil {
		return nil, "", err
	}

	agg := engine.Aggregate(computed)

	data := pdf.ReportData{
		DatasetName:  rc.Dataset.Name,
		Municipality: rc.Rule.Name,
		Rate:         rc.Rate.StringFixed(2),
		GeneratedAt:  time.Now(),
		GrandTotal:   agg.GrandTotal.TaxAmount.StringFixed(2),
	}

	for _, key := range sortedQuarters(agg) {
		group := agg.ByQuarter[key]
		section := pdf.QuarterSection{
			Title:    fmt.Sprintf("%s %d (%s)", key.Quarter.Label(), group.Year, key.Quarter.MonthsLabel()),
			Deadline: group.Deadline.Format("02/01/2006"),
			Subtotal: group.Totals.TaxAmount.StringFixed(2),
		}
		for _, cb := range group.Bookings {
			section.Rows = append(section.Rows, pdf.BookingRow{
				GuestName: cb.GuestName,
				Country:   CountryName(cb.CountryCode),
				Arrival:   cb.Arrival.Format("02/01/2006"),
				Departure: cb.Departure.Format("02/01/2006"),
				Guests:    cb.TotalGuests,
				Nights:    cb.TaxableNights,
				Tax:       cb.TaxAmount.StringFixed(2),
			})
		}
		data.Quarters = append(data.Quarters, section)
	}

	out, err := pdf.BuildQuarterReport(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build pdf report: %w", err)
	}
	return out, exportFilename(rc.Dataset.Name, "pdf"), nil
}

// --- Helpers ---

// buildQuarterRows renders the export body: bookings grouped by fiscal
// quarter in ascending order, a subtotal line with the filing deadline after
// each quarter, and one grand total line at the end.
func buildQuarterRows(agg engine.Aggregation) [][]string {
	var rows [][]string

	for _, key := range sortedQuarters(agg) {
		group := agg.ByQuarter[key]
		for _, cb := range group.Bookings {
			rows = append(rows, bookingRow(cb))
		}
		rows = append(rows, subtotalRow(
			fmt.Sprintf("Totale %s (scadenza %s)", key.Quarter.Label(), group.Deadline.Format("02/01/2006")),
			group.Totals,
		))
	}

	rows = append(rows, subtotalRow("Totale complessivo", agg.GrandTotal))
	return rows
}

func sortedQuarters(agg engine.Aggregation) []model.QuarterKey {
	quarters := make([]model.QuarterKey, 0, len(agg.ByQuarter))
	for key := range agg.ByQuarter {
		quarters = append(quarters, key)
	}
	sort.Slice(quarters, func(i, j int) bool {
		if quarters[i].Year != quarters[j].Year {
			return quarters[i].Year < quarters[j].Year
		}
		return quarters[i].Quarter < quarters[j].Quarter
	})
	return quarters
}

func bookingRow(cb model.ComputedBooking) []string {
	exempt := "No"
	if cb.ManuallyExempt {
		exempt = "Sì"
	}
	return []string{
		cb.GuestName,
		CountryName(cb.CountryCode),
		strconv.Itoa(cb.TotalGuests),
		strconv.Itoa(cb.ChildCount),
		strconv.Itoa(cb.ExemptChildren),
		strconv.Itoa(cb.TaxableAdults),
		cb.Arrival.Format("02/01/2006"),
		cb.Departure.Format("02/01/2006"),
		strconv.Itoa(cb.Nights),
		strconv.Itoa(cb.TaxableNights),
		statusLabel(cb.Status),
		exempt,
		cb.TaxAmount.StringFixed(2),
	}
}

func subtotalRow(label string, totals model.QuarterTotals) []string {
	return []string{
		label,
		"",
		strconv.Itoa(totals.Guests),
		strconv.Itoa(totals.Children),
		strconv.Itoa(totals.ExemptChildren),
		strconv.Itoa(totals.TaxableAdults),
		"", "",
		strconv.Itoa(totals.Nights),
		strconv.Itoa(totals.TaxableNights),
		"", "",
		totals.TaxAmount.StringFixed(2),
	}
}

func statusLabel(s model.BookingStatus) string {
	switch s {
	case model.StatusCancelled:
		return "Cancellata"
	case model.StatusNoShow:
		return "No-show"
	default:
		return "Valida"
	}
}

func exportFilename(datasetName, ext string) string {
	slug := strings.ToLower(strings.TrimSpace(datasetName))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	if slug == "" {
		slug = "report"
	}
	return fmt.Sprintf("tassa-soggiorno-%s-%s.%s", slug, time.Now().Format("20060102"), ext)
}
