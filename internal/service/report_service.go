package service

import (
	"context"
	"fmt"
	"sort"

	"soggiorno/internal/engine"
	"soggiorno/internal/model"
	"soggiorno/internal/rules"
)

// --- DTOs ---

type OverallResponse struct {
	TotalTax         string `json:"total_tax"`
	TotalBookings    int    `json:"total_bookings"`
	TaxableBookings  int    `json:"taxable_bookings"`
	ExcludedBookings int    `json:"excluded_bookings"`
}

type CountryTotalResponse struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	Bookings    int    `json:"bookings"`
	Guests      int    `json:"guests"`
	TotalTax    string `json:"total_tax"`
}

type MonthBucketResponse struct {
	Month        string `json:"month"` // YYYY-MM
	Bookings     int    `json:"bookings"`
	Guests       int    `json:"guests"`
	PersonNights int    `json:"person_nights"`
	Tax          string `json:"tax"`
}

type QuarterResponse struct {
	Quarter  string `json:"quarter"` // Q1..Q4
	Year     int    `json:"year"`
	Months   string `json:"months"`
	Deadline string `json:"deadline"` // filing deadline, 2006-01-02
	Bookings int    `json:"bookings"`
	Nights   int    `json:"nights"`
	Guests   int    `json:"guests"`
	Tax      string `json:"tax"`
}

type ReportResponse struct {
	DatasetID    string                 `json:"dataset_id"`
	Municipality string                 `json:"municipality"`
	RuleName     string                 `json:"rule_name"`
	Rate         string                 `json:"rate"`
	Overall      OverallResponse        `json:"overall"`
	ByCountry    []CountryTotalResponse `json:"by_country"`
	ByMonth      []MonthBucketResponse  `json:"by_month"`
	ByQuarter    []QuarterResponse      `json:"by_quarter"`
	GrandTotal   string                 `json:"grand_total"`
}

type MunicipalityResponse struct {
	Name              string  `json:"name"`
	Region            string  `json:"region"`
	DefaultRate       string  `json:"default_rate"`
	MaxTaxableNights  int     `json:"max_taxable_nights"`
	ChildExemptionAge int     `json:"child_exemption_age"`
	HighSeasonRate    *string `json:"high_season_rate,omitempty"`
	LowSeasonRate     *string `json:"low_season_rate,omitempty"`
	SeasonStart       *string `json:"season_start,omitempty"`
	SeasonEnd         *string `json:"season_end,omitempty"`
}

type RegionMunicipalities struct {
	Region         string                 `json:"region"`
	Municipalities []MunicipalityResponse `json:"municipalities"`
}

// --- Interface ---

type ReportService interface {
	GetReport(ctx context.Context, datasetID string, opts RecomputeOptions) (ReportResponse, error)
	ListMunicipalities(ctx context.Context) []RegionMunicipalities
}

type reportService struct {
	bookings BookingService
}

func NewReportService(bookings BookingService) ReportService {
	return &reportService{bookings: bookings}
}

// --- Implementation ---

func (s *reportService) GetReport(ctx context.Context, datasetID string, opts RecomputeOptions) (ReportResponse, error) {
	computed, rc, err := s.bookings.Recompute(ctx, datasetID, opts)
	if err != nil {
		return ReportResponse{}, fmt.Errorf("failed to recompute dataset: %w", err)
	}

	agg := engine.Aggregate(computed)

	res := ReportResponse{
		DatasetID:    rc.Dataset.ID.String(),
		Municipality: rc.Dataset.Municipality,
		RuleName:     rc.Rule.Name,
		Rate:         rc.Rate.StringFixed(2),
		Overall: OverallResponse{
			TotalTax:         agg.Overall.TotalTax.StringFixed(2),
			TotalBookings:    agg.Overall.TotalBookings,
			TaxableBookings:  agg.Overall.TaxableBookings,
			ExcludedBookings: agg.Overall.ExcludedBookings,
		},
		GrandTotal: agg.GrandTotal.TaxAmount.StringFixed(2),
	}

	res.ByCountry = make([]CountryTotalResponse, 0, len(agg.ByCountry))
	for _, ct := range agg.ByCountry {
		res.ByCountry = append(res.ByCountry, CountryTotalResponse{
			CountryCode: ct.CountryCode,
			CountryName: CountryName(ct.CountryCode),
			Bookings:    ct.Bookings,
			Guests:      ct.Guests,
			TotalTax:    ct.Amount.StringFixed(2),
		})
	}

	res.ByMonth = make([]MonthBucketResponse, 0, len(agg.ByMonth))
	for ym, bucket := range agg.ByMonth {
		res.ByMonth = append(res.ByMonth, MonthBucketResponse{
			Month:        string(ym),
			Bookings:     len(bucket.Entries),
			Guests:       bucket.TotalGuests,
			PersonNights: bucket.TotalPersonNights,
			Tax:          bucket.TotalAmount.StringFixed(2),
		})
	}
	sort.Slice(res.ByMonth, func(i, j int) bool { return res.ByMonth[i].Month < res.ByMonth[j].Month })

	res.ByQuarter = make([]QuarterResponse, 0, len(agg.ByQuarter))
	for key, group := range agg.ByQuarter {
		res.ByQuarter = append(res.ByQuarter, QuarterResponse{
			Quarter:  key.Quarter.Label(),
			Year:     group.Year,
			Months:   key.Quarter.MonthsLabel(),
			Deadline: group.Deadline.Format("2006-01-02"),
			Bookings: len(group.Bookings),
			Nights:   group.Totals.Nights,
			Guests:   group.Totals.Guests,
			Tax:      group.Totals.TaxAmount.StringFixed(2),
		})
	}
	sort.Slice(res.ByQuarter, func(i, j int) bool {
		if res.ByQuarter[i].Year != res.ByQuarter[j].Year {
			return res.ByQuarter[i].Year < res.ByQuarter[j].Year
		}
		return res.ByQuarter[i].Quarter < res.ByQuarter[j].Quarter
	})

	return res, nil
}

func (s *reportService) ListMunicipalities(ctx context.Context) []RegionMunicipalities {
	byRegion := rules.ByRegion()

	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	res := make([]RegionMunicipalities, 0, len(regions))
	for _, region := range regions {
		entry := RegionMunicipalities{Region: region}
		for _, rule := range byRegion[region] {
			entry.Municipalities = append(entry.Municipalities, toMunicipalityResponse(rule))
		}
		res = append(res, entry)
	}
	return res
}

// --- Helpers ---

func toMunicipalityResponse(rule model.MunicipalityRule) MunicipalityResponse {
	res := MunicipalityResponse{
		Name:              rule.Name,
		Region:            rule.Region,
		DefaultRate:       rule.DefaultRate.StringFixed(2),
		MaxTaxableNights:  rule.MaxTaxableNights,
		ChildExemptionAge: rule.ChildExemptionAge,
	}
	if rule.HasSeasonality && rule.HighSeason != nil {
		high := rule.HighSeasonRate.StringFixed(2)
		low := rule.LowSeasonRate.StringFixed(2)
		start := rule.HighSeason.Start.Format("2006-01-02")
		end := rule.HighSeason.End.Format("2006-01-02")
		res.HighSeasonRate = &high
		res.LowSeasonRate = &low
		res.SeasonStart = &start
		res.SeasonEnd = &end
	}
	return res
}
