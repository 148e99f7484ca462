package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeasonWindow is a closed calendar interval (both endpoints inclusive)
// marking a municipality's high season. Windows are year-scoped: the source
// regulations publish concrete dates per year.
type SeasonWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls inside the window, endpoints included.
func (w SeasonWindow) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// MunicipalityRule holds one municipality's occupancy tax parameters.
// Loaded once from the static table and immutable afterwards; when
// HasSeasonality is false the seasonal fields are zero and DefaultRate is
// authoritative.
type MunicipalityRule struct {
	Name              string          `json:"name"`
	Region            string          `json:"region"`
	MinRate           decimal.Decimal `json:"min_rate"`
	MaxRate           decimal.Decimal `json:"max_rate"`
	DefaultRate       decimal.Decimal `json:"default_rate"`
	ChildExemptionAge int             `json:"child_exemption_age"` // strictly younger guests are exempt
	MaxTaxableNights  int             `json:"max_taxable_nights"`
	HasSeasonality    bool            `json:"has_seasonality"`
	HighSeasonRate    decimal.Decimal `json:"high_season_rate"`
	LowSeasonRate     decimal.Decimal `json:"low_season_rate"`
	HighSeason        *SeasonWindow   `json:"high_season,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// InHighSeason reports whether d falls inside the rule's high season window.
// Always false for non-seasonal rules.
func (r MunicipalityRule) InHighSeason(d time.Time) bool {
	if !r.HasSeasonality || r.HighSeason == nil {
		return false
	}
	return r.HighSeason.Contains(d)
}
