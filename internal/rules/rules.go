// Package rules holds the static occupancy tax rule table for the supported
// Italian municipalities. The table is loaded once at init and read-only
// afterwards, so it is safe to share across concurrent computations.
package rules

import (
	"sort"
	"time"

	"soggiorno/internal/model"

	"github.com/shopspring/decimal"
)

// CustomMaxTaxableNights and CustomChildExemptionAge parameterize the
// synthetic rule used when no known municipality is selected or the
// operator supplies a manual tariff.
const (
	CustomMaxTaxableNights  = 10
	CustomChildExemptionAge = 10
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic("rules: bad date literal " + s)
	}
	return t
}

func window(start, end string) *model.SeasonWindow {
	return &model.SeasonWindow{Start: date(start), End: date(end)}
}

var municipalities = map[string]model.MunicipalityRule{
	"Roma": {
		Name: "Roma", Region: "Lazio",
		MinRate: d("3.00"), MaxRate: d("10.00"), DefaultRate: d("6.00"),
		ChildExemptionAge: 10, MaxTaxableNights: 10,
		Notes: "Tariffe variabili per tipologia struttura",
	},
	"Milano": {
		Name: "Milano", Region: "Lombardia",
		MinRate: d("1.00"), MaxRate: d("5.00"), DefaultRate: d("3.00"),
		ChildExemptionAge: 10, MaxTaxableNights: 14,
		Notes: "Tariffe per categoria struttura",
	},
	"Firenze": {
		Name: "Firenze", Region: "Toscana",
		MinRate: d("1.00"), MaxRate: d("5.00"), DefaultRate: d("4.50"),
		ChildExemptionAge: 12, MaxTaxableNights: 7,
		HasSeasonality: true, HighSeasonRate: d("5.00"), LowSeasonRate: d("3.00"),
		HighSeason: window("2025-04-01", "2025-10-31"),
		Notes:      "Stagionalità aprile-ottobre",
	},
	"Venezia": {
		Name: "Venezia", Region: "Veneto",
		MinRate: d("1.00"), MaxRate: d("5.00"), DefaultRate: d("4.00"),
		ChildExemptionAge: 10, MaxTaxableNights: 5,
		HasSeasonality: true, HighSeasonRate: d("5.00"), LowSeasonRate: d("2.50"),
		HighSeason: window("2025-03-01", "2025-11-30"),
		Notes:      "Stagionalità marzo-novembre, max 5 notti",
	},
	"Napoli": {
		Name: "Napoli", Region: "Campania",
		MinRate: d("1.00"), MaxRate: d("4.00"), DefaultRate: d("2.50"),
		ChildExemptionAge: 10, MaxTaxableNights: 10,
		HasSeasonality: true, HighSeasonRate: d("4.00"), LowSeasonRate: d("2.00"),
		HighSeason: window("2025-04-01", "2025-10-31"),
		Notes:      "Stagionalità periodo turistico",
	},
	"Torino": {
		Name: "Torino", Region: "Piemonte",
		MinRate: d("1.40"), MaxRate: d("3.70"), DefaultRate: d("2.50"),
		ChildExemptionAge: 10, MaxTaxableNights: 7,
		Notes: "Tariffe per tipologia struttura",
	},
	"Genova": {
		Name: "Genova", Region: "Liguria",
		MinRate: d("1.00"), MaxRate: d("3.00"), DefaultRate: d("2.00"),
		ChildExemptionAge: 12, MaxTaxableNights: 10,
		HasSeasonality: true, HighSeasonRate: d("3.00"), LowSeasonRate: d("1.50"),
		HighSeason: window("2025-06-15", "2025-09-15"),
		Notes:      "Stagionalità estiva",
	},
	"Bologna": {
		Name: "Bologna", Region: "Emilia-Romagna",
		MinRate: d("1.50"), MaxRate: d("4.50"), DefaultRate: d("3.00"),
		ChildExemptionAge: 14, MaxTaxableNights: 5,
		Notes: "Max 5 notti consecutive",
	},
	"Rimini": {
		Name: "Rimini", Region: "Emilia-Romagna",
		MinRate: d("1.00"), MaxRate: d("2.50"), DefaultRate: d("1.50"),
		ChildExemptionAge: 14, MaxTaxableNights: 7,
		HasSeasonality: true, HighSeasonRate: d("2.50"), LowSeasonRate: d("1.00"),
		HighSeason: window("2025-06-01", "2025-09-30"),
		Notes:      "Stagionalità balneare",
	},
	"Bolzano": {
		Name: "Bolzano", Region: "Trentino-Alto Adige",
		MinRate: d("1.00"), MaxRate: d("3.50"), DefaultRate: d("2.30"),
		ChildExemptionAge: 14, MaxTaxableNights: 7,
		HasSeasonality: true, HighSeasonRate: d("3.50"), LowSeasonRate: d("2.00"),
		HighSeason: window("2025-05-01", "2025-10-31"),
		Notes:      "Stagionalità turistica montana",
	},
	"Palermo": {
		Name: "Palermo", Region: "Sicilia",
		MinRate: d("1.00"), MaxRate: d("3.00"), DefaultRate: d("2.50"),
		ChildExemptionAge: 10, MaxTaxableNights: 4,
		HasSeasonality: true, HighSeasonRate: d("3.00"), LowSeasonRate: d("1.50"),
		HighSeason: window("2025-05-01", "2025-10-31"),
		Notes:      "Max 4 notti consecutive",
	},
	"Catania": {
		Name: "Catania", Region: "Sicilia",
		MinRate: d("1.00"), MaxRate: d("2.00"), DefaultRate: d("1.50"),
		ChildExemptionAge: 10, MaxTaxableNights: 4,
		Notes: "Max 4 notti consecutive",
	},
	"Bari": {
		Name: "Bari", Region: "Puglia",
		MinRate: d("1.00"), MaxRate: d("2.00"), DefaultRate: d("1.50"),
		ChildExemptionAge: 12, MaxTaxableNights: 5,
		HasSeasonality: true, HighSeasonRate: d("2.00"), LowSeasonRate: d("1.00"),
		HighSeason: window("2025-06-01", "2025-09-30"),
		Notes:      "Stagionalità estiva",
	},
	"Ancona": {
		Name: "Ancona", Region: "Marche",
		MinRate: d("0.50"), MaxRate: d("2.00"), DefaultRate: d("1.20"),
		ChildExemptionAge: 12, MaxTaxableNights: 5,
		HasSeasonality: true, HighSeasonRate: d("2.00"), LowSeasonRate: d("1.00"),
		HighSeason: window("2025-06-15", "2025-09-15"),
		Notes:      "Stagionalità balneare",
	},
	"Perugia": {
		Name: "Perugia", Region: "Umbria",
		MinRate: d("1.00"), MaxRate: d("2.50"), DefaultRate: d("2.00"),
		ChildExemptionAge: 10, MaxTaxableNights: 5,
		Notes: "Max 5 notti consecutive",
	},
	"Cagliari": {
		Name: "Cagliari", Region: "Sardegna",
		MinRate: d("1.00"), MaxRate: d("2.50"), DefaultRate: d("2.00"),
		ChildExemptionAge: 12, MaxTaxableNights: 7,
		HasSeasonality: true, HighSeasonRate: d("2.50"), LowSeasonRate: d("1.50"),
		HighSeason: window("2025-05-01", "2025-10-31"),
		Notes:      "Stagionalità turistica",
	},
}

// Lookup returns the rule for a municipality name, if known.
func Lookup(name string) (model.MunicipalityRule, bool) {
	r, ok := municipalities[name]
	return r, ok
}

// Custom returns the synthetic rule applied when no known municipality is
// selected or a manual tariff is in use: no seasonality, 10-night cap,
// children under 10 exempt.
func Custom() model.MunicipalityRule {
	return model.MunicipalityRule{
		Name:              "Personalizzato",
		ChildExemptionAge: CustomChildExemptionAge,
		MaxTaxableNights:  CustomMaxTaxableNights,
		DefaultRate:       d("6.00"),
	}
}

// Resolve returns the rule for the given municipality, falling back to the
// custom rule for unknown or empty names.
func Resolve(name string) model.MunicipalityRule {
	if r, ok := municipalities[name]; ok {
		return r
	}
	return Custom()
}

// All returns every known rule sorted by municipality name.
func All() []model.MunicipalityRule {
	out := make([]model.MunicipalityRule, 0, len(municipalities))
	for _, r := range municipalities {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByRegion groups the known rules by region, municipalities sorted by name
// within each region.
func ByRegion() map[string][]model.MunicipalityRule {
	grouped := make(map[string][]model.MunicipalityRule)
	for _, r := range All() {
		grouped[r.Region] = append(grouped[r.Region], r)
	}
	return grouped
}
