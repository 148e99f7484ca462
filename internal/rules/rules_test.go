package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownMunicipality(t *testing.T) {
	roma, ok := Lookup("Roma")
	require.True(t, ok)

	assert.Equal(t, "Roma", roma.Name)
	assert.Equal(t, "Lazio", roma.Region)
	assert.Equal(t, "6.00", roma.DefaultRate.StringFixed(2))
	assert.Equal(t, 10, roma.MaxTaxableNights)
	assert.Equal(t, 10, roma.ChildExemptionAge)
	assert.False(t, roma.HasSeasonality)
}

func TestLookupUnknownMunicipality(t *testing.T) {
	_, ok := Lookup("Atlantide")
	assert.False(t, ok)
}

func TestResolveFallsBackToCustom(t *testing.T) {
	rule := Resolve("")

	assert.Equal(t, "Personalizzato", rule.Name)
	assert.Equal(t, CustomMaxTaxableNights, rule.MaxTaxableNights)
	assert.Equal(t, CustomChildExemptionAge, rule.ChildExemptionAge)
	assert.False(t, rule.HasSeasonality)

	assert.Equal(t, "Personalizzato", Resolve("Atlantide").Name)
	assert.Equal(t, "Milano", Resolve("Milano").Name)
}

func TestSeasonalRulesHaveWindows(t *testing.T) {
	for _, rule := range All() {
		if rule.HasSeasonality {
			require.NotNil(t, rule.HighSeason, "%s declares seasonality without a window", rule.Name)
			assert.True(t, rule.HighSeason.Start.Before(rule.HighSeason.End), "%s window must be ordered", rule.Name)
			assert.True(t, rule.HighSeasonRate.GreaterThan(rule.LowSeasonRate), "%s high season rate should exceed low", rule.Name)
		} else {
			assert.Nil(t, rule.HighSeason, "%s has a window without seasonality", rule.Name)
		}
	}
}

func TestVeneziaSeasonWindow(t *testing.T) {
	venezia, ok := Lookup("Venezia")
	require.True(t, ok)
	require.True(t, venezia.HasSeasonality)

	assert.True(t, venezia.InHighSeason(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)), "window start is inclusive")
	assert.True(t, venezia.InHighSeason(time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)), "window end is inclusive")
	assert.False(t, venezia.InHighSeason(time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.False(t, venezia.InHighSeason(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAllSortedByName(t *testing.T) {
	all := All()
	require.Len(t, all, 16)

	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
}

func TestByRegionGrouping(t *testing.T) {
	grouped := ByRegion()

	require.NotEmpty(t, grouped["Toscana"])
	assert.Equal(t, "Firenze", grouped["Toscana"][0].Name)

	total := 0
	for _, rules := range grouped {
		total += len(rules)
	}
	assert.Equal(t, len(All()), total)
}
