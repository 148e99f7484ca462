package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestYearMonthOf(t *testing.T) {
	assert.Equal(t, YearMonth("2025-06"), YearMonthOf(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, YearMonth("2025-01"), YearMonthOf(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, YearMonth("2025-12"), YearMonthOf(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  Quarter
	}{
		{time.January, Q1}, {time.March, Q1},
		{time.April, Q2}, {time.June, Q2},
		{time.July, Q3}, {time.September, Q3},
		{time.October, Q4}, {time.December, Q4},
	}

	for _, tt := range tests {
		d := time.Date(2025, tt.month, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, tt.want, QuarterOf(d), "month %s", tt.month)
	}
}

func TestFilingDeadlines(t *testing.T) {
	assert.Equal(t, time.Date(2025, time.April, 16, 0, 0, 0, 0, time.UTC), Q1.FilingDeadline(2025))
	assert.Equal(t, time.Date(2025, time.July, 16, 0, 0, 0, 0, time.UTC), Q2.FilingDeadline(2025))
	assert.Equal(t, time.Date(2025, time.October, 16, 0, 0, 0, 0, time.UTC), Q3.FilingDeadline(2025))
	// Q4 files in January of the following year.
	assert.Equal(t, time.Date(2026, time.January, 16, 0, 0, 0, 0, time.UTC), Q4.FilingDeadline(2025))
}

func TestQuarterLabels(t *testing.T) {
	assert.Equal(t, "Q1", Q1.Label())
	assert.Equal(t, "Gen-Mar", Q1.MonthsLabel())
	assert.Equal(t, "Apr-Giu", Q2.MonthsLabel())
	assert.Equal(t, "Lug-Set", Q3.MonthsLabel())
	assert.Equal(t, "Ott-Dic", Q4.MonthsLabel())
}

func TestExemptionSet(t *testing.T) {
	set := NewExemptionSet("Mario Rossi", "", "  ")

	assert.True(t, set.Has("Mario Rossi"))
	assert.False(t, set.Has("Anna Bianchi"))
	assert.False(t, set.Has(""))
	assert.Len(t, set, 1, "blank names are ignored")
}
