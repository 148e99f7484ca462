// Package pdf renders the quarterly occupancy tax report for filing with the
// municipality.
package pdf

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type BookingRow struct {
	GuestName string
	Country   string
	Arrival   string
	Departure string
	Guests    int
	Nights    int
	Tax       string
}

type QuarterSection struct {
	Title    string // e.g. "Q2 2025 (Apr-Giu)"
	Deadline string // filing deadline, dd/mm/yyyy
	Rows     []BookingRow
	Subtotal string
}

type ReportData struct {
	DatasetName  string
	Municipality string
	Rate         string
	GeneratedAt  time.Time
	Quarters     []QuarterSection
	GrandTotal   string
}

// BuildQuarterReport renders the report as a PDF document.
func BuildQuarterReport(data ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Pagina {current} di {total}",
			Place:   props.RightBottom,
		}).
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	buildHeader(m, data)
	for _, section := range data.Quarters {
		buildQuarterSection(m, section)
	}
	buildGrandTotal(m, data)

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pdf: %w", err)
	}
	return document.GetBytes(), nil
}

func buildHeader(m core.Maroto, data ReportData) {
	m.AddRow(10, text.NewCol(12, "Imposta di Soggiorno - Riepilogo Trimestrale", props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Dataset: %s", data.DatasetName), props.Text{
		Size:  9,
		Align: align.Center,
	}))
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Comune: %s - Tariffa: € %s", data.Municipality, data.Rate), props.Text{
		Size:  9,
		Align: align.Center,
	}))
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Generato il %s", data.GeneratedAt.Format("02/01/2006 15:04")), props.Text{
		Size:  8,
		Align: align.Center,
	}))
	m.AddRow(4, line.NewCol(12))
}

func buildQuarterSection(m core.Maroto, section QuarterSection) {
	m.AddRow(10, text.NewCol(12, section.Title, props.Text{
		Size:  11,
		Style: fontstyle.Bold,
		Top:   3,
	}))
	m.AddRow(5, text.NewCol(12, fmt.Sprintf("Scadenza versamento: %s", section.Deadline), props.Text{
		Size: 8,
	}))

	headerStyle := props.Text{Size: 8, Style: fontstyle.Bold}
	m.AddRow(7,
		text.NewCol(3, "Ospite", headerStyle),
		text.NewCol(2, "Paese", headerStyle),
		text.NewCol(2, "Arrivo", headerStyle),
		text.NewCol(2, "Partenza", headerStyle),
		text.NewCol(1, "Ospiti", headerStyle),
		text.NewCol(1, "Notti", headerStyle),
		text.NewCol(1, "Tassa", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
	)

	cellStyle := props.Text{Size: 8}
	for _, row := range section.Rows {
		m.AddRow(6,
			text.NewCol(3, row.GuestName, cellStyle),
			text.NewCol(2, row.Country, cellStyle),
			text.NewCol(2, row.Arrival, cellStyle),
			text.NewCol(2, row.Departure, cellStyle),
			text.NewCol(1, fmt.Sprintf("%d", row.Guests), cellStyle),
			text.NewCol(1, fmt.Sprintf("%d", row.Nights), cellStyle),
			text.NewCol(1, "€ "+row.Tax, props.Text{Size: 8, Align: align.Right}),
		)
	}

	m.AddRow(8,
		text.NewCol(9, "Totale trimestre", props.Text{Size: 9, Style: fontstyle.Bold, Top: 2}),
		text.NewCol(3, "€ "+section.Subtotal, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 2}),
	)
	m.AddRow(3, line.NewCol(12))
}

func buildGrandTotal(m core.Maroto, data ReportData) {
	m.AddRow(12,
		text.NewCol(9, "Totale complessivo dovuto", props.Text{Size: 11, Style: fontstyle.Bold, Top: 4}),
		text.NewCol(3, "€ "+data.GrandTotal, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 4}),
	)
}
