package sheets

import (
	"context"
	"fmt"

	sheets "google.golang.org/api/sheets/v4"
)

// ChartTypes lists the accepted chart types.
var ChartTypes = []string{"LINE", "COLUMN", "BAR", "AREA", "SCATTER", "PIE"}

const (
	chartWidthPixels  = 600
	chartHeightPixels = 371
)

// ChartOptions describes a chart built from a block of data: the first
// column is the domain (x axis or pie labels) and every further column is a
// series.
type ChartOptions struct {
	Type  string
	Range A1Range
	// Title defaults to the sheet name.
	Title string
}

// CreateChart embeds a chart over opts.Range on sheet, anchored at the top
// left cell of the range.
func (c *Client) CreateChart(ctx context.Context, spreadsheetID, sheet string, opts ChartOptions) (*ChartResult, error) {
	if opts.Range.Width() < 2 {
		return nil, fmt.Errorf("chart range %s needs a domain column and at least one series column", opts.Range)
	}
	if opts.Type == "PIE" && opts.Range.Width() != 2 {
		return nil, fmt.Errorf("pie chart range %s must have exactly two columns", opts.Range)
	}

	sh, err := c.FindSheet(ctx, spreadsheetID, sheet)
	if err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = sheet
	}

	spec := &sheets.ChartSpec{Title: title}
	column := func(offset int64) *sheets.ChartData {
		g := opts.Range.GridRange(sh.ID)
		g.StartColumnIndex = opts.Range.StartCol + offset
		g.EndColumnIndex = g.StartColumnIndex + 1
		return &sheets.ChartData{
			SourceRange: &sheets.ChartSourceRange{Sources: []*sheets.GridRange{g}},
		}
	}

	if opts.Type == "PIE" {
		spec.PieChart = &sheets.PieChartSpec{
			Domain:         column(0),
			Series:         column(1),
			LegendPosition: "RIGHT_LEGEND",
		}
	} else {
		axis := "LEFT_AXIS"
		if opts.Type == "BAR" {
			axis = "BOTTOM_AXIS"
		}
		basic := &sheets.BasicChartSpec{
			ChartType:      opts.Type,
			LegendPosition: "RIGHT_LEGEND",
			HeaderCount:    1,
			Domains:        []*sheets.BasicChartDomain{{Domain: column(0)}},
		}
		for i := int64(1); i < opts.Range.Width(); i++ {
			basic.Series = append(basic.Series, &sheets.BasicChartSeries{
				Series:     column(i),
				TargetAxis: axis,
			})
		}
		spec.BasicChart = basic
	}

	anchor := &sheets.GridCoordinate{
		SheetId:         sh.ID,
		ColumnIndex:     opts.Range.StartCol,
		RowIndex:        opts.Range.StartRow,
		ForceSendFields: []string{"SheetId", "ColumnIndex", "RowIndex"},
	}

	resp, err := c.batchUpdate(ctx, spreadsheetID, &sheets.Request{
		AddChart: &sheets.AddChartRequest{
			Chart: &sheets.EmbeddedChart{
				Spec: spec,
				Position: &sheets.EmbeddedObjectPosition{
					OverlayPosition: &sheets.OverlayPosition{
						AnchorCell:   anchor,
						WidthPixels:  chartWidthPixels,
						HeightPixels: chartHeightPixels,
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	result := &ChartResult{SheetID: sh.ID, ChartType: opts.Type, Title: title}
	if len(resp.Replies) > 0 && resp.Replies[0].AddChart != nil && resp.Replies[0].AddChart.Chart != nil {
		result.ChartID = resp.Replies[0].AddChart.Chart.ChartId
	}
	return result, nil
}
