package sheets

import (
	"fmt"

	sheets "google.golang.org/api/sheets/v4"
)

// SpreadsheetInfo identifies a spreadsheet.
type SpreadsheetInfo struct {
	ID    string `json:"spreadsheetId"`
	Title string `json:"title"`
	URL   string `json:"spreadsheetUrl,omitempty"`
}

// SheetInfo describes one sheet (tab) of a spreadsheet.
type SheetInfo struct {
	ID          int64  `json:"sheetId"`
	Title       string `json:"title"`
	Index       int64  `json:"index"`
	RowCount    int64  `json:"rowCount,omitempty"`
	ColumnCount int64  `json:"columnCount,omitempty"`
}

// ColumnsResult is returned by AddColumns.
type ColumnsResult struct {
	SheetID     int64                        `json:"sheetId"`
	FirstColumn string                       `json:"firstColumn"`
	Added       int64                        `json:"added"`
	Updated     *sheets.UpdateValuesResponse `json:"updated,omitempty"`
}

// ChartResult is returned by CreateChart.
type ChartResult struct {
	ChartID   int64  `json:"chartId"`
	SheetID   int64  `json:"sheetId"`
	ChartType string `json:"chartType"`
	Title     string `json:"title"`
}

// SheetNotFoundError reports a sheet title that does not exist.
type SheetNotFoundError struct {
	SpreadsheetID string
	Sheet         string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found in spreadsheet %s", e.Sheet, e.SpreadsheetID)
}
