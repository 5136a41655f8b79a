package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

const (
	// New sheets get the same grid as a sheet created in the UI.
	defaultRowCount    = 1000
	defaultColumnCount = 26

	valueInputUserEntered = "USER_ENTERED"
)

// Client wraps the Google Sheets API service
type Client struct {
	service *sheets.Service
}

// NewClient creates a Sheets client. Authentication comes from opts.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &Client{service: svc}, nil
}

// Service exposes the underlying API service.
func (c *Client) Service() *sheets.Service {
	return c.service
}

// CreateSpreadsheet creates an empty spreadsheet in the user's root folder.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (*SpreadsheetInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	created, err := c.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	info := &SpreadsheetInfo{
		ID:  created.SpreadsheetId,
		URL: created.SpreadsheetUrl,
	}
	if created.Properties != nil {
		info.Title = created.Properties.Title
	}
	return info, nil
}

// ListSheets returns the properties of every sheet in a spreadsheet.
func (c *Client) ListSheets(ctx context.Context, spreadsheetID string) ([]SheetInfo, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}

	ss, err := c.service.Spreadsheets.Get(spreadsheetID).
		Context(ctx).
		Fields("sheets.properties").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	out := make([]SheetInfo, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			out = append(out, convertToSheetInfo(sh.Properties))
		}
	}
	return out, nil
}

// FindSheet looks a sheet up by title.
func (c *Client) FindSheet(ctx context.Context, spreadsheetID, title string) (*SheetInfo, error) {
	all, err := c.ListSheets(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Title == title {
			return &all[i], nil
		}
	}
	return nil, &SheetNotFoundError{SpreadsheetID: spreadsheetID, Sheet: title}
}

// AddSheet appends a new sheet with a 1000x26 grid.
func (c *Client) AddSheet(ctx context.Context, spreadsheetID, title string) (*SheetInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("sheet name is required")
	}

	resp, err := c.batchUpdate(ctx, spreadsheetID, &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: title,
				GridProperties: &sheets.GridProperties{
					RowCount:    defaultRowCount,
					ColumnCount: defaultColumnCount,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return nil, fmt.Errorf("add sheet %q returned no sheet properties", title)
	}

	info := convertToSheetInfo(resp.Replies[0].AddSheet.Properties)
	return &info, nil
}

// DuplicateSheet copies a sheet within the same spreadsheet under a new title.
func (c *Client) DuplicateSheet(ctx context.Context, spreadsheetID, source, newTitle string) (*SheetInfo, error) {
	src, err := c.FindSheet(ctx, spreadsheetID, source)
	if err != nil {
		return nil, err
	}

	resp, err := c.batchUpdate(ctx, spreadsheetID, &sheets.Request{
		DuplicateSheet: &sheets.DuplicateSheetRequest{
			SourceSheetId:    src.ID,
			NewSheetName:     newTitle,
			InsertSheetIndex: src.Index + 1,
			ForceSendFields:  []string{"SourceSheetId"},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].DuplicateSheet == nil {
		return nil, fmt.Errorf("duplicate sheet %q returned no sheet properties", source)
	}

	info := convertToSheetInfo(resp.Replies[0].DuplicateSheet.Properties)
	return &info, nil
}

// RenameSheet changes the title of a sheet.
func (c *Client) RenameSheet(ctx context.Context, spreadsheetID, title, newTitle string) (*SheetInfo, error) {
	sh, err := c.FindSheet(ctx, spreadsheetID, title)
	if err != nil {
		return nil, err
	}

	_, err = c.batchUpdate(ctx, spreadsheetID, &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:         sh.ID,
				Title:           newTitle,
				ForceSendFields: []string{"SheetId"},
			},
			Fields: "title",
		},
	})
	if err != nil {
		return nil, err
	}

	sh.Title = newTitle
	return sh, nil
}

// GetValues reads a range. The response is the API's ValueRange unchanged.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, a1 string) (*sheets.ValueRange, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}

	vr, err := c.service.Spreadsheets.Values.Get(spreadsheetID, a1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get values %s: %w", a1, err)
	}
	return vr, nil
}

// AppendRows appends rows after the last non-empty row of a sheet.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, sheet string, values [][]interface{}) (*sheets.AppendValuesResponse, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("values are required")
	}

	resp, err := c.service.Spreadsheets.Values.Append(spreadsheetID, Qualified(sheet, ""), &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputUserEntered).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to append rows to %s: %w", sheet, err)
	}
	return resp, nil
}

// AddColumns appends as many columns as the widest row of values and writes
// values into them, starting at row 1.
func (c *Client) AddColumns(ctx context.Context, spreadsheetID, sheet string, values [][]interface{}) (*ColumnsResult, error) {
	width := 0
	for _, row := range values {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil, fmt.Errorf("values are required")
	}

	sh, err := c.FindSheet(ctx, spreadsheetID, sheet)
	if err != nil {
		return nil, err
	}

	_, err = c.batchUpdate(ctx, spreadsheetID, &sheets.Request{
		AppendDimension: &sheets.AppendDimensionRequest{
			SheetId:         sh.ID,
			Dimension:       "COLUMNS",
			Length:          int64(width),
			ForceSendFields: []string{"SheetId"},
		},
	})
	if err != nil {
		return nil, err
	}

	first := ColumnLetters(sh.ColumnCount)
	updated, err := c.UpdateValues(ctx, spreadsheetID, Qualified(sheet, first+"1"), values)
	if err != nil {
		return nil, err
	}

	return &ColumnsResult{
		SheetID:     sh.ID,
		FirstColumn: first,
		Added:       int64(width),
		Updated:     updated,
	}, nil
}

// UpdateValues writes values into a range, interpreting them as if typed by a user.
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, a1 string, values [][]interface{}) (*sheets.UpdateValuesResponse, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("values are required")
	}

	resp, err := c.service.Spreadsheets.Values.Update(spreadsheetID, a1, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update values %s: %w", a1, err)
	}
	return resp, nil
}

// UpdateCells writes values with HTML-style markup into rng on sheet,
// creating the sheet when it does not exist. With merge set the range is
// merged into one cell afterwards.
func (c *Client) UpdateCells(ctx context.Context, spreadsheetID, sheet string, rng A1Range, values [][]interface{}, merge bool) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("values are required")
	}

	sheetID, err := c.ensureSheet(ctx, spreadsheetID, sheet)
	if err != nil {
		return nil, err
	}

	if !rng.Rows {
		rng.Rows = true
		rng.StartRow = 0
		rng.EndRow = int64(len(values))
	}
	grid := rng.GridRange(sheetID)

	rows := make([]*sheets.RowData, 0, len(values))
	for _, row := range values {
		rd := &sheets.RowData{Values: make([]*sheets.CellData, 0, len(row))}
		for _, v := range row {
			rd.Values = append(rd.Values, cellData(v))
		}
		rows = append(rows, rd)
	}

	reqs := []*sheets.Request{{
		UpdateCells: &sheets.UpdateCellsRequest{
			Range:  grid,
			Rows:   rows,
			Fields: "userEnteredValue,userEnteredFormat",
		},
	}}
	if merge {
		reqs = append(reqs, &sheets.Request{
			MergeCells: &sheets.MergeCellsRequest{Range: grid, MergeType: "MERGE_ALL"},
		})
	}

	return c.batchUpdate(ctx, spreadsheetID, reqs...)
}

// DeleteRows removes rows [start, end) of a sheet, zero-based.
func (c *Client) DeleteRows(ctx context.Context, spreadsheetID, sheet string, start, end int64) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	return c.deleteDimension(ctx, spreadsheetID, sheet, "ROWS", start, end)
}

// DeleteColumns removes columns [start, end) of a sheet, zero-based.
func (c *Client) DeleteColumns(ctx context.Context, spreadsheetID, sheet string, start, end int64) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	return c.deleteDimension(ctx, spreadsheetID, sheet, "COLUMNS", start, end)
}

func (c *Client) deleteDimension(ctx context.Context, spreadsheetID, sheet, dimension string, start, end int64) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("invalid %s span [%d, %d)", dimension, start, end)
	}

	sh, err := c.FindSheet(ctx, spreadsheetID, sheet)
	if err != nil {
		return nil, err
	}

	return c.batchUpdate(ctx, spreadsheetID, &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:         sh.ID,
				Dimension:       dimension,
				StartIndex:      start,
				EndIndex:        end,
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
		},
	})
}

// ensureSheet returns the id of sheet, adding it when missing.
func (c *Client) ensureSheet(ctx context.Context, spreadsheetID, sheet string) (int64, error) {
	sh, err := c.FindSheet(ctx, spreadsheetID, sheet)
	if err == nil {
		return sh.ID, nil
	}
	var notFound *SheetNotFoundError
	if !errors.As(err, &notFound) {
		return 0, err
	}

	added, err := c.AddSheet(ctx, spreadsheetID, sheet)
	if err != nil {
		return 0, err
	}
	return added.ID, nil
}

func (c *Client) batchUpdate(ctx context.Context, spreadsheetID string, reqs ...*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}

	resp, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update spreadsheet %s: %w", spreadsheetID, err)
	}
	return resp, nil
}

// cellData converts one decoded JSON value into a cell. Strings starting
// with "=" are formulas; other strings may carry markup.
func cellData(v interface{}) *sheets.CellData {
	switch val := v.(type) {
	case nil:
		return &sheets.CellData{}
	case bool:
		return &sheets.CellData{UserEnteredValue: &sheets.ExtendedValue{BoolValue: &val}}
	case float64:
		return &sheets.CellData{UserEnteredValue: &sheets.ExtendedValue{NumberValue: &val}}
	case int:
		f := float64(val)
		return &sheets.CellData{UserEnteredValue: &sheets.ExtendedValue{NumberValue: &f}}
	case int64:
		f := float64(val)
		return &sheets.CellData{UserEnteredValue: &sheets.ExtendedValue{NumberValue: &f}}
	case string:
		if val == "" {
			return &sheets.CellData{}
		}
		if val[0] == '=' {
			return &sheets.CellData{UserEnteredValue: &sheets.ExtendedValue{FormulaValue: &val}}
		}
		text, format := ParseMarkup(val)
		return &sheets.CellData{
			UserEnteredValue:  &sheets.ExtendedValue{StringValue: &text},
			UserEnteredFormat: format,
		}
	default:
		s := fmt.Sprint(val)
		return &sheets.CellData{UserEnteredValue: &sheets.ExtendedValue{StringValue: &s}}
	}
}

func convertToSheetInfo(p *sheets.SheetProperties) SheetInfo {
	info := SheetInfo{
		ID:    p.SheetId,
		Title: p.Title,
		Index: p.Index,
	}
	if p.GridProperties != nil {
		info.RowCount = p.GridProperties.RowCount
		info.ColumnCount = p.GridProperties.ColumnCount
	}
	return info
}
