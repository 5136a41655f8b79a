package sheets_tools

import (
	"context"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/drive"
	"github.com/teemow/mcp-google-workspace/internal/google"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/sheets"
)

const service = string(google.ServiceSheets)

// RegisterSheetsCommands adds the Sheets commands to the registry of sc.
func RegisterSheetsCommands(sc *server.ServerContext) error {
	return sc.Registry().RegisterAll(Descriptors(sc)...)
}

func spreadsheetParam() dispatch.Param {
	return dispatch.String("spreadsheet_id", dispatch.Normalize(drive.FileID),
		dispatch.Description("ID or URL of the spreadsheet; defaults to the current spreadsheet"))
}

func sheetParam(description string) dispatch.Param {
	return dispatch.String("sheet_name", dispatch.Required(), dispatch.Description(description))
}

func valuesParam() dispatch.Param {
	return dispatch.JSON("values", dispatch.Required(),
		dispatch.Description("2-D array of cell values, one inner array per row"))
}

// Descriptors returns the Sheets command descriptors bound to sc.
func Descriptors(sc *server.ServerContext) []dispatch.Descriptor {
	descriptors := []dispatch.Descriptor{
		{
			Name:        "list_sheets",
			Service:     service,
			Description: "List the sheets (tabs) of a spreadsheet",
			ReadOnly:    true,
			Params:      []dispatch.Param{spreadsheetParam()},
			Handler:     handleListSheets(sc),
		},
		{
			Name:        "add_sheet",
			Service:     service,
			Description: "Add an empty 1000x26 sheet to a spreadsheet",
			Params: []dispatch.Param{
				sheetParam("Title of the new sheet"),
				spreadsheetParam(),
			},
			Handler: handleAddSheet(sc),
		},
		{
			Name:        "duplicate_sheet",
			Service:     service,
			Description: "Duplicate a sheet within its spreadsheet",
			Params: []dispatch.Param{
				dispatch.String("source_sheet_name", dispatch.Required(), dispatch.Description("Title of the sheet to duplicate")),
				dispatch.String("new_sheet_name", dispatch.Required(), dispatch.Description("Title of the duplicate")),
				spreadsheetParam(),
			},
			Handler: handleDuplicateSheet(sc),
		},
		{
			Name:        "rename_sheet",
			Service:     service,
			Description: "Rename a sheet",
			Params: []dispatch.Param{
				sheetParam("Current title of the sheet"),
				dispatch.String("new_name", dispatch.Required(), dispatch.Description("New title of the sheet")),
				spreadsheetParam(),
			},
			Handler: handleRenameSheet(sc),
		},
		{
			Name:        "get_sheet_data",
			Service:     service,
			Description: "Read the values of a range",
			ReadOnly:    true,
			Params: []dispatch.Param{
				dispatch.String("range", dispatch.Required(), dispatch.Description("A1 range, e.g. A1:C10")),
				dispatch.String("sheet_name", dispatch.Description("Sheet the range refers to")),
				spreadsheetParam(),
			},
			Handler: handleGetSheetData(sc),
		},
		{
			Name:        "add_rows",
			Service:     service,
			Description: "Append rows after the last non-empty row of a sheet",
			Params: []dispatch.Param{
				sheetParam("Sheet to append to"),
				valuesParam(),
				spreadsheetParam(),
			},
			Handler: handleAddRows(sc),
		},
		{
			Name:        "add_columns",
			Service:     service,
			Description: "Append columns to a sheet and fill them from row 1",
			Params: []dispatch.Param{
				sheetParam("Sheet to append to"),
				valuesParam(),
				spreadsheetParam(),
			},
			Handler: handleAddColumns(sc),
		},
		{
			Name:        "update_cells",
			Service:     service,
			Description: "Write values into a range as if typed by a user",
			Params: []dispatch.Param{
				dispatch.String("range", dispatch.Required(), dispatch.Description("A1 range, e.g. Sheet1!A1:B2")),
				valuesParam(),
				spreadsheetParam(),
			},
			Handler: handleUpdateCells(sc),
		},
		{
			Name:    "batch_update_cells",
			Service: service,
			Description: "Write values with HTML-style formatting markup (<b>, <i>, <u>, <s>, <h1>-<h3>, " +
				"<small>, <font color>, <bg color>, <center>) into a range, creating the sheet when missing",
			Params: []dispatch.Param{
				sheetParam("Sheet to write to"),
				dispatch.String("range", dispatch.Required(), dispatch.Description("A1 range, e.g. A1:C3")),
				valuesParam(),
				dispatch.Bool("merge_cells", dispatch.Default(false), dispatch.Description("Merge the range into one cell")),
				spreadsheetParam(),
			},
			Handler: handleBatchUpdateCells(sc),
		},
		{
			Name:        "delete_rows",
			Service:     service,
			Description: "Delete rows [start_index, end_index) of a sheet, zero-based",
			Params:      spanParams("row"),
			Handler:     handleDeleteSpan(sc, (*sheets.Client).DeleteRows),
		},
		{
			Name:        "delete_columns",
			Service:     service,
			Description: "Delete columns [start_index, end_index) of a sheet, zero-based",
			Params:      spanParams("column"),
			Handler:     handleDeleteSpan(sc, (*sheets.Client).DeleteColumns),
		},
		{
			Name:        "create_chart",
			Service:     service,
			Description: "Create a chart over a range whose first column is the domain and remaining columns are series",
			Params: []dispatch.Param{
				sheetParam("Sheet holding the data"),
				dispatch.Enum("chart_type", sheets.ChartTypes, dispatch.Required(), dispatch.Description("Chart type")),
				dispatch.String("range", dispatch.Required(), dispatch.Description("A1 range of the data, e.g. A1:C10")),
				dispatch.String("title", dispatch.Description("Chart title; defaults to the sheet name")),
				spreadsheetParam(),
			},
			Handler: handleCreateChart(sc),
		},
	}
	for i := range descriptors {
		descriptors[i].Handler = rememberSpreadsheet(sc, descriptors[i].Handler)
	}
	return descriptors
}

// rememberSpreadsheet makes an explicitly given spreadsheet_id current once
// the command has succeeded against it.
func rememberSpreadsheet(sc *server.ServerContext, h dispatch.Handler) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		payload, err := h.Handle(ctx, args)
		if err == nil {
			sc.SetCurrentSpreadsheet(args.String("spreadsheet_id"))
		}
		return payload, err
	}
}

func spanParams(unit string) []dispatch.Param {
	return []dispatch.Param{
		sheetParam("Sheet to delete from"),
		dispatch.Int("start_index", dispatch.Required(), dispatch.Description("Zero-based index of the first "+unit+" to delete")),
		dispatch.Int("end_index", dispatch.Description("Zero-based exclusive end; defaults to start_index + 1")),
		spreadsheetParam(),
	}
}
