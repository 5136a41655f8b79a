package sheets_tools

import (
	"context"
	"errors"
	"fmt"

	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/sheets"
	"github.com/teemow/mcp-google-workspace/internal/tools/common"
)

// target resolves the spreadsheet a command acts on and the Sheets client.
func target(ctx context.Context, sc *server.ServerContext, args dispatch.Args) (*sheets.Client, string, error) {
	id, err := sc.ResolveSpreadsheetID(args.String("spreadsheet_id"))
	if err != nil {
		return nil, "", err
	}
	client, err := sc.Facade().Sheets(ctx)
	if err != nil {
		return nil, "", err
	}
	return client, id, nil
}

// sheetError reports an unknown sheet as a bad value of param.
func sheetError(err error, param string) error {
	var notFound *sheets.SheetNotFoundError
	if errors.As(err, &notFound) {
		return common.Invalid(param, "an existing sheet name", notFound.Error())
	}
	return err
}

func parseRange(args dispatch.Args) (sheets.A1Range, error) {
	rng, err := sheets.ParseA1(args.String("range"))
	if err != nil {
		return sheets.A1Range{}, common.Invalid("range", "A1 notation range", err.Error())
	}
	return rng, nil
}

func handleListSheets(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.ListSheets(ctx, id)
	}
}

func handleAddSheet(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.AddSheet(ctx, id, args.String("sheet_name"))
	}
}

func handleDuplicateSheet(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		info, err := client.DuplicateSheet(ctx, id, args.String("source_sheet_name"), args.String("new_sheet_name"))
		if err != nil {
			return nil, sheetError(err, "source_sheet_name")
		}
		return info, nil
	}
}

func handleRenameSheet(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		info, err := client.RenameSheet(ctx, id, args.String("sheet_name"), args.String("new_name"))
		if err != nil {
			return nil, sheetError(err, "sheet_name")
		}
		return info, nil
	}
}

func handleGetSheetData(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.GetValues(ctx, id, sheets.Qualified(args.String("sheet_name"), args.String("range")))
	}
}

func handleAddRows(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		values, err := common.Grid(args, "values")
		if err != nil {
			return nil, err
		}
		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.AppendRows(ctx, id, args.String("sheet_name"), values)
	}
}

func handleAddColumns(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		values, err := common.Grid(args, "values")
		if err != nil {
			return nil, err
		}
		if len(values[0]) == 0 {
			return nil, common.Invalid("values", "2-D array of cell values", "first row is empty")
		}
		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		result, err := client.AddColumns(ctx, id, args.String("sheet_name"), values)
		if err != nil {
			return nil, sheetError(err, "sheet_name")
		}
		return result, nil
	}
}

func handleUpdateCells(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		values, err := common.Grid(args, "values")
		if err != nil {
			return nil, err
		}
		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.UpdateValues(ctx, id, args.String("range"), values)
	}
}

func handleBatchUpdateCells(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		rng, err := parseRange(args)
		if err != nil {
			return nil, err
		}
		values, err := common.Grid(args, "values")
		if err != nil {
			return nil, err
		}
		if rng.Rows && int64(len(values)) > rng.Height() {
			return nil, common.Invalid("values", "at most one row per row of range",
				fmt.Sprintf("%d rows for range %s", len(values), rng))
		}
		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.UpdateCells(ctx, id, args.String("sheet_name"), rng, values, args.Bool("merge_cells"))
	}
}

// deleteFunc is (*sheets.Client).DeleteRows or (*sheets.Client).DeleteColumns.
type deleteFunc func(*sheets.Client, context.Context, string, string, int64, int64) (*sheetsapi.BatchUpdateSpreadsheetResponse, error)

func handleDeleteSpan(sc *server.ServerContext, del deleteFunc) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		start := args.Int("start_index")
		if start < 0 {
			return nil, common.Invalid("start_index", "a non-negative index", fmt.Sprintf("got %d", start))
		}
		end := start + 1
		if args.Has("end_index") {
			end = args.Int("end_index")
		}
		if end <= start {
			return nil, common.Invalid("end_index", "an index greater than start_index",
				fmt.Sprintf("got [%d, %d)", start, end))
		}

		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		resp, err := del(client, ctx, id, args.String("sheet_name"), start, end)
		if err != nil {
			return nil, sheetError(err, "sheet_name")
		}
		return resp, nil
	}
}

func handleCreateChart(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		rng, err := parseRange(args)
		if err != nil {
			return nil, err
		}
		chartType := args.String("chart_type")
		switch {
		case rng.Width() < 2:
			return nil, common.Invalid("range", "a domain column and at least one series column",
				fmt.Sprintf("%s is one column wide", rng))
		case chartType == "PIE" && rng.Width() != 2:
			return nil, common.Invalid("range", "exactly two columns for a PIE chart",
				fmt.Sprintf("%s is %d columns wide", rng, rng.Width()))
		}

		client, id, err := target(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		sheet := args.String("sheet_name")
		result, err := client.CreateChart(ctx, id, sheet, sheets.ChartOptions{
			Type:  chartType,
			Range: rng,
			Title: args.String("title"),
		})
		if err != nil {
			return nil, sheetError(err, "sheet_name")
		}
		return result, nil
	}
}
