// Package sheets_tools registers the Google Sheets commands.
//
// Every command takes an optional spreadsheet_id. When it is omitted the
// current spreadsheet of the server context is used, and an explicit id
// becomes the new current spreadsheet.
//
// Tab management:
//   - list_sheets, add_sheet, duplicate_sheet, rename_sheet
//
// Cell data:
//   - get_sheet_data: read a range, optionally scoped to sheet_name
//   - add_rows, add_columns: append a 2-D array of values
//   - update_cells: write values into an A1 range
//   - batch_update_cells: write values with HTML-style markup, optionally
//     merging the range
//   - delete_rows, delete_columns: remove a zero-based [start, end) span
//
// Charts:
//   - create_chart: LINE, COLUMN, BAR, AREA, SCATTER or PIE over a range
//     whose first column is the domain
package sheets_tools
