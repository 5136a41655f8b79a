// Package sheets wraps the Google Sheets API operations behind the
// spreadsheet commands: sheet management, reading and writing values,
// formatted cell updates and charts.
//
// Ranges are given in A1 notation and parsed by ParseA1 into zero-based,
// half-open grid indices. Cell text written through UpdateCells may carry
// HTML-style markup (<b>, <i>, <font color="#ff0000">, ...) which ParseMarkup
// turns into a cell format.
package sheets
