package sheets

import (
	"fmt"
	"strconv"
	"strings"

	sheets "google.golang.org/api/sheets/v4"
)

// A1Range is a parsed A1 notation range with zero-based, half-open indices.
// Open ranges such as "A:C" have Rows set to false and leave the row
// indices unset.
type A1Range struct {
	Sheet    string
	StartCol int64
	EndCol   int64
	StartRow int64
	EndRow   int64
	Rows     bool
}

// ParseA1 parses "A1", "B2:D10", "A:C", "AA1:AB2" and their sheet-prefixed
// forms ("Sheet1!A1:B2", "'My Sheet'!A:A").
func ParseA1(s string) (A1Range, error) {
	var r A1Range

	ref := strings.TrimSpace(s)
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		r.Sheet = unquoteSheetName(ref[:i])
		ref = ref[i+1:]
	}
	if ref == "" {
		return A1Range{}, fmt.Errorf("invalid range %q: missing cell reference", s)
	}

	startRef, endRef, isSpan := strings.Cut(ref, ":")
	startCol, startRow, err := parseCell(startRef)
	if err != nil {
		return A1Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}

	endCol, endRow := startCol, startRow
	if isSpan {
		endCol, endRow, err = parseCell(endRef)
		if err != nil {
			return A1Range{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
	}

	if (startRow == 0) != (endRow == 0) {
		return A1Range{}, fmt.Errorf("invalid range %q: mixes open and bounded rows", s)
	}
	if endCol < startCol || endRow < startRow {
		return A1Range{}, fmt.Errorf("invalid range %q: end precedes start", s)
	}

	r.StartCol = startCol - 1
	r.EndCol = endCol
	if startRow > 0 {
		r.Rows = true
		r.StartRow = startRow - 1
		r.EndRow = endRow
	}
	return r, nil
}

// Width is the number of columns covered.
func (r A1Range) Width() int64 { return r.EndCol - r.StartCol }

// Height is the number of rows covered, or 0 for open ranges.
func (r A1Range) Height() int64 {
	if !r.Rows {
		return 0
	}
	return r.EndRow - r.StartRow
}

// GridRange converts r into an API grid range on sheetID.
func (r A1Range) GridRange(sheetID int64) *sheets.GridRange {
	g := &sheets.GridRange{
		SheetId:          sheetID,
		StartColumnIndex: r.StartCol,
		EndColumnIndex:   r.EndCol,
		ForceSendFields:  []string{"SheetId", "StartColumnIndex"},
	}
	if r.Rows {
		g.StartRowIndex = r.StartRow
		g.EndRowIndex = r.EndRow
		g.ForceSendFields = append(g.ForceSendFields, "StartRowIndex")
	}
	return g
}

// String renders r back into A1 notation, without the sheet prefix.
func (r A1Range) String() string {
	start := ColumnLetters(r.StartCol)
	end := ColumnLetters(r.EndCol - 1)
	if r.Rows {
		start += strconv.FormatInt(r.StartRow+1, 10)
		end += strconv.FormatInt(r.EndRow, 10)
	}
	if start == end {
		return start
	}
	return start + ":" + end
}

// Qualified prefixes an A1 reference with a quoted sheet name.
func Qualified(sheet, ref string) string {
	if sheet == "" {
		return ref
	}
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if ref == "" {
		return quoted
	}
	return quoted + "!" + ref
}

// ColumnLetters converts a zero-based column index into letters (0 -> A, 26 -> AA).
func ColumnLetters(idx int64) string {
	var b []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// parseCell returns the one-based column and row of a cell reference. The row
// is 0 when omitted ("C").
func parseCell(ref string) (col, row int64, err error) {
	ref = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(ref, "$", "")))
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int64(ref[i]-'A'+1)
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("cell %q has no column letters", ref)
	}
	if i < len(ref) {
		row, err = strconv.ParseInt(ref[i:], 10, 64)
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("cell %q has an invalid row", ref)
		}
	}
	return col, row, nil
}

func unquoteSheetName(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}
