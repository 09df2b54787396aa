package parser

import (
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readSheet returns the sheet's rows with raw (unformatted) cell values.
// Trailing empty cells of each row are omitted by excelize.
func readSheet(f *excelize.File, sheetName string) ([][]string, error) {
	if !slices.Contains(f.GetSheetList(), sheetName) {
		return nil, ErrSheetNotFound
	}
	return f.GetRows(sheetName, excelize.Options{RawCellValue: true})
}

// sheetBounds returns the number of used rows and the widest row length.
func sheetBounds(rows [][]string) (numRows, numCols int) {
	numRows = len(rows)
	for _, row := range rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}
	return numRows, numCols
}

// parseValue attempts to parse a string value as a number.
// Returns nil for blanks, int64 for integers, float64 for decimals,
// or the trimmed string.
func parseValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
