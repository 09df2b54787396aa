package models

// RawTable is a rectangular grid of cell values cut out of a sheet.
//
// Each value is nil for an empty cell, int64 or float64 for numeric cells,
// and string for everything else. Row 0 holds the fiscal-year header and
// column 0 holds month names.
type RawTable [][]any

// Rows returns the number of rows in the table, header included.
func (t RawTable) Rows() int {
	return len(t)
}

// Cols returns the width of the widest row.
func (t RawTable) Cols() int {
	n := 0
	for _, row := range t {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Cell returns the value at (row, col), or nil when out of range.
func (t RawTable) Cell(row, col int) any {
	if row < 0 || row >= len(t) {
		return nil
	}
	if col < 0 || col >= len(t[row]) {
		return nil
	}
	return t[row][col]
}
