package parser

import (
	"github.com/ukaji3/opendata-collector/pkg/collector/models"
)

// TableDetectionParams holds parameters for table detection.
type TableDetectionParams struct {
	// DensityMin is the minimum share of non-empty cells in the bounding box.
	DensityMin float64
	// CoverageMin is the minimum share of rows in the box carrying data.
	CoverageMin float64
	// MinNonemptyCells rejects boxes that are too sparse to be a table.
	MinNonemptyCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		CoverageMin:      0.2,
		MinNonemptyCells: 3,
	}
}

// DetectTable returns the bounding area of the sheet's data when it looks
// like a table, which is a good starting point for a dataset's
// data_location.
func DetectTable(rows [][]string, params TableDetectionParams) (models.Area, bool) {
	if len(rows) == 0 {
		return models.Area{}, false
	}

	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return models.Area{}, false
	}

	totalCells := (maxRow - minRow + 1) * (maxCol - minCol + 1)
	nonEmptyCells, rowsWithData := countNonEmptyCells(rows, minRow, maxRow, minCol, maxCol)
	if nonEmptyCells < params.MinNonemptyCells {
		return models.Area{}, false
	}
	if float64(nonEmptyCells)/float64(totalCells) < params.DensityMin {
		return models.Area{}, false
	}
	if float64(rowsWithData)/float64(maxRow-minRow+1) < params.CoverageMin {
		return models.Area{}, false
	}

	return models.Area{R1: minRow + 1, C1: minCol + 1, R2: maxRow + 1, C2: maxCol + 1}, true
}

// findDataBounds finds the 0-based bounding box of non-empty cells.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if parseValue(cell) == nil {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}

// countNonEmptyCells counts non-empty cells and the rows holding them.
func countNonEmptyCells(rows [][]string, minRow, maxRow, minCol, maxCol int) (cells, dataRows int) {
	for rowIdx := minRow; rowIdx <= maxRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		found := false
		for colIdx := minCol; colIdx <= maxCol && colIdx < len(row); colIdx++ {
			if parseValue(row[colIdx]) != nil {
				cells++
				found = true
			}
		}
		if found {
			dataRows++
		}
	}
	return cells, dataRows
}
