package parser

import (
	"fmt"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/xuri/excelize/v2"
)

// Inspect summarises every sheet of a workbook: its used dimension, row and
// column counts, and a detected table range.
func Inspect(f *excelize.File, bookName string) (*models.WorkbookInfo, error) {
	info := &models.WorkbookInfo{
		BookName:     bookName,
		DefinedNames: ListDefinedNames(f),
	}

	for _, sheetName := range f.GetSheetList() {
		rows, err := readSheet(f, sheetName)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
		}
		numRows, numCols := sheetBounds(rows)

		sheet := models.SheetInfo{
			Name: sheetName,
			Rows: numRows,
			Cols: numCols,
		}
		// Dimension is optional in the file format
		if dim, err := f.GetSheetDimension(sheetName); err == nil {
			sheet.Dimension = dim
		}
		if area, ok := DetectTable(rows, DefaultTableParams()); ok {
			sheet.TableCandidates = []string{area.String()}
		}
		info.Sheets = append(info.Sheets, sheet)
	}

	return info, nil
}

// Preview returns up to n rows of a raw table for display.
func Preview(table models.RawTable, n int) models.RawTable {
	if n < 0 || n >= len(table) {
		return table
	}
	return table[:n]
}

// OpenFile opens an xlsx file from disk.
func OpenFile(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	return f, nil
}
