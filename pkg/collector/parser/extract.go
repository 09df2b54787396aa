package parser

import (
	"bytes"
	"fmt"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/xuri/excelize/v2"
)

// Open reads an xlsx document held in memory.
func Open(content []byte) (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	return f, nil
}

// ExtractRange cuts the rectangular range named by location out of the
// given sheet of an xlsx document. Location is an A1 range ("B5:N20") or
// a defined name visible from the sheet.
//
// The result always has Area.Rows() rows of Area.Cols() cells; cells past
// the end of a short row are nil. Either the whole grid is returned or an
// error wrapping one of ErrUnreadableWorkbook, ErrSheetNotFound,
// ErrInvalidRange or ErrOutOfBounds.
func ExtractRange(content []byte, sheetName, location string) (models.RawTable, error) {
	f, err := Open(content)
	if err != nil {
		return nil, newRangeError(sheetName, location, err)
	}
	defer f.Close()

	return ExtractFromFile(f, sheetName, location)
}

// ExtractFromFile is ExtractRange for an already opened workbook.
func ExtractFromFile(f *excelize.File, sheetName, location string) (models.RawTable, error) {
	rows, err := readSheet(f, sheetName)
	if err != nil {
		return nil, newRangeError(sheetName, location, err)
	}

	area, err := resolveLocation(f, sheetName, location)
	if err != nil {
		return nil, newRangeError(sheetName, location, err)
	}

	numRows, numCols := sheetBounds(rows)
	if area.R2 > numRows || area.C2 > numCols {
		return nil, newRangeError(sheetName, location,
			fmt.Errorf("%w: %s exceeds used area of %d rows x %d columns", ErrOutOfBounds, area, numRows, numCols))
	}

	return cut(rows, area), nil
}

// resolveLocation turns a range string or defined name into an Area.
func resolveLocation(f *excelize.File, sheetName, location string) (models.Area, error) {
	area, rangeErr := ParseRange(location)
	if rangeErr == nil {
		return area, nil
	}

	area, found, err := resolveDefinedName(f, sheetName, location)
	if err != nil {
		return models.Area{}, err
	}
	if !found {
		return models.Area{}, rangeErr
	}
	return area, nil
}

// cut copies the area out of rows, converting cells with parseValue.
func cut(rows [][]string, area models.Area) models.RawTable {
	table := make(models.RawTable, 0, area.Rows())
	for r := area.R1; r <= area.R2; r++ {
		row := rows[r-1]
		out := make([]any, area.Cols())
		for c := area.C1; c <= area.C2; c++ {
			if c-1 < len(row) {
				out[c-area.C1] = parseValue(row[c-1])
			}
		}
		table = append(table, out)
	}
	return table
}
