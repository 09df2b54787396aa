package models

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Area represents inclusive cell coordinate bounds on a sheet.
type Area struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// Rows returns the number of rows covered by the area.
func (a Area) Rows() int {
	return a.R2 - a.R1 + 1
}

// Cols returns the number of columns covered by the area.
func (a Area) Cols() int {
	return a.C2 - a.C1 + 1
}

// String renders the area in A1 notation, e.g. "B5:N20".
func (a Area) String() string {
	start, err := excelize.CoordinatesToCellName(a.C1, a.R1)
	if err != nil {
		return fmt.Sprintf("R%dC%d:R%dC%d", a.R1, a.C1, a.R2, a.C2)
	}
	end, err := excelize.CoordinatesToCellName(a.C2, a.R2)
	if err != nil {
		return fmt.Sprintf("R%dC%d:R%dC%d", a.R1, a.C1, a.R2, a.C2)
	}
	return start + ":" + end
}
