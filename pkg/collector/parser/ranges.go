package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/xuri/excelize/v2"
)

// ParseRange parses an A1-style range such as "B5:N20" or "$B$5:$N$20".
// Corners may be given in either order; the result is normalised so that
// R1 <= R2 and C1 <= C2.
func ParseRange(rangeStr string) (models.Area, error) {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(rangeStr), "$", ""))

	parts := strings.Split(cleaned, ":")
	if len(parts) != 2 {
		return models.Area{}, fmt.Errorf("%w: %q must have the form <Col><Row>:<Col><Row>", ErrInvalidRange, rangeStr)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.Area{}, fmt.Errorf("%w: start cell %q: %v", ErrInvalidRange, parts[0], err)
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return models.Area{}, fmt.Errorf("%w: end cell %q: %v", ErrInvalidRange, parts[1], err)
	}

	area := models.Area{R1: startRow, C1: startCol, R2: endRow, C2: endCol}
	if area.R1 > area.R2 {
		area.R1, area.R2 = area.R2, area.R1
	}
	if area.C1 > area.C2 {
		area.C1, area.C2 = area.C2, area.C1
	}
	return area, nil
}

// splitReference splits 'Sheet Name'!$A$1:$D$10 into sheet and range.
func splitReference(ref string) (string, string) {
	ref = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ref), "="))
	idx := strings.LastIndex(ref, "!")
	if idx < 0 {
		return "", ref
	}
	sheet := strings.Trim(ref[:idx], "'")
	return strings.ReplaceAll(sheet, "''", "'"), ref[idx+1:]
}
