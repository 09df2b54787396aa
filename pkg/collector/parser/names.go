package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/xuri/excelize/v2"
)

// ListDefinedNames returns the workbook's defined names, print areas included.
func ListDefinedNames(f *excelize.File) []models.DefinedName {
	var names []models.DefinedName
	for _, dn := range f.GetDefinedName() {
		names = append(names, models.DefinedName{
			Name:     dn.Name,
			Scope:    dn.Scope,
			RefersTo: dn.RefersTo,
		})
	}
	return names
}

// resolveDefinedName looks up a defined name usable on the given sheet.
// Sheet-scoped names win over workbook-scoped ones. Only single-area
// references are accepted; a print area spanning several ranges is ambiguous.
func resolveDefinedName(f *excelize.File, sheet, name string) (models.Area, bool, error) {
	var match *excelize.DefinedName
	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, name) {
			continue
		}
		if dn.Scope == sheet {
			match = &dn
			break
		}
		if match == nil && (dn.Scope == "" || strings.EqualFold(dn.Scope, "Workbook")) {
			match = &dn
		}
	}
	if match == nil {
		return models.Area{}, false, nil
	}

	if strings.Contains(match.RefersTo, ",") {
		return models.Area{}, true, fmt.Errorf("%w: defined name %q refers to several ranges", ErrInvalidRange, name)
	}

	refSheet, rng := splitReference(match.RefersTo)
	if refSheet != "" && refSheet != sheet {
		return models.Area{}, true, fmt.Errorf("%w: defined name %q points at sheet %q", ErrInvalidRange, name, refSheet)
	}

	area, err := ParseRange(rng)
	if err != nil {
		return models.Area{}, true, err
	}
	return area, true, nil
}
