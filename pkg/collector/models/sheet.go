package models

// SheetInfo summarises a sheet for the inspect command.
type SheetInfo struct {
	// Name is the sheet name as it appears in the workbook.
	Name string `json:"name"`
	// Dimension is the used range of the sheet (e.g. "A1:N40").
	Dimension string `json:"dimension,omitempty"`
	// Rows is the number of rows returned by the sheet reader.
	Rows int `json:"rows"`
	// Cols is the widest row length.
	Cols int `json:"cols"`
	// TableCandidates contains cell ranges likely representing tables.
	TableCandidates []string `json:"table_candidates,omitempty"`
}

// DefinedName is a workbook or sheet scoped name pointing at a range.
type DefinedName struct {
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	RefersTo string `json:"refers_to"`
}
