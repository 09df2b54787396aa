package models

// WorkbookInfo represents the workbook-level summary produced by inspect.
type WorkbookInfo struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Sheets lists sheets in workbook order.
	Sheets []SheetInfo `json:"sheets"`
	// DefinedNames lists named ranges, print areas included.
	DefinedNames []DefinedName `json:"defined_names,omitempty"`
}
