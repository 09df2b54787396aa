// Package storage persists raw documents and processed series.
package storage

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultRawContainer holds downloaded documents as published.
	DefaultRawContainer = "raw-data"
	// DefaultFinalContainer holds processed CSV series.
	DefaultFinalContainer = "processed-data"

	contentTypeCSV = "text/csv; charset=utf-8"
)

var contentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xlsm": "application/vnd.ms-excel.sheet.macroEnabled.12",
	".xls":  "application/vnd.ms-excel",
	".csv":  contentTypeCSV,
}

// contentType guesses a blob content type from the file extension.
func contentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// FinalName is the object name of a processed series.
func FinalName(table string) string {
	return table + ".csv"
}
