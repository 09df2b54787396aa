package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one dated observation of the long-format series.
type Record struct {
	// Date is the first day of the observation month, UTC.
	Date time.Time `json:"date"`
	// Value is the coerced cell value.
	Value decimal.Decimal `json:"value"`
}

// DropReason explains why a melted cell did not become a record.
type DropReason string

const (
	DropUnknownMonth      DropReason = "unknown_month"
	DropInvalidFiscalYear DropReason = "invalid_fiscal_year"
	DropEmptyValue        DropReason = "empty_value"
	DropNonNumericValue   DropReason = "non_numeric_value"
)

// Drop records a cell excluded from the series.
type Drop struct {
	// Row and Col are 0-based positions in the raw table.
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	Month  string     `json:"month"`
	Reason DropReason `json:"reason"`
	// Raw is the offending value: the header for invalid years, the cell otherwise.
	Raw any `json:"raw,omitempty"`
}

// Series is the reshaped output for one dataset.
type Series struct {
	Dataset     string    `json:"dataset"`
	ValueColumn string    `json:"value_column"`
	ValueType   ValueType `json:"value_type"`
	// Records are ordered ascending by date.
	Records []Record `json:"records"`
	Drops   []Drop   `json:"drops,omitempty"`
}

// DropCounts tallies drops by reason.
func (s Series) DropCounts() map[DropReason]int {
	counts := make(map[DropReason]int)
	for _, d := range s.Drops {
		counts[d.Reason]++
	}
	return counts
}
