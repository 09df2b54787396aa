package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreadableWorkbook indicates the bytes are not a readable xlsx document.
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
	// ErrSheetNotFound indicates the requested sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrInvalidRange indicates the range string cannot be parsed.
	ErrInvalidRange = errors.New("invalid range")
	// ErrOutOfBounds indicates the range reaches past the sheet's used area.
	ErrOutOfBounds = errors.New("range outside sheet bounds")
)

// RangeError represents a failure to cut a range out of a sheet.
type RangeError struct {
	Sheet string
	Range string
	Err   error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("extract %q from sheet %q: %v", e.Range, e.Sheet, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

func newRangeError(sheet, rng string, err error) *RangeError {
	return &RangeError{Sheet: sheet, Range: rng, Err: err}
}
