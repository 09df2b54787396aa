package transform

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukaji3/opendata-collector/pkg/collector/models"
)

// monthNumbers maps lower-cased month names to calendar months.
var monthNumbers = map[string]time.Month{
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
}

// FiscalDate returns the first day of the calendar month holding the given
// month of a fiscal year that starts in July and is labelled by the calendar
// year in which it ends.
func FiscalDate(fiscalYear int, month time.Month) time.Time {
	year := fiscalYear
	if month >= time.July {
		year--
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyFiscal melts a month × fiscal-year grid into a long series.
//
// Row 0 is the header: its first cell is a label and the remaining cells
// are fiscal years. Every following row starts with a month name. Each
// (month, year) cell becomes one record unless the month is unknown, the
// year header is not an integer, or the value is not numeric; those cells
// are listed in Series.Drops instead. Records are sorted by date.
func MonthlyFiscal(table models.RawTable, opts Options) (models.Series, error) {
	if err := opts.validate(); err != nil {
		return models.Series{}, err
	}

	series := models.Series{
		Dataset:     opts.Dataset,
		ValueColumn: opts.ValueColumn,
		ValueType:   opts.ValueType,
		Records:     []models.Record{},
	}
	if table.Rows() == 0 {
		return series, nil
	}

	cols := table.Cols()
	years := make([]int, cols)
	validYear := make([]bool, cols)
	for c := 1; c < cols; c++ {
		years[c], validYear[c] = fiscalYear(table.Cell(0, c))
	}

	for r := 1; r < table.Rows(); r++ {
		monthLabel := label(table.Cell(r, 0))
		month, knownMonth := monthNumbers[strings.ToLower(monthLabel)]

		for c := 1; c < cols; c++ {
			drop := models.Drop{Row: r, Col: c, Month: monthLabel}
			switch {
			case !validYear[c]:
				drop.Reason = models.DropInvalidFiscalYear
				drop.Raw = table.Cell(0, c)
				series.Drops = append(series.Drops, drop)
				continue
			case !knownMonth:
				drop.Reason = models.DropUnknownMonth
				drop.Raw = table.Cell(r, 0)
				series.Drops = append(series.Drops, drop)
				continue
			}

			raw := table.Cell(r, c)
			value, reason := coerceValue(raw, opts.ValueType)
			if reason != "" {
				drop.Reason = reason
				drop.Raw = raw
				series.Drops = append(series.Drops, drop)
				continue
			}

			series.Records = append(series.Records, models.Record{
				Date:  FiscalDate(years[c], month),
				Value: value,
			})
		}
	}

	slices.SortStableFunc(series.Records, func(a, b models.Record) int {
		return a.Date.Compare(b.Date)
	})
	return series, nil
}

// fiscalYear coerces a header cell to an integer year.
func fiscalYear(v any) (int, bool) {
	switch x := v.(type) {
	case int64:
		return int(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case string:
		s := strings.TrimSpace(x)
		if y, err := strconv.Atoi(s); err == nil {
			return y, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fiscalYear(f)
		}
	}
	return 0, false
}

// coerceValue parses a cell into a decimal, rounding for integer series.
// A non-empty DropReason means the cell is unusable.
func coerceValue(v any, valueType models.ValueType) (decimal.Decimal, models.DropReason) {
	var d decimal.Decimal
	switch x := v.(type) {
	case nil:
		return decimal.Zero, models.DropEmptyValue
	case int64:
		d = decimal.NewFromInt(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, models.DropNonNumericValue
		}
		d = decimal.NewFromFloat(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, models.DropEmptyValue
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, models.DropNonNumericValue
		}
		d = parsed
	default:
		return decimal.Zero, models.DropNonNumericValue
	}

	if valueType == models.ValueInteger {
		// Round rounds half away from zero
		d = d.Round(0)
	}
	return d, ""
}

func label(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		return fmt.Sprint(x)
	}
}
