// Package output serialises series and inspection results.
package output

import (
	"bytes"
	"encoding/csv"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukaji3/opendata-collector/pkg/collector/models"
)

// CSVHeader is the header row of a processed series file.
var CSVHeader = []string{"date", "value"}

// WriteCSV writes the series as "date,value" rows with ISO-8601 dates.
func WriteCSV(w io.Writer, series models.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range series.Records {
		row := []string{
			r.Date.Format(time.DateOnly),
			FormatValue(r.Value, series.ValueType),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToCSV renders the series into a byte slice.
func ToCSV(series models.Series) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, series); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatValue prints integer series as whole numbers and decimal series
// with at least one fractional digit (10 → "10.0", 10.25 → "10.25").
func FormatValue(v decimal.Decimal, valueType models.ValueType) string {
	if valueType == models.ValueInteger {
		return v.StringFixed(0)
	}
	if v.IsInteger() {
		return v.StringFixed(1)
	}
	return v.String()
}
