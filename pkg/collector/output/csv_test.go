package output

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/opendata-collector/pkg/collector/models"
)

func day(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestToCSVDecimal(t *testing.T) {
	series := models.Series{
		ValueType: models.ValueDecimal,
		Records: []models.Record{
			{Date: day(2022, time.July), Value: decimal.NewFromInt(10)},
			{Date: day(2023, time.January), Value: decimal.RequireFromString("30.25")},
		},
	}

	out, err := ToCSV(series)
	require.NoError(t, err)
	assert.Equal(t, "date,value\n2022-07-01,10.0\n2023-01-01,30.25\n", string(out))
}

func TestToCSVInteger(t *testing.T) {
	series := models.Series{
		ValueType: models.ValueInteger,
		Records: []models.Record{
			{Date: day(2024, time.January), Value: decimal.NewFromInt(42)},
		},
	}

	out, err := ToCSV(series)
	require.NoError(t, err)
	assert.Equal(t, "date,value\n2024-01-01,42\n", string(out))
}

func TestToCSVEmpty(t *testing.T) {
	out, err := ToCSV(models.Series{ValueType: models.ValueDecimal})
	require.NoError(t, err)
	assert.Equal(t, "date,value\n", string(out))
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(models.Area{R1: 1, C1: 2, R2: 3, C2: 4}, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"r1":1,"c1":2,"r2":3,"c2":4}`, string(out))
}
