// Package transform reshapes raw tables cut from spreadsheets into dated series.
package transform

import (
	"errors"
	"fmt"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
)

// ErrConfig indicates the dataset configuration cannot drive a reshape.
var ErrConfig = errors.New("invalid transform configuration")

// Options carries the per-dataset settings a transform needs.
type Options struct {
	Dataset     string
	ValueColumn string
	ValueType   models.ValueType
}

// OptionsFor derives transform options from a dataset.
func OptionsFor(ds models.Dataset) Options {
	return Options{
		Dataset:     ds.Name,
		ValueColumn: ds.ValueColumn,
		ValueType:   ds.ValueType,
	}
}

func (o Options) validate() error {
	if o.ValueColumn == "" {
		return fmt.Errorf("%w: dataset %q has no value column", ErrConfig, o.Dataset)
	}
	switch o.ValueType {
	case models.ValueInteger, models.ValueDecimal:
	default:
		return fmt.Errorf("%w: dataset %q has unsupported value type %q", ErrConfig, o.Dataset, o.ValueType)
	}
	return nil
}

// Reshape applies the transform selected by strategy.
func Reshape(strategy models.Strategy, table models.RawTable, opts Options) (models.Series, error) {
	switch strategy {
	case models.StrategyMonthlyFiscal:
		return MonthlyFiscal(table, opts)
	default:
		return models.Series{}, fmt.Errorf("%w: dataset %q has unsupported strategy %q", ErrConfig, opts.Dataset, strategy)
	}
}
