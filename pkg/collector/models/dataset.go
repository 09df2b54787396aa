// Package models defines data structures shared by the collector packages.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Strategy selects the transform applied to a dataset's raw table.
type Strategy string

const (
	// StrategyMonthlyFiscal melts a month × fiscal-year grid into a dated series.
	StrategyMonthlyFiscal Strategy = "monthly"
)

// ParseStrategy maps a configuration spelling onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "monthly_fiscal":
		return StrategyMonthlyFiscal, nil
	default:
		return "", fmt.Errorf("unsupported dataset type %q", s)
	}
}

// ValueType controls how values are coerced after parsing.
type ValueType string

const (
	// ValueInteger rounds values to the nearest whole number.
	ValueInteger ValueType = "integer"
	// ValueDecimal keeps values as parsed.
	ValueDecimal ValueType = "decimal"
)

// ParseValueType maps a configuration spelling onto a ValueType.
// An empty string defaults to decimal.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int":
		return ValueInteger, nil
	case "decimal", "float", "":
		return ValueDecimal, nil
	default:
		return "", fmt.Errorf("unsupported value type %q", s)
	}
}

// DefaultUpdateFrequency is used when a dataset does not set a cadence.
const DefaultUpdateFrequency = 24 * time.Hour

// Dataset describes one published spreadsheet and how to process it.
type Dataset struct {
	// Name identifies the dataset in logs and in the run tracker.
	Name string `json:"name"`
	// Strategy selects the reshape applied after extraction.
	Strategy Strategy `json:"type"`
	// URL is the directory part of the download address.
	URL string `json:"url"`
	// FileName is appended to URL and names the raw blob.
	FileName string `json:"file_name"`
	// SheetName is the sheet holding the data.
	SheetName string `json:"sheet_name"`
	// DataLocation is a range like "B5:N17" or a defined name.
	DataLocation string `json:"data_location"`
	// TableName names the processed output.
	TableName string `json:"table_name"`
	// ValueColumn names the value column of the series.
	ValueColumn string `json:"value_column"`
	// ValueType selects integer or decimal coercion.
	ValueType ValueType `json:"value_type"`
	// UpdateFrequencyHours is the minimum number of hours between runs.
	UpdateFrequencyHours int `json:"update_frequency_hours"`
}

// SourceURL returns the full download address.
func (d Dataset) SourceURL() string {
	return d.URL + d.FileName
}

// UpdateFrequency returns the cadence as a duration.
func (d Dataset) UpdateFrequency() time.Duration {
	if d.UpdateFrequencyHours <= 0 {
		return DefaultUpdateFrequency
	}
	return time.Duration(d.UpdateFrequencyHours) * time.Hour
}

// Catalog is the ordered, read-only set of configured datasets.
type Catalog struct {
	datasets []Dataset
	index    map[string]int
}

// NewCatalog builds a catalog, rejecting empty and duplicate names.
func NewCatalog(datasets ...Dataset) (Catalog, error) {
	c := Catalog{
		datasets: make([]Dataset, 0, len(datasets)),
		index:    make(map[string]int, len(datasets)),
	}
	for _, ds := range datasets {
		if ds.Name == "" {
			return Catalog{}, fmt.Errorf("dataset name is required")
		}
		if _, dup := c.index[ds.Name]; dup {
			return Catalog{}, fmt.Errorf("duplicate dataset %q", ds.Name)
		}
		c.index[ds.Name] = len(c.datasets)
		c.datasets = append(c.datasets, ds)
	}
	return c, nil
}

// Len returns the number of datasets.
func (c Catalog) Len() int {
	return len(c.datasets)
}

// All returns a copy of the datasets in configuration order.
func (c Catalog) All() []Dataset {
	out := make([]Dataset, len(c.datasets))
	copy(out, c.datasets)
	return out
}

// Lookup returns the dataset with the given name.
func (c Catalog) Lookup(name string) (Dataset, bool) {
	i, ok := c.index[name]
	if !ok {
		return Dataset{}, false
	}
	return c.datasets[i], true
}

// Names returns dataset names in configuration order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.datasets))
	for i, ds := range c.datasets {
		names[i] = ds.Name
	}
	return names
}
