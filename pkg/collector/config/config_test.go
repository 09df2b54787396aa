package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/opendata-collector/pkg/collector/models"
)

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, "raw-data", cfg.Storage.RawContainer)
	assert.Equal(t, TrackerFile, cfg.Tracker.Backend)
	assert.Equal(t, "metadata_store.json", cfg.Tracker.Path)
	assert.Equal(t, []string{".env"}, cfg.Secrets.EnvFiles)

	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"auto_sales", "cement_sales"}, catalog.Names())

	auto, ok := catalog.Lookup("auto_sales")
	require.True(t, ok)
	assert.Equal(t, models.StrategyMonthlyFiscal, auto.Strategy)
	assert.Equal(t, models.ValueInteger, auto.ValueType)
	assert.Equal(t, "https://data.example.gov/edb/auto_sales.xlsx", auto.SourceURL())
	assert.Equal(t, 24*time.Hour, auto.UpdateFrequency())

	cement, ok := catalog.Lookup("cement_sales")
	require.True(t, ok)
	assert.Equal(t, models.ValueDecimal, cement.ValueType)
	assert.Equal(t, models.DefaultUpdateFrequency, cement.UpdateFrequency())
}

func TestLoadConfig_Invalid(t *testing.T) {
	base := `
datasets:
  - name: auto_sales
    type: monthly
    url: https://data.example.gov/
    file_name: auto.xlsx
    sheet_name: Sheet1
    data_location: B5:N17
    table_name: auto_sales
    value_column: units
`
	tests := map[string]string{
		"no datasets":     "storage:\n  backend: azure\n",
		"bad backend":     "storage:\n  backend: s3\n" + base,
		"bad tracker":     "tracker:\n  backend: redis\n" + base,
		"unknown type":    strings.Replace(base, "type: monthly", "type: quarterly", 1),
		"bad value type":  strings.Replace(base, "table_name: auto_sales", "table_name: auto_sales\n    value_type: text", 1),
		"missing sheet":   strings.Replace(base, "sheet_name: Sheet1", "sheet_name: \"\"", 1),
		"bad range":       strings.Replace(base, "B5:N17", "B5:17N", 1),
		"negative hours":  strings.Replace(base, "table_name: auto_sales", "table_name: auto_sales\n    update_frequency_hours: -1", 1),
		"duplicate names": base + "  - name: auto_sales\n    type: monthly\n",
		"not yaml":        "datasets: [",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingValueColumnIsAccepted(t *testing.T) {
	doc := `
datasets:
  - name: auto_sales
    type: monthly
    url: https://data.example.gov/
    file_name: auto.xlsx
    sheet_name: Sheet1
    data_location: B5:N17
    table_name: auto_sales
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, StorageAzure, cfg.Storage.Backend)
	assert.Equal(t, TrackerAzure, cfg.Tracker.Backend)
	assert.Equal(t, "", cfg.Datasets[0].ValueColumn)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load("")
	assert.Error(t, err)
}
