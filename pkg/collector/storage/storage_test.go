package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/opendata-collector/pkg/collector/models"
)

func sampleSeries() models.Series {
	return models.Series{
		Dataset:   "auto_sales",
		ValueType: models.ValueInteger,
		Records: []models.Record{
			{Date: time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(120)},
		},
	}
}

func TestLocalSink(t *testing.T) {
	dir := t.TempDir()
	sink := NewLocalSink(filepath.Join(dir, "raw"), filepath.Join(dir, "processed"), nil)
	ctx := context.Background()

	require.NoError(t, sink.StoreRaw(ctx, "auto.xlsx", []byte("PK")))
	require.NoError(t, sink.StoreFinal(ctx, "auto_sales", sampleSeries()))

	raw, err := os.ReadFile(filepath.Join(dir, "raw", "auto.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "PK", string(raw))

	final, err := os.ReadFile(filepath.Join(dir, "processed", "processed_auto_sales.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,value\n2023-07-01,120\n", string(final))
}

func TestLocalSinkKeepsNamesInsideDirs(t *testing.T) {
	sink := NewLocalSink("", "", nil)
	assert.Equal(t, filepath.Join(DefaultLocalRawDir, "evil.xlsx"), sink.RawPath("../../evil.xlsx"))
	assert.Equal(t, filepath.Join(DefaultLocalProcessedDir, "processed_t.csv"), sink.FinalPath("t"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentType("auto.XLSX"))
	assert.Equal(t, "application/vnd.ms-excel", contentType("old.xls"))
	assert.Equal(t, "application/octet-stream", contentType("README"))
}

// TestBlobSinkAzurite runs against a real or emulated account when
// COLLECTOR_TEST_STORAGE_CONNECTION_STRING is set (for example Azurite's
// UseDevelopmentStorage=true).
func TestBlobSinkAzurite(t *testing.T) {
	conn := os.Getenv("COLLECTOR_TEST_STORAGE_CONNECTION_STRING")
	if conn == "" {
		t.Skip("COLLECTOR_TEST_STORAGE_CONNECTION_STRING not set")
	}

	sink, err := NewBlobSink(conn, conn, BlobOptions{
		RawContainer:   "test-raw",
		FinalContainer: "test-processed",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Ping(ctx))
	require.NoError(t, sink.StoreRaw(ctx, "auto.xlsx", []byte("PK")))
	require.NoError(t, sink.StoreFinal(ctx, "auto_sales", sampleSeries()))
	// second upload overwrites and the container already exists
	require.NoError(t, sink.StoreFinal(ctx, "auto_sales", sampleSeries()))
}
