package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/ukaji3/opendata-collector/pkg/collector/tracker"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, baseURL, fileName string) ([]byte, error) {
	args := m.Called(ctx, baseURL, fileName)
	content, _ := args.Get(0).([]byte)
	return content, args.Error(1)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) StoreRaw(ctx context.Context, name string, content []byte) error {
	return m.Called(ctx, name, content).Error(0)
}

func (m *mockSink) StoreFinal(ctx context.Context, name string, series models.Series) error {
	return m.Called(ctx, name, series).Error(0)
}

type failingStore struct {
	tracker.Store
	lastRunErr error
	setErr     error
}

func (s failingStore) LastRun(ctx context.Context, name string) (time.Time, bool, error) {
	if s.lastRunErr != nil {
		return time.Time{}, false, s.lastRunErr
	}
	return s.Store.LastRun(ctx, name)
}

func (s failingStore) SetLastRun(ctx context.Context, name string, t time.Time) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.Store.SetLastRun(ctx, name, t)
}

var fixedNow = time.Date(2024, time.September, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func salesWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	cells := map[string]any{
		"A1": "Auto sales",
		"A3": "Month", "B3": 2023, "C3": 2024,
		"A4": "July", "B4": 10, "C4": 20,
		"A5": "January", "B5": 30, "C5": "n/a",
	}
	for cell, value := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, value))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func dataset(name string) models.Dataset {
	return models.Dataset{
		Name:         name,
		Strategy:     models.StrategyMonthlyFiscal,
		URL:          "https://example.test/files/",
		FileName:     name + ".xlsx",
		SheetName:    "Sheet1",
		DataLocation: "A3:C5",
		TableName:    name + "_table",
		ValueColumn:  "units",
		ValueType:    models.ValueInteger,
	}
}

func catalog(t *testing.T, datasets ...models.Dataset) models.Catalog {
	t.Helper()
	c, err := models.NewCatalog(datasets...)
	require.NoError(t, err)
	return c
}

func TestRunSucceeds(t *testing.T) {
	ctx := context.Background()
	content := salesWorkbook(t)
	ds := dataset("auto_sales")

	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything, ds.URL, ds.FileName).Return(content, nil).Once()
	sink := new(mockSink)
	sink.On("StoreRaw", mock.Anything, ds.FileName, content).Return(nil).Once()
	sink.On("StoreFinal", mock.Anything, ds.TableName, mock.MatchedBy(func(s models.Series) bool {
		return len(s.Records) == 3 && len(s.Drops) == 1
	})).Return(nil).Once()
	store := tracker.NewMemoryStore()

	c := New(catalog(t, ds), fetcher, sink, store, WithClock(clock), WithRunID("run-1"))
	report := c.Run(ctx)

	assert.Equal(t, "run-1", report.RunID)
	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.Equal(t, StatusSucceeded, res.Status)
	assert.NoError(t, res.Err)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, map[models.DropReason]int{models.DropNonNumericValue: 1}, res.Drops)
	assert.Empty(t, report.Failed())

	last, ok, err := store.LastRun(ctx, ds.Name)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fixedNow, last)

	fetcher.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestRunSkipsDatasetsNotDue(t *testing.T) {
	ctx := context.Background()
	ds := dataset("auto_sales")
	store := tracker.NewMemoryStore()
	require.NoError(t, store.SetLastRun(ctx, ds.Name, fixedNow.Add(-23*time.Hour)))

	fetcher := new(mockFetcher)
	sink := new(mockSink)

	report := New(catalog(t, ds), fetcher, sink, store, WithClock(clock)).Run(ctx)

	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusNotDue, report.Results[0].Status)
	assert.NotEmpty(t, report.RunID)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
	sink.AssertNotCalled(t, "StoreRaw", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunForceIgnoresCadence(t *testing.T) {
	ctx := context.Background()
	content := salesWorkbook(t)
	ds := dataset("auto_sales")
	store := tracker.NewMemoryStore()
	require.NoError(t, store.SetLastRun(ctx, ds.Name, fixedNow.Add(-time.Hour)))

	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything, ds.URL, ds.FileName).Return(content, nil)
	sink := new(mockSink)
	sink.On("StoreRaw", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sink.On("StoreFinal", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	report := New(catalog(t, ds), fetcher, sink, store, WithClock(clock), WithForce(true)).Run(ctx)

	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusSucceeded, report.Results[0].Status)
}

func TestRunRawUploadFailureContinues(t *testing.T) {
	ctx := context.Background()
	content := salesWorkbook(t)
	ds := dataset("auto_sales")

	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything, ds.URL, ds.FileName).Return(content, nil)
	sink := new(mockSink)
	sink.On("StoreRaw", mock.Anything, ds.FileName, content).Return(errors.New("container unavailable"))
	sink.On("StoreFinal", mock.Anything, ds.TableName, mock.Anything).Return(nil).Once()
	store := tracker.NewMemoryStore()

	report := New(catalog(t, ds), fetcher, sink, store, WithClock(clock)).Run(ctx)

	res := report.Results[0]
	assert.Equal(t, StatusRawUploadFailed, res.Status)
	assert.ErrorIs(t, res.Err, ErrPersistence)
	assert.False(t, res.Status.Failed())
	assert.Empty(t, report.Failed())

	_, ok, err := store.LastRun(ctx, ds.Name)
	require.NoError(t, err)
	assert.True(t, ok, "timestamp advances when only the raw copy failed")
	sink.AssertExpectations(t)
}

func TestRunFailuresDoNotAdvanceTimestamp(t *testing.T) {
	content := salesWorkbook(t)

	tests := []struct {
		name     string
		mutate   func(*models.Dataset)
		fetchErr error
		finalErr error
		status   Status
		class    error
	}{
		{
			name:     "download",
			fetchErr: errors.New("404 Not Found"),
			status:   StatusDownloadFailed,
			class:    ErrFetch,
		},
		{
			name:   "missing sheet",
			mutate: func(d *models.Dataset) { d.SheetName = "Data" },
			status: StatusExtractionFailed,
			class:  ErrExtraction,
		},
		{
			name:   "range beyond sheet",
			mutate: func(d *models.Dataset) { d.DataLocation = "A3:Z99" },
			status: StatusExtractionFailed,
			class:  ErrExtraction,
		},
		{
			name:   "missing value column",
			mutate: func(d *models.Dataset) { d.ValueColumn = "" },
			status: StatusReshapeFailed,
			class:  ErrReshape,
		},
		{
			name:     "final upload",
			finalErr: errors.New("forbidden"),
			status:   StatusUploadFailed,
			class:    ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ds := dataset("auto_sales")
			if tt.mutate != nil {
				tt.mutate(&ds)
			}

			fetcher := new(mockFetcher)
			if tt.fetchErr != nil {
				fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.fetchErr)
			} else {
				fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(content, nil)
			}
			sink := new(mockSink)
			sink.On("StoreRaw", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			sink.On("StoreFinal", mock.Anything, mock.Anything, mock.Anything).Return(tt.finalErr)
			store := tracker.NewMemoryStore()

			report := New(catalog(t, ds), fetcher, sink, store, WithClock(clock)).Run(ctx)

			require.Len(t, report.Results, 1)
			res := report.Results[0]
			assert.Equal(t, tt.status, res.Status)
			assert.ErrorIs(t, res.Err, tt.class)
			assert.NotEmpty(t, res.Error)

			var stageErr *StageError
			require.ErrorAs(t, res.Err, &stageErr)
			assert.Equal(t, ds.Name, stageErr.Dataset)

			_, ok, err := store.LastRun(ctx, ds.Name)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Len(t, report.Failed(), 1)
		})
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	content := salesWorkbook(t)
	broken := dataset("broken")
	good := dataset("good")

	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything, broken.URL, broken.FileName).Return(nil, errors.New("timeout"))
	fetcher.On("Fetch", mock.Anything, good.URL, good.FileName).Return(content, nil)
	sink := new(mockSink)
	sink.On("StoreRaw", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sink.On("StoreFinal", mock.Anything, good.TableName, mock.Anything).Return(nil)

	report := New(catalog(t, broken, good), fetcher, sink, tracker.NewMemoryStore(), WithClock(clock)).Run(ctx)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "broken", report.Results[0].Dataset)
	assert.Equal(t, StatusDownloadFailed, report.Results[0].Status)
	assert.Equal(t, "good", report.Results[1].Dataset)
	assert.Equal(t, StatusSucceeded, report.Results[1].Status)
	assert.Equal(t, map[Status]int{StatusDownloadFailed: 1, StatusSucceeded: 1}, report.Counts())
}

func TestRunTrackerFailures(t *testing.T) {
	ctx := context.Background()
	content := salesWorkbook(t)
	ds := dataset("auto_sales")

	t.Run("lookup", func(t *testing.T) {
		fetcher := new(mockFetcher)
		sink := new(mockSink)
		store := failingStore{Store: tracker.NewMemoryStore(), lastRunErr: errors.New("table unreachable")}

		report := New(catalog(t, ds), fetcher, sink, store, WithClock(clock)).Run(ctx)

		assert.Equal(t, StatusCheckFailed, report.Results[0].Status)
		assert.ErrorIs(t, report.Results[0].Err, ErrTracking)
		fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("record", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(content, nil)
		sink := new(mockSink)
		sink.On("StoreRaw", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		sink.On("StoreFinal", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		store := failingStore{Store: tracker.NewMemoryStore(), setErr: errors.New("throttled")}

		report := New(catalog(t, ds), fetcher, sink, store, WithClock(clock)).Run(ctx)

		assert.Equal(t, StatusTrackingFailed, report.Results[0].Status)
		assert.ErrorIs(t, report.Results[0].Err, ErrTracking)
		sink.AssertExpectations(t)
	})
}

func TestRunOnly(t *testing.T) {
	ctx := context.Background()
	content := salesWorkbook(t)
	first := dataset("first")
	second := dataset("second")

	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything, second.URL, second.FileName).Return(content, nil).Once()
	sink := new(mockSink)
	sink.On("StoreRaw", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sink.On("StoreFinal", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	report := New(catalog(t, first, second), fetcher, sink, tracker.NewMemoryStore(),
		WithClock(clock), WithOnly("second", "missing")).Run(ctx)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "missing", report.Results[0].Dataset)
	assert.Equal(t, StatusUnknownDataset, report.Results[0].Status)
	assert.Equal(t, "second", report.Results[1].Dataset)
	assert.Equal(t, StatusSucceeded, report.Results[1].Status)
	fetcher.AssertExpectations(t)
}

func TestRunDataset(t *testing.T) {
	ctx := context.Background()
	ds := dataset("auto_sales")
	store := tracker.NewMemoryStore()
	require.NoError(t, store.SetLastRun(ctx, ds.Name, fixedNow))

	c := New(catalog(t, ds), new(mockFetcher), new(mockSink), store, WithClock(clock))

	res, err := c.RunDataset(ctx, ds.Name)
	require.NoError(t, err)
	assert.Equal(t, StatusNotDue, res.Status)

	_, err = c.RunDataset(ctx, "nope")
	assert.Error(t, err)
}

func TestStageErrorMatchesClass(t *testing.T) {
	cause := errors.New("boom")
	err := NewStageError("auto_sales", StageStoreFinal, cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrFetch)
	assert.Equal(t, `dataset "auto_sales": store_final: boom`, err.Error())
}
