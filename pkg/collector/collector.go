package collector

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/ukaji3/opendata-collector/pkg/collector/parser"
	"github.com/ukaji3/opendata-collector/pkg/collector/tracker"
	"github.com/ukaji3/opendata-collector/pkg/collector/transform"
)

// Fetcher downloads a published workbook.
type Fetcher interface {
	Fetch(ctx context.Context, baseURL, fileName string) ([]byte, error)
}

// Sink persists the raw workbook and the reshaped series.
type Sink interface {
	StoreRaw(ctx context.Context, name string, content []byte) error
	StoreFinal(ctx context.Context, name string, series models.Series) error
}

// Collector runs the per-dataset pipeline over a catalog.
type Collector struct {
	catalog models.Catalog
	fetcher Fetcher
	sink    Sink
	store   tracker.Store

	logger *zap.Logger
	now    func() time.Time
	force  bool
	only   map[string]bool
	runID  string
}

// New creates a Collector.
func New(catalog models.Catalog, fetcher Fetcher, sink Sink, store tracker.Store, opts ...Option) *Collector {
	c := &Collector{
		catalog: catalog,
		fetcher: fetcher,
		sink:    sink,
		store:   store,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes every selected dataset in catalog order. A failing dataset
// never stops the others.
func (c *Collector) Run(ctx context.Context) Report {
	runID := c.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := c.logger.With(zap.String("run_id", runID))

	report := Report{RunID: runID, StartedAt: c.now().UTC()}
	logger.Info("Scraper run started", zap.Int("datasets", c.catalog.Len()), zap.Bool("force", c.force))

	for _, name := range slices.Sorted(maps.Keys(c.only)) {
		if _, ok := c.catalog.Lookup(name); !ok {
			res := Result{Dataset: name}
			res.fail(StatusUnknownDataset, fmt.Errorf("dataset %q is not configured", name))
			logger.Error("Unknown dataset requested", zap.String("dataset", name))
			report.Results = append(report.Results, res)
		}
	}

	for _, ds := range c.catalog.All() {
		if c.only != nil && !c.only[ds.Name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			res := Result{Dataset: ds.Name}
			res.fail(StatusCheckFailed, NewStageError(ds.Name, StageCheck, err))
			report.Results = append(report.Results, res)
			continue
		}
		report.Results = append(report.Results, c.process(ctx, ds, logger))
	}

	report.FinishedAt = c.now().UTC()
	counts := report.Counts()
	logger.Info("Scraper run finished",
		zap.Int("succeeded", counts[StatusSucceeded]+counts[StatusRawUploadFailed]),
		zap.Int("not_due", counts[StatusNotDue]),
		zap.Int("failed", len(report.Failed())),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))
	return report
}

// RunDataset processes a single dataset by name.
func (c *Collector) RunDataset(ctx context.Context, name string) (Result, error) {
	ds, ok := c.catalog.Lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("dataset %q is not configured", name)
	}
	return c.process(ctx, ds, c.logger), nil
}

func (c *Collector) process(ctx context.Context, ds models.Dataset, logger *zap.Logger) Result {
	start := c.now()
	log := logger.With(zap.String("dataset", ds.Name))
	res := Result{Dataset: ds.Name}

	if !c.force {
		due, err := tracker.ShouldUpdate(ctx, c.store, ds.Name, ds.UpdateFrequency(), start)
		if err != nil {
			log.Error("Error checking last run", zap.Error(err))
			res.fail(StatusCheckFailed, NewStageError(ds.Name, StageCheck, err))
			return finish(&res, start, c.now)
		}
		if !due {
			log.Info("No update needed")
			res.Status = StatusNotDue
			return finish(&res, start, c.now)
		}
	}

	log.Info("Downloading", zap.String("url", ds.SourceURL()))
	content, err := c.fetcher.Fetch(ctx, ds.URL, ds.FileName)
	if err != nil {
		log.Error("Failed to download file", zap.Error(err))
		res.fail(StatusDownloadFailed, NewStageError(ds.Name, StageFetch, err))
		return finish(&res, start, c.now)
	}

	var rawErr error
	if err := c.sink.StoreRaw(ctx, ds.FileName, content); err != nil {
		log.Error("Failed to upload raw data, continuing", zap.String("file", ds.FileName), zap.Error(err))
		rawErr = NewStageError(ds.Name, StageStoreRaw, err)
	}

	table, err := parser.ExtractRange(content, ds.SheetName, ds.DataLocation)
	if err != nil {
		log.Error("Failed to extract data", zap.String("sheet", ds.SheetName), zap.String("location", ds.DataLocation), zap.Error(err))
		res.fail(StatusExtractionFailed, NewStageError(ds.Name, StageExtract, err))
		return finish(&res, start, c.now)
	}

	series, err := transform.Reshape(ds.Strategy, table, transform.OptionsFor(ds))
	if err != nil {
		log.Error("Failed to transform data", zap.Error(err))
		res.fail(StatusReshapeFailed, NewStageError(ds.Name, StageReshape, err))
		return finish(&res, start, c.now)
	}
	res.Records = len(series.Records)
	if len(series.Drops) > 0 {
		res.Drops = series.DropCounts()
		log.Warn("Dropped cells while reshaping", zap.Int("dropped", len(series.Drops)), zap.Any("reasons", res.Drops))
		for _, d := range series.Drops {
			log.Debug("Dropped cell",
				zap.Int("row", d.Row), zap.Int("col", d.Col),
				zap.String("reason", string(d.Reason)), zap.Any("raw", d.Raw))
		}
	}

	if err := c.sink.StoreFinal(ctx, ds.TableName, series); err != nil {
		log.Error("Failed to upload final data", zap.String("table", ds.TableName), zap.Error(err))
		res.fail(StatusUploadFailed, NewStageError(ds.Name, StageStoreFinal, err))
		return finish(&res, start, c.now)
	}

	if err := c.store.SetLastRun(ctx, ds.Name, c.now().UTC()); err != nil {
		log.Error("Failed to record last run", zap.Error(err))
		res.fail(StatusTrackingFailed, NewStageError(ds.Name, StageTrack, err))
		return finish(&res, start, c.now)
	}

	if rawErr != nil {
		res.fail(StatusRawUploadFailed, rawErr)
	} else {
		res.Status = StatusSucceeded
	}
	log.Info("Successfully processed", zap.Int("records", res.Records))
	return finish(&res, start, c.now)
}

func finish(res *Result, start time.Time, now func() time.Time) Result {
	res.Duration = now().Sub(start)
	return *res
}
