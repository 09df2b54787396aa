package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ukaji3/opendata-collector/pkg/collector"
	"github.com/ukaji3/opendata-collector/pkg/collector/config"
	"github.com/ukaji3/opendata-collector/pkg/collector/credentials"
	"github.com/ukaji3/opendata-collector/pkg/collector/fetch"
	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/ukaji3/opendata-collector/pkg/collector/storage"
	"github.com/ukaji3/opendata-collector/pkg/collector/tracker"
)

const (
	envConfigPath     = "COLLECTOR_CONFIG"
	defaultConfigPath = "config.yaml"

	envStorageConnection = "AZURE_STORAGE_CONNECTION_STRING"
	envRawConnection     = "AZURE_RAW_DATA_CONNECTION_STRING"
	envFinalConnection   = "AZURE_FINAL_DATA_CONNECTION_STRING"
	envTablesConnection  = "AZURE_TABLES_CONNECTION_STRING"

	localTrackerPath = "metadata_store.json"
)

// pinger is implemented by backends that can verify connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

// app holds the components built from one configuration.
type app struct {
	cfg     *config.Config
	catalog models.Catalog
	fetcher *fetch.Client
	sink    collector.Sink
	store   tracker.Store
	closers []func() error
}

// loadApp reads the configuration and builds every backend it names.
// local forces the filesystem sink and the JSON file tracker.
func loadApp(ctx context.Context, local bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if local {
		cfg.Storage.Backend = config.StorageLocal
		if cfg.Tracker.Backend != config.TrackerFile {
			cfg.Tracker.Backend = config.TrackerFile
			cfg.Tracker.Path = localTrackerPath
		}
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		catalog: catalog,
		fetcher: fetch.New(fetch.Options{
			Timeout:   cfg.Fetch.Timeout,
			MaxBytes:  cfg.Fetch.MaxBytes,
			UserAgent: cfg.Fetch.UserAgent,
			Logger:    logger,
		}),
	}

	needsSecrets := cfg.Storage.Backend == config.StorageAzure || cfg.Tracker.Backend == config.TrackerAzure
	var secrets *credentials.Provider
	if needsSecrets {
		secrets, err = newSecrets(cfg.Secrets)
		if err != nil {
			return nil, err
		}
	}

	if a.sink, err = newSink(ctx, cfg.Storage, secrets); err != nil {
		return nil, err
	}
	if err := a.openTracker(ctx, cfg.Tracker, secrets); err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded",
		zap.String("config", configPath),
		zap.Int("datasets", catalog.Len()),
		zap.String("storage", string(cfg.Storage.Backend)),
		zap.String("tracker", string(cfg.Tracker.Backend)))
	return a, nil
}

func (a *app) collector(opts ...collector.Option) *collector.Collector {
	opts = append([]collector.Option{collector.WithLogger(logger)}, opts...)
	return collector.New(a.catalog, a.fetcher, a.sink, a.store, opts...)
}

// Close releases backends that hold resources.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// newSecrets resolves secrets from the vault first, then the environment,
// then the configured dotenv files. An unreachable vault is skipped.
func newSecrets(cfg config.SecretsConfig) (*credentials.Provider, error) {
	var sources []credentials.Source
	if cfg.KeyVaultURL != "" {
		vault, err := credentials.NewKeyVaultSource(cfg.KeyVaultURL)
		if err != nil {
			logger.Warn("Key Vault unavailable, falling back to environment", zap.Error(err))
		} else {
			sources = append(sources, vault)
		}
	}
	sources = append(sources, credentials.EnvSource{})

	dotenv, err := credentials.NewDotEnvSource(cfg.EnvFiles...)
	if err != nil {
		return nil, err
	}
	sources = append(sources, dotenv)
	return credentials.NewProvider(logger, sources...), nil
}

func newSink(ctx context.Context, cfg config.StorageConfig, secrets *credentials.Provider) (collector.Sink, error) {
	if cfg.Backend == config.StorageLocal {
		return storage.NewLocalSink(cfg.LocalRawDir, cfg.LocalProcessedDir, logger), nil
	}

	rawConn, err := secrets.GetFirst(ctx, envRawConnection, envStorageConnection)
	if err != nil {
		return nil, fmt.Errorf("raw data connection string: %w", err)
	}
	finalConn, err := secrets.GetFirst(ctx, envFinalConnection, envStorageConnection)
	if err != nil {
		return nil, fmt.Errorf("final data connection string: %w", err)
	}
	return storage.NewBlobSink(rawConn, finalConn, storage.BlobOptions{
		RawContainer:   cfg.RawContainer,
		FinalContainer: cfg.FinalContainer,
		Logger:         logger,
	})
}

func (a *app) openTracker(ctx context.Context, cfg config.TrackerConfig, secrets *credentials.Provider) error {
	switch cfg.Backend {
	case config.TrackerAzure:
		conn, err := secrets.GetFirst(ctx, envTablesConnection, envStorageConnection)
		if err != nil {
			return fmt.Errorf("tables connection string: %w", err)
		}
		store, err := tracker.NewTableStore(conn, cfg.Table)
		if err != nil {
			return err
		}
		a.store = store
	case config.TrackerSQLite:
		store, err := tracker.NewSQLiteStore(cfg.Path)
		if err != nil {
			return err
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	case config.TrackerFile:
		a.store = tracker.NewFileStore(cfg.Path)
	default:
		a.store = tracker.NewMemoryStore()
	}
	return nil
}
