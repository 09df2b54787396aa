// Package config loads the collector's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/ukaji3/opendata-collector/pkg/collector/parser"
	"gopkg.in/yaml.v3"
)

// StorageBackend selects where raw and processed files go.
type StorageBackend string

const (
	StorageAzure StorageBackend = "azure"
	StorageLocal StorageBackend = "local"
)

// TrackerBackend selects where last-run times are kept.
type TrackerBackend string

const (
	TrackerAzure  TrackerBackend = "azure"
	TrackerSQLite TrackerBackend = "sqlite"
	TrackerFile   TrackerBackend = "file"
	TrackerMemory TrackerBackend = "memory"
)

type Config struct {
	Fetch    FetchConfig     `yaml:"fetch"`
	Storage  StorageConfig   `yaml:"storage"`
	Tracker  TrackerConfig   `yaml:"tracker"`
	Secrets  SecretsConfig   `yaml:"secrets"`
	Datasets []DatasetConfig `yaml:"datasets"`
}

type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	MaxBytes  int64         `yaml:"max_bytes"`
}

type StorageConfig struct {
	Backend           StorageBackend `yaml:"backend"`
	RawContainer      string         `yaml:"raw_container"`
	FinalContainer    string         `yaml:"final_container"`
	LocalRawDir       string         `yaml:"local_raw_dir"`
	LocalProcessedDir string         `yaml:"local_processed_dir"`
}

type TrackerConfig struct {
	Backend TrackerBackend `yaml:"backend"`
	Table   string         `yaml:"table"`
	Path    string         `yaml:"path"`
}

type SecretsConfig struct {
	KeyVaultURL string   `yaml:"key_vault_url"`
	EnvFiles    []string `yaml:"env_files"`
}

// DatasetConfig mirrors one entry of the datasets list.
type DatasetConfig struct {
	Name                 string `yaml:"name"`
	Type                 string `yaml:"type"`
	URL                  string `yaml:"url"`
	FileName             string `yaml:"file_name"`
	SheetName            string `yaml:"sheet_name"`
	DataLocation         string `yaml:"data_location"`
	TableName            string `yaml:"table_name"`
	ValueColumn          string `yaml:"value_column"`
	ValueType            string `yaml:"value_type"`
	UpdateFrequencyHours int    `yaml:"update_frequency_hours"`
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageAzure
	}
	if c.Storage.RawContainer == "" {
		c.Storage.RawContainer = "raw-data"
	}
	if c.Storage.FinalContainer == "" {
		c.Storage.FinalContainer = "processed-data"
	}
	if c.Tracker.Backend == "" {
		c.Tracker.Backend = TrackerAzure
	}
	if c.Tracker.Table == "" {
		c.Tracker.Table = "scrapermetadata"
	}
	if c.Tracker.Path == "" {
		switch c.Tracker.Backend {
		case TrackerSQLite:
			c.Tracker.Path = "metadata_store.db"
		case TrackerFile:
			c.Tracker.Path = "metadata_store.json"
		}
	}
	if len(c.Secrets.EnvFiles) == 0 {
		c.Secrets.EnvFiles = []string{".env"}
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageAzure, StorageLocal:
	default:
		return fmt.Errorf("storage.backend must be azure or local, got %q", c.Storage.Backend)
	}
	switch c.Tracker.Backend {
	case TrackerAzure, TrackerSQLite, TrackerFile, TrackerMemory:
	default:
		return fmt.Errorf("tracker.backend must be azure, sqlite, file or memory, got %q", c.Tracker.Backend)
	}
	if c.Fetch.Timeout < 0 {
		return errors.New("fetch.timeout must not be negative")
	}
	if len(c.Datasets) == 0 {
		return errors.New("at least one dataset is required")
	}

	seen := make(map[string]bool, len(c.Datasets))
	for i, ds := range c.Datasets {
		if ds.Name == "" {
			return fmt.Errorf("datasets[%d]: name is required", i)
		}
		if seen[ds.Name] {
			return fmt.Errorf("dataset %s: duplicate name", ds.Name)
		}
		seen[ds.Name] = true
		if err := ds.validate(); err != nil {
			return fmt.Errorf("dataset %s: %w", ds.Name, err)
		}
	}
	return nil
}

// validate checks a dataset entry. A missing value_column is left to the
// reshape step so one bad entry does not stop the others.
func (d DatasetConfig) validate() error {
	if _, err := models.ParseStrategy(d.Type); err != nil {
		return err
	}
	if _, err := models.ParseValueType(d.ValueType); err != nil {
		return err
	}
	required := []struct{ field, value string }{
		{"url", d.URL},
		{"file_name", d.FileName},
		{"sheet_name", d.SheetName},
		{"data_location", d.DataLocation},
		{"table_name", d.TableName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.field)
		}
	}
	// A location without a colon may be a defined name, resolved at extraction
	if strings.Contains(d.DataLocation, ":") {
		if _, err := parser.ParseRange(d.DataLocation); err != nil {
			return err
		}
	}
	if d.UpdateFrequencyHours < 0 {
		return errors.New("update_frequency_hours must not be negative")
	}
	return nil
}

// Dataset converts the entry into its model. The entry must have passed
// validation.
func (d DatasetConfig) Dataset() models.Dataset {
	strategy, _ := models.ParseStrategy(d.Type)
	valueType, _ := models.ParseValueType(d.ValueType)
	return models.Dataset{
		Name:                 d.Name,
		Strategy:             strategy,
		URL:                  d.URL,
		FileName:             d.FileName,
		SheetName:            d.SheetName,
		DataLocation:         strings.TrimSpace(d.DataLocation),
		TableName:            d.TableName,
		ValueColumn:          d.ValueColumn,
		ValueType:            valueType,
		UpdateFrequencyHours: d.UpdateFrequencyHours,
	}
}

// Catalog builds the immutable dataset catalog.
func (c *Config) Catalog() (models.Catalog, error) {
	datasets := make([]models.Dataset, 0, len(c.Datasets))
	for _, d := range c.Datasets {
		datasets = append(datasets, d.Dataset())
	}
	return models.NewCatalog(datasets...)
}
