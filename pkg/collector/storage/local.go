package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/ukaji3/opendata-collector/pkg/collector/output"
	"go.uber.org/zap"
)

const (
	DefaultLocalRawDir       = "local_raw"
	DefaultLocalProcessedDir = "local_processed"
)

// LocalSink writes raw documents and processed series to local directories.
type LocalSink struct {
	rawDir       string
	processedDir string
	logger       *zap.Logger
}

// NewLocalSink returns a sink writing under rawDir and processedDir.
// Empty arguments select the defaults.
func NewLocalSink(rawDir, processedDir string, logger *zap.Logger) *LocalSink {
	if rawDir == "" {
		rawDir = DefaultLocalRawDir
	}
	if processedDir == "" {
		processedDir = DefaultLocalProcessedDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalSink{rawDir: rawDir, processedDir: processedDir, logger: logger}
}

// RawPath returns where StoreRaw writes name.
func (s *LocalSink) RawPath(name string) string {
	return filepath.Join(s.rawDir, filepath.Base(name))
}

// FinalPath returns where StoreFinal writes name.
func (s *LocalSink) FinalPath(name string) string {
	return filepath.Join(s.processedDir, "processed_"+FinalName(filepath.Base(name)))
}

func (s *LocalSink) StoreRaw(_ context.Context, name string, content []byte) error {
	return s.write(s.RawPath(name), content)
}

func (s *LocalSink) StoreFinal(_ context.Context, name string, series models.Series) error {
	body, err := output.ToCSV(series)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.write(s.FinalPath(name), body)
}

func (s *LocalSink) write(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("saved file locally", zap.String("path", path), zap.Int("bytes", len(body)))
	return nil
}
