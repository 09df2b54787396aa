// Package credentials resolves secrets such as storage connection strings
// from an ordered list of sources.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ErrNotFound indicates no source holds the requested key.
var ErrNotFound = errors.New("credential not found")

// Source is one place secrets can come from.
type Source interface {
	Name() string
	// Lookup returns ok == false when the source does not hold key.
	Lookup(ctx context.Context, key string) (value string, ok bool, err error)
}

// Provider asks its sources in order and returns the first hit. A source
// that fails is logged and skipped so a vault outage falls back to the
// environment.
type Provider struct {
	sources []Source
	logger  *zap.Logger
}

// NewProvider builds a provider over sources, tried in the given order.
func NewProvider(logger *zap.Logger, sources ...Source) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{sources: sources, logger: logger}
}

// Get resolves key.
func (p *Provider) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for _, src := range p.sources {
		value, ok, err := src.Lookup(ctx, key)
		if err != nil {
			p.logger.Warn("credential source failed",
				zap.String("source", src.Name()),
				zap.String("key", key),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if ok && value != "" {
			p.logger.Debug("credential resolved", zap.String("source", src.Name()), zap.String("key", key))
			return value, nil
		}
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %s (%w)", ErrNotFound, key, errors.Join(errs...))
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, key)
}

// GetFirst resolves the first of keys any source holds, e.g. a specific
// connection string before the shared fallback.
func (p *Provider) GetFirst(ctx context.Context, keys ...string) (string, error) {
	for _, key := range keys {
		value, err := p.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: none of %v", ErrNotFound, keys)
}

// EnvSource reads the process environment.
type EnvSource struct{}

func (EnvSource) Name() string { return "env" }

func (EnvSource) Lookup(_ context.Context, key string) (string, bool, error) {
	value, ok := os.LookupEnv(key)
	return value, ok, nil
}

// DotEnvSource reads KEY=value files without touching the environment.
// Missing files are ignored.
type DotEnvSource struct {
	values map[string]string
}

// NewDotEnvSource parses the given files; later files do not override
// earlier ones.
func NewDotEnvSource(files ...string) (*DotEnvSource, error) {
	values := make(map[string]string)
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		parsed, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range parsed {
			if _, seen := values[k]; !seen {
				values[k] = v
			}
		}
	}
	return &DotEnvSource{values: values}, nil
}

func (s *DotEnvSource) Name() string { return "dotenv" }

func (s *DotEnvSource) Lookup(_ context.Context, key string) (string, bool, error) {
	value, ok := s.values[key]
	return value, ok, nil
}

// StaticSource serves fixed values, typically from configuration.
type StaticSource map[string]string

func (StaticSource) Name() string { return "static" }

func (s StaticSource) Lookup(_ context.Context, key string) (string, bool, error) {
	value, ok := s[key]
	return value, ok, nil
}
