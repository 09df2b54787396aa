// Package collector runs the download, extract, reshape and store pipeline
// for each configured dataset.
package collector

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger; the default discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// WithForce processes datasets even when they are not due.
func WithForce(force bool) Option {
	return func(c *Collector) {
		c.force = force
	}
}

// WithOnly restricts Run to the named datasets. Names missing from the
// catalog are reported by Run as unknown_dataset results.
func WithOnly(names ...string) Option {
	return func(c *Collector) {
		if len(names) == 0 {
			return
		}
		c.only = make(map[string]bool, len(names))
		for _, n := range names {
			c.only[n] = true
		}
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(c *Collector) {
		c.runID = id
	}
}
