// Package tracker records when each dataset was last collected.
package tracker

import (
	"context"
	"fmt"
	"time"
)

// Store maps a dataset name to the UTC time of its last successful run.
type Store interface {
	// LastRun returns the recorded time, or ok == false when there is none.
	LastRun(ctx context.Context, name string) (t time.Time, ok bool, err error)
	// SetLastRun replaces (or creates) the entry for name.
	SetLastRun(ctx context.Context, name string, t time.Time) error
}

// ShouldUpdate reports whether a dataset is due: it has never run, or at
// least cadence has elapsed since its last run. A run exactly at the
// cadence boundary is due.
func ShouldUpdate(ctx context.Context, store Store, name string, cadence time.Duration, now time.Time) (bool, error) {
	last, ok, err := store.LastRun(ctx, name)
	if err != nil {
		return false, fmt.Errorf("read last run of %q: %w", name, err)
	}
	if !ok {
		return true, nil
	}
	return now.UTC().Sub(last.UTC()) >= cadence, nil
}

// timestampLayouts are tried in order when reading stored values. The
// zone-less layout matches timestamps written by older collectors.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp reads a stored timestamp; zone-less values are UTC.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
