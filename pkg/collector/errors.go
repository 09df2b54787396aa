package collector

import (
	"errors"
	"fmt"
)

// Failure classes of a dataset run. A *StageError matches the class of its
// stage with errors.Is.
var (
	// ErrFetch indicates the download failed or returned a non-2xx status.
	ErrFetch = errors.New("fetch failed")
	// ErrExtraction indicates the workbook, sheet or range was unusable.
	ErrExtraction = errors.New("extraction failed")
	// ErrReshape indicates the dataset configuration could not drive the reshape.
	ErrReshape = errors.New("reshape failed")
	// ErrPersistence indicates a storage write failed.
	ErrPersistence = errors.New("persistence failed")
	// ErrTracking indicates the last-run store could not be read or written.
	ErrTracking = errors.New("tracking failed")
)

// Stage names a step of the per-dataset pipeline.
type Stage string

const (
	StageCheck      Stage = "check"
	StageFetch      Stage = "fetch"
	StageStoreRaw   Stage = "store_raw"
	StageExtract    Stage = "extract"
	StageReshape    Stage = "reshape"
	StageStoreFinal Stage = "store_final"
	StageTrack      Stage = "track"
)

func (s Stage) class() error {
	switch s {
	case StageFetch:
		return ErrFetch
	case StageExtract:
		return ErrExtraction
	case StageReshape:
		return ErrReshape
	case StageStoreRaw, StageStoreFinal:
		return ErrPersistence
	default:
		return ErrTracking
	}
}

// StageError represents a failure of one pipeline stage for one dataset.
type StageError struct {
	Dataset string
	Stage   Stage
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("dataset %q: %s: %v", e.Dataset, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the failure class of the stage.
func (e *StageError) Is(target error) bool {
	return target == e.Stage.class()
}

// NewStageError creates a new StageError.
func NewStageError(dataset string, stage Stage, err error) *StageError {
	return &StageError{
		Dataset: dataset,
		Stage:   stage,
		Err:     err,
	}
}
