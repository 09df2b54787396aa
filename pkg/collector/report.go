package collector

import (
	"time"

	"github.com/ukaji3/opendata-collector/pkg/collector/models"
)

// Status is the outcome of one dataset in a run.
type Status string

const (
	StatusSucceeded        Status = "succeeded"
	StatusNotDue           Status = "not_due"
	StatusDownloadFailed   Status = "download_failed"
	StatusExtractionFailed Status = "extraction_failed"
	StatusReshapeFailed    Status = "reshape_failed"
	StatusUploadFailed     Status = "upload_failed"
	// StatusRawUploadFailed means the raw copy was lost but the series was
	// stored and the timestamp advanced.
	StatusRawUploadFailed Status = "raw_upload_failed"
	// StatusTrackingFailed means the series was stored but the timestamp
	// was not written, so the dataset runs again next time.
	StatusTrackingFailed Status = "tracking_failed"
	StatusCheckFailed    Status = "check_failed"
	StatusUnknownDataset Status = "unknown_dataset"
)

// Failed reports whether the dataset did not reach its final store or
// could not be considered at all.
func (s Status) Failed() bool {
	switch s {
	case StatusSucceeded, StatusNotDue, StatusRawUploadFailed:
		return false
	}
	return true
}

// Result describes what happened to one dataset.
type Result struct {
	Dataset  string                   `json:"dataset"`
	Status   Status                   `json:"status"`
	Err      error                    `json:"-"`
	Error    string                   `json:"error,omitempty"`
	Records  int                      `json:"records"`
	Drops    map[models.DropReason]int `json:"drops,omitempty"`
	Duration time.Duration            `json:"duration"`
}

func (r *Result) fail(status Status, err error) {
	r.Status = status
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

// Report is the outcome of one Run.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Results    []Result  `json:"results"`
}

// Failed returns the results whose status is a failure.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Status.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Counts tallies results by status.
func (r Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Result returns the result for the named dataset.
func (r Report) Result(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Dataset == name {
			return res, true
		}
	}
	return Result{}, false
}
