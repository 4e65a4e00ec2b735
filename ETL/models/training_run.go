package models

import (
	"time"
)

// Training run states
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// TrainingRun is one row of the training run log
type TrainingRun struct {
	ID                   int       `json:"id"`
	RunID                string    `json:"run_id"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time,omitempty"`
	Status               string    `json:"status"`
	ReadingsExtracted    int       `json:"readings_extracted"`
	ReadingsDiscarded    int       `json:"readings_discarded"`
	TrainRows            int       `json:"train_rows"`
	TestRows             int       `json:"test_rows"`
	Accuracy             float64   `json:"accuracy"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// RunStats are the counters a successful run reports
type RunStats struct {
	ReadingsExtracted int
	ReadingsDiscarded int
	TrainRows         int
	TestRows          int
	Accuracy          float64
}

// TrainingRunRepository persists the training run log
type TrainingRunRepository interface {
	// CreateRunEntry opens an in_progress entry
	CreateRunEntry(runID string, startTime time.Time) (int, error)

	// UpdateRunSuccess closes an entry as successful
	UpdateRunSuccess(id int, endTime time.Time, stats RunStats) error

	// UpdateRunFailure closes an entry as failed
	UpdateRunFailure(id int, endTime time.Time, errorMessage string) error

	// GetLastSuccessfulRun returns nil when no run has succeeded yet
	GetLastSuccessfulRun() (*TrainingRun, error)

	// GetRuns returns the runs started in the last days days, newest first
	GetRuns(days int) ([]TrainingRun, error)

	// DeleteRunsBefore drops entries started before cutoff
	DeleteRunsBefore(cutoff time.Time) (int64, error)
}
