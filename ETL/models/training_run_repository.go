package models

import (
	"database/sql"
	"fmt"
	"time"
)

// trainingRunsDDL holds the run log table definition per driver
var trainingRunsDDL = map[string]string{
	"mysql": `
	CREATE TABLE IF NOT EXISTS training_runs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL,
		start_time DATETIME(6) NOT NULL,
		end_time DATETIME(6) NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'in_progress',
		readings_extracted INT NOT NULL DEFAULT 0,
		readings_discarded INT NOT NULL DEFAULT 0,
		train_rows INT NOT NULL DEFAULT 0,
		test_rows INT NOT NULL DEFAULT 0,
		accuracy DOUBLE NOT NULL DEFAULT 0,
		error_message TEXT,
		execution_time_seconds DOUBLE NOT NULL DEFAULT 0,
		INDEX idx_training_runs_start (start_time)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	"sqlite": `
	CREATE TABLE IF NOT EXISTS training_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NULL,
		status TEXT NOT NULL DEFAULT 'in_progress',
		readings_extracted INTEGER NOT NULL DEFAULT 0,
		readings_discarded INTEGER NOT NULL DEFAULT 0,
		train_rows INTEGER NOT NULL DEFAULT 0,
		test_rows INTEGER NOT NULL DEFAULT 0,
		accuracy REAL NOT NULL DEFAULT 0,
		error_message TEXT,
		execution_time_seconds REAL NOT NULL DEFAULT 0
	);`,
}

const selectRunColumns = `
	SELECT
		id, run_id, start_time, end_time, status,
		readings_extracted, readings_discarded, train_rows, test_rows,
		accuracy, COALESCE(error_message, ''), execution_time_seconds
	FROM training_runs`

// SQLTrainingRunRepository implements TrainingRunRepository on database/sql
type SQLTrainingRunRepository struct {
	db     *sql.DB
	driver string
}

// NewSQLTrainingRunRepository creates a repository for the given driver
func NewSQLTrainingRunRepository(db *sql.DB, driver string) *SQLTrainingRunRepository {
	return &SQLTrainingRunRepository{
		db:     db,
		driver: driver,
	}
}

// CreateTrainingRunsTable creates the run log table if it does not exist
func (r *SQLTrainingRunRepository) CreateTrainingRunsTable() error {
	query, ok := trainingRunsDDL[r.driver]
	if !ok {
		return fmt.Errorf("no training_runs schema for driver %q", r.driver)
	}

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("error creating training_runs table: %w", err)
	}
	return nil
}

// CreateRunEntry opens an in_progress entry
func (r *SQLTrainingRunRepository) CreateRunEntry(runID string, startTime time.Time) (int, error) {
	result, err := r.db.Exec(`
	INSERT INTO training_runs (run_id, start_time, status)
	VALUES (?, ?, ?)`, runID, startTime.UTC(), RunStatusInProgress)
	if err != nil {
		return 0, fmt.Errorf("error creating training run entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading training run id: %w", err)
	}
	return int(id), nil
}

// UpdateRunSuccess closes an entry as successful
func (r *SQLTrainingRunRepository) UpdateRunSuccess(id int, endTime time.Time, stats RunStats) error {
	executionTime, err := r.executionSeconds(id, endTime)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
	UPDATE training_runs
	SET
		end_time = ?,
		status = ?,
		readings_extracted = ?,
		readings_discarded = ?,
		train_rows = ?,
		test_rows = ?,
		accuracy = ?,
		execution_time_seconds = ?
	WHERE id = ?`,
		endTime.UTC(),
		RunStatusSuccess,
		stats.ReadingsExtracted,
		stats.ReadingsDiscarded,
		stats.TrainRows,
		stats.TestRows,
		stats.Accuracy,
		executionTime,
		id,
	)
	if err != nil {
		return fmt.Errorf("error updating training run %d: %w", id, err)
	}
	return nil
}

// UpdateRunFailure closes an entry as failed
func (r *SQLTrainingRunRepository) UpdateRunFailure(id int, endTime time.Time, errorMessage string) error {
	executionTime, err := r.executionSeconds(id, endTime)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
	UPDATE training_runs
	SET
		end_time = ?,
		status = ?,
		error_message = ?,
		execution_time_seconds = ?
	WHERE id = ?`, endTime.UTC(), RunStatusFailed, errorMessage, executionTime, id)
	if err != nil {
		return fmt.Errorf("error updating training run %d: %w", id, err)
	}
	return nil
}

func (r *SQLTrainingRunRepository) executionSeconds(id int, endTime time.Time) (float64, error) {
	var startTime time.Time
	err := r.db.QueryRow("SELECT start_time FROM training_runs WHERE id = ?", id).Scan(&startTime)
	if err != nil {
		return 0, fmt.Errorf("error reading start time of training run %d: %w", id, err)
	}
	return endTime.Sub(startTime).Seconds(), nil
}

// GetLastSuccessfulRun returns nil when no run has succeeded yet
func (r *SQLTrainingRunRepository) GetLastSuccessfulRun() (*TrainingRun, error) {
	row := r.db.QueryRow(selectRunColumns+`
	WHERE status = ?
	ORDER BY id DESC
	LIMIT 1`, RunStatusSuccess)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading last successful training run: %w", err)
	}
	return run, nil
}

// GetRuns returns the runs started in the last days days, newest first
func (r *SQLTrainingRunRepository) GetRuns(days int) ([]TrainingRun, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := r.db.Query(selectRunColumns+`
	WHERE start_time >= ?
	ORDER BY id DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying training runs: %w", err)
	}
	defer rows.Close()

	runs := []TrainingRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning training run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training runs: %w", err)
	}
	return runs, nil
}

// DeleteRunsBefore drops entries started before cutoff
func (r *SQLTrainingRunRepository) DeleteRunsBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM training_runs WHERE start_time < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("error deleting old training runs: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s rowScanner) (*TrainingRun, error) {
	var run TrainingRun
	var endTime sql.NullTime
	err := s.Scan(
		&run.ID, &run.RunID, &run.StartTime, &endTime, &run.Status,
		&run.ReadingsExtracted, &run.ReadingsDiscarded, &run.TrainRows, &run.TestRows,
		&run.Accuracy, &run.ErrorMessage, &run.ExecutionTimeSeconds,
	)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		run.EndTime = endTime.Time
	}
	return &run, nil
}
