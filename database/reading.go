// database/reading.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/water_quality/quality"
)

// StoredReading is a row of the readings table. Quality holds the label the
// served model predicted at ingestion time; it is empty when no model was
// loaded. The boat telemetry fields are optional and never reach the model.
type StoredReading struct {
	ID       int64  `json:"id"`
	DeviceID string `json:"device_id,omitempty"`
	quality.Reading
	Quality     quality.Label `json:"quality,omitempty"`
	PH          *float64      `json:"ph,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Voltage     *float64      `json:"voltage,omitempty"`
	Status      string        `json:"status,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Store reads and writes sensor readings.
type Store struct {
	db     *sql.DB
	driver string
}

// NewStore wraps an open pool. driver selects the DDL dialect.
func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// SaveReading inserts r and returns its id. A zero CreatedAt is set to now.
func (s *Store) SaveReading(ctx context.Context, r StoredReading) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
	INSERT INTO readings (device_id, turb_idx, chl_ratio, bg_ratio, quality, ph, temperature, voltage, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.DeviceID, r.TurbIdx, r.ChlRatio, r.BgRatio, string(r.Quality),
		r.PH, r.Temperature, r.Voltage, r.Status, r.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting reading: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading inserted id: %w", err)
	}
	return id, nil
}

// RecentReadings returns up to limit readings, newest first.
func (s *Store) RecentReadings(ctx context.Context, limit int) ([]StoredReading, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, device_id, turb_idx, chl_ratio, bg_ratio, quality, ph, temperature, voltage, status, created_at
	FROM readings
	ORDER BY id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recent readings: %w", err)
	}
	defer rows.Close()

	readings := make([]StoredReading, 0, limit)
	for rows.Next() {
		var r StoredReading
		var label string
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.TurbIdx, &r.ChlRatio, &r.BgRatio, &label,
			&r.PH, &r.Temperature, &r.Voltage, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning reading: %w", err)
		}
		r.Quality = quality.Label(label)
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating readings: %w", err)
	}
	return readings, nil
}

// ReadingsForTraining returns every stored reading in insertion order. The
// order is part of the training contract: the seeded split is only
// reproducible over the same row order.
func (s *Store) ReadingsForTraining(ctx context.Context) ([]quality.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT turb_idx, chl_ratio, bg_ratio
	FROM readings
	ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying readings: %w", err)
	}
	defer rows.Close()

	var readings []quality.Reading
	for rows.Next() {
		var r quality.Reading
		if err := rows.Scan(&r.TurbIdx, &r.ChlRatio, &r.BgRatio); err != nil {
			return nil, fmt.Errorf("error scanning reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating readings: %w", err)
	}
	return readings, nil
}

// CountReadings returns the number of stored readings.
func (s *Store) CountReadings(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting readings: %w", err)
	}
	return n, nil
}
