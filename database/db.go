// database/db.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/LilVoxy/water_quality/config"
)

// Open connects with the configured driver and makes sure the readings
// table exists.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	store := NewStore(db, cfg.Driver)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// readingsDDL holds the readings table definition per driver.
var readingsDDL = map[string]string{
	"mysql": `
	CREATE TABLE IF NOT EXISTS readings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		device_id VARCHAR(64) NOT NULL DEFAULT '',
		turb_idx DOUBLE NOT NULL,
		chl_ratio DOUBLE NOT NULL,
		bg_ratio DOUBLE NOT NULL,
		quality VARCHAR(16) NOT NULL DEFAULT '',
		ph DOUBLE NULL,
		temperature DOUBLE NULL,
		voltage DOUBLE NULL,
		status VARCHAR(32) NOT NULL DEFAULT '',
		created_at DATETIME(6) NOT NULL,
		INDEX idx_readings_created_at (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	"sqlite": `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id TEXT NOT NULL DEFAULT '',
		turb_idx REAL NOT NULL,
		chl_ratio REAL NOT NULL,
		bg_ratio REAL NOT NULL,
		quality TEXT NOT NULL DEFAULT '',
		ph REAL,
		temperature REAL,
		voltage REAL,
		status TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);`,
}

// EnsureSchema creates the readings table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl, ok := readingsDDL[s.driver]
	if !ok {
		return fmt.Errorf("no readings schema for driver %q", s.driver)
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("error creating readings table: %w", err)
	}
	log.Println("✅ Readings table checked")
	return nil
}

// DB exposes the pool for repositories that share the connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver is the configured driver name.
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Close() error {
	return s.db.Close()
}
