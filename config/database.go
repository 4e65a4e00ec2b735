package config

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DSN builds the driver-specific data source name.
func (c DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}

// ConnectDatabase opens the pool and checks that the server answers.
func ConnectDatabase(c DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(c.Driver, c.DSN())
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", c.Driver)
	}

	if c.Driver == "sqlite" {
		// One connection: sqlite serialises writers anyway, and ":memory:"
		// is private to a connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(c.MaxOpenConns)
		db.SetMaxIdleConns(c.MaxIdleConns)
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping %s database", c.Driver)
	}

	log.Printf("✅ Connected to %s database", c.Driver)
	return db, nil
}

// CloseDatabase closes db and logs the outcome.
func CloseDatabase(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Printf("❌ Error closing database: %v", err)
		return
	}
	log.Println("Database connection closed")
}
