// Package store persists deadline types, holidays and calculations in
// PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/prazos/internal/model"
	_ "github.com/lib/pq"
)

// NewDB opens a PostgreSQL connection pool and verifies it is reachable
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS deadline_types (
		id SERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		legal_basis TEXT NOT NULL DEFAULT '',
		legal_days INTEGER NOT NULL CHECK (legal_days > 0),
		doubles_for_public_defender BOOLEAN NOT NULL DEFAULT FALSE,
		counts_in_business_days BOOLEAN NOT NULL DEFAULT FALSE,
		reading_time_days INTEGER NOT NULL CHECK (reading_time_days >= 0),
		area_of_law TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS fixed_holidays (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		month SMALLINT NOT NULL CHECK (month BETWEEN 1 AND 12),
		day SMALLINT NOT NULL CHECK (day BETWEEN 1 AND 31),
		year INTEGER NOT NULL DEFAULT 0,
		scope TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT '',
		municipality TEXT NOT NULL DEFAULT '',
		UNIQUE (scope, state, municipality, month, day, year)
	)`,
	`CREATE TABLE IF NOT EXISTS moving_holidays (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		offset_from_easter INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recess_periods (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		start_month SMALLINT NOT NULL,
		start_day SMALLINT NOT NULL,
		end_month SMALLINT NOT NULL,
		end_day SMALLINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS jurisdiction_coverage (
		state TEXT NOT NULL,
		municipality TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (state, municipality)
	)`,
	`CREATE TABLE IF NOT EXISTS seed_imports (
		file_name TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		imported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS calculations (
		id UUID PRIMARY KEY,
		case_ref TEXT NOT NULL DEFAULT '',
		deadline_type_code TEXT NOT NULL,
		state TEXT NOT NULL,
		municipality TEXT NOT NULL DEFAULT '',
		expedition_date DATE NOT NULL,
		reading_date DATE NOT NULL,
		raw_deadline_date DATE NOT NULL,
		final_deadline_date DATE NOT NULL,
		legal_days INTEGER NOT NULL,
		effective_days INTEGER NOT NULL,
		multiplier INTEGER NOT NULL,
		counting_mode TEXT NOT NULL,
		jurisdiction_incomplete BOOLEAN NOT NULL DEFAULT FALSE,
		trace JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS calculations_created_at_idx ON calculations (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS metrics (
		id SERIAL PRIMARY KEY,
		metric_name TEXT NOT NULL,
		metric_value TEXT NOT NULL,
		calculated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// civilDate drops whatever location the driver attached to a DATE column
func civilDate(t time.Time) time.Time {
	return model.Date(t.Year(), t.Month(), t.Day())
}
