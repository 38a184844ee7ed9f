package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"tourplanner/internal/model"
)

const postgresSchema = `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS plan_logs (
		id            TEXT PRIMARY KEY,
		query         TEXT NOT NULL,
		city          TEXT,
		location      vector(2),
		wants_weather BOOLEAN NOT NULL DEFAULT false,
		wants_places  BOOLEAN NOT NULL DEFAULT false,
		outcome       TEXT NOT NULL,
		errors        JSONB,
		result        JSONB,
		took_ms       INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_plan_logs_created_at ON plan_logs (created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_plan_logs_city ON plan_logs (lower(city));
`

// PostgresRepository stores plans in PostgreSQL. Locations use a pgvector
// vector(2) column holding [lat, lon].
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SavePlan inserts a plan log entry
func (r *PostgresRepository) SavePlan(ctx context.Context, plan *model.PlanRecord) error {
	return savePlan(ctx, r.db, plan)
}

// GetPlan retrieves a plan by its ID
func (r *PostgresRepository) GetPlan(ctx context.Context, id string) (*model.PlanRecord, error) {
	return getPlan(ctx, r.db, id)
}
