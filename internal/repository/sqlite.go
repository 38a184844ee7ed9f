package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"tourplanner/internal/model"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS plan_logs (
		id            TEXT PRIMARY KEY,
		query         TEXT NOT NULL,
		city          TEXT,
		location      TEXT,
		wants_weather BOOLEAN NOT NULL DEFAULT 0,
		wants_places  BOOLEAN NOT NULL DEFAULT 0,
		outcome       TEXT NOT NULL,
		errors        TEXT,
		result        TEXT,
		took_ms       INTEGER NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plan_logs_created_at ON plan_logs (created_at DESC);
`

// SQLiteRepository stores plans in a local SQLite file
type SQLiteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository opens (creating if needed) the database at path
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// SavePlan inserts a plan log entry
func (r *SQLiteRepository) SavePlan(ctx context.Context, plan *model.PlanRecord) error {
	return savePlan(ctx, r.db, plan)
}

// GetPlan retrieves a plan by its ID
func (r *SQLiteRepository) GetPlan(ctx context.Context, id string) (*model.PlanRecord, error) {
	return getPlan(ctx, r.db, id)
}

// Ensure both stores implement PlanStore
var (
	_ PlanStore = (*SQLiteRepository)(nil)
	_ PlanStore = (*PostgresRepository)(nil)
)
