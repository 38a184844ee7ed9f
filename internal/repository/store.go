package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tourplanner/internal/config"
	"tourplanner/internal/model"
)

// PlanStore persists completed plans
type PlanStore interface {
	SavePlan(ctx context.Context, plan *model.PlanRecord) error
	// GetPlan returns nil, nil when no plan has the given ID
	GetPlan(ctx context.Context, id string) (*model.PlanRecord, error)
	Close() error
}

// NewPlanStore opens the store selected by cfg.Driver.
// Driver "none" returns a nil store.
func NewPlanStore(cfg *config.StoreConfig) (PlanStore, error) {
	switch cfg.Driver {
	case "none", "":
		return nil, nil
	case "sqlite":
		repo, err := NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "postgres":
		repo, err := NewPostgresRepository(cfg.DSN, cfg.MaxConnections, cfg.MaxIdleConnections)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

const insertPlanQuery = `
	INSERT INTO plan_logs (id, query, city, location, wants_weather, wants_places, outcome, errors, result, took_ms, created_at)
	VALUES (:id, :query, :city, :location, :wants_weather, :wants_places, :outcome, :errors, :result, :took_ms, :created_at)
`

const selectPlanQuery = `
	SELECT id, query, city, location, wants_weather, wants_places, outcome, errors, result, took_ms, created_at
	FROM plan_logs
	WHERE id = ?
`

func savePlan(ctx context.Context, db *sqlx.DB, plan *model.PlanRecord) error {
	if _, err := db.NamedExecContext(ctx, insertPlanQuery, plan); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

func getPlan(ctx context.Context, db *sqlx.DB, id string) (*model.PlanRecord, error) {
	var plan model.PlanRecord
	err := db.GetContext(ctx, &plan, db.Rebind(selectPlanQuery), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}
