package app

import (
	"context"
	"fmt"
	"log"

	"tourplanner/internal/config"
	"tourplanner/internal/repository"
	"tourplanner/internal/service"
)

// App holds the long-lived clients shared by the server and the CLI
type App struct {
	Config  *config.Config
	Planner *service.PlannerService
	store   repository.PlanStore
}

// New builds every client once from cfg and wires them into a planner
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	llm, err := service.NewLLMClient(ctx, &cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise LLM client: %w", err)
	}
	log.Printf("✅ LLM client initialized")
	log.Printf("   - Backend: %s", llm.Name())
	log.Printf("   - Temperature: %.2f", cfg.LLM.Temperature)

	rules, err := service.LoadRankingRules(cfg.Places.RulesFile)
	if err != nil {
		return nil, err
	}

	store, err := repository.NewPlanStore(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan store: %w", err)
	}
	if store != nil {
		log.Printf("✅ Plan store ready (%s)", cfg.Store.Driver)
	} else {
		log.Println("⚠️  Plan store disabled - plan history will not be available")
	}

	attractions := service.NewAttractionRanker(
		service.NewPlacesClient(&cfg.Places),
		service.NewRanker(rules),
	)

	planner := service.NewPlannerService(
		service.NewIntentExtractor(llm),
		service.NewGeoResolver(&cfg.Geocoding),
		service.NewWeatherProvider(&cfg.Weather),
		attractions,
		store,
		cfg.Places.RadiusMeters,
	)

	log.Println("✅ Services initialized")

	return &App{
		Config:  cfg,
		Planner: planner,
		store:   store,
	}, nil
}

// Close waits for pending plan writes and releases the store
func (a *App) Close() error {
	a.Planner.Wait()
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
