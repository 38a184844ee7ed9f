package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"tourplanner/internal/app"
	"tourplanner/internal/config"
	"tourplanner/internal/model"
)

var version = "dev"

// Planner answers a single travel query
type Planner interface {
	Plan(ctx context.Context, query string) (*model.Result, error)
}

// plannerFactory builds the planner used by commands. The returned func
// releases its resources.
var plannerFactory = func(ctx context.Context) (Planner, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	application, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return application.Planner, application.Close, nil
}

var rootCmd = &cobra.Command{
	Use:   "tourplan",
	Short: "Plan a trip from a free-text request",
	Long: `tourplan reads a travel request such as "weather and sights in Lisbon",
finds the destination and reports the current weather and top attractions.`,
	SilenceUsage: true,
}

// SetVersion sets the version printed by the version command
func SetVersion(v string) {
	version = v
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
