package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tourplanner/internal/model"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Plan a trip from a travel request",
	Long: `Extracts the destination from the request, then reports the current
weather and/or the top attractions depending on what was asked.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	planner, closeFn, err := plannerFactory(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	result, err := planner.Plan(ctx, query)
	if err != nil {
		return planError(err)
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printResult(cmd, result)
	return nil
}

// planError turns a fatal plan error into the message shown to the user
func planError(err error) error {
	switch {
	case errors.Is(err, model.ErrIntentParse):
		return errors.New("could not understand the query or find a city")
	case errors.Is(err, model.ErrCityNotFound):
		return fmt.Errorf("unknown city: %w", err)
	default:
		return fmt.Errorf("plan failed: %w", err)
	}
}

func printResult(cmd *cobra.Command, r *model.Result) {
	cmd.Printf("✅ I found %s!\n", r.City)

	if r.Intent != nil && r.Intent.WantsWeather {
		switch {
		case r.Weather != nil:
			cmd.Printf("   -> %s\n", describeWeather(r.City, r.Weather))
		case r.WeatherError != "":
			cmd.Printf("   -> Weather unavailable: %s\n", r.WeatherError)
		}
	}

	if r.Intent != nil && r.Intent.WantsPlaces {
		switch {
		case r.Attractions != nil && r.Attractions.Empty():
			cmd.Printf("   -> Top Attractions: %s\n", r.Attractions.Message)
		case r.Attractions != nil:
			cmd.Printf("   -> Top Attractions: %s\n", strings.Join(r.Attractions.Names, ", "))
		case r.PlacesError != "":
			cmd.Printf("   -> Attractions unavailable: %s\n", r.PlacesError)
		}
	}
}

func describeWeather(city string, w *model.WeatherReport) string {
	temp := "unknown"
	if w.TemperatureC != nil {
		temp = fmt.Sprintf("%g°C", *w.TemperatureC)
	}
	s := fmt.Sprintf("In %s it's currently %s with a %d%% chance of rain", city, temp, w.RainProbabilityPct)
	if w.Description != "" {
		s += " (" + strings.ToLower(w.Description) + ")"
	}
	return s + "."
}
