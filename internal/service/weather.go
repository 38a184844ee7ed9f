package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tourplanner/internal/config"
	"tourplanner/internal/model"
)

// forecastResponse is the subset of the Open-Meteo forecast we read
type forecastResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		WindSpeed   *float64 `json:"windspeed"`
		WeatherCode *int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily *struct {
		PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// WeatherProvider fetches current conditions from Open-Meteo
type WeatherProvider struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewWeatherProvider creates a new weather provider
func NewWeatherProvider(cfg *config.WeatherConfig) *WeatherProvider {
	return &WeatherProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Fetch returns the current temperature and today's maximum rain probability.
// Failures wrap model.ErrWeatherFetch.
func (p *WeatherProvider) Fetch(ctx context.Context, coords model.Coordinates) (*model.WeatherReport, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	params.Set("current_weather", "true")
	params.Set("daily", "precipitation_probability_max")
	params.Set("timezone", "auto")

	reqURL := fmt.Sprintf("%s/v1/forecast?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", model.ErrWeatherFetch, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrWeatherFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", model.ErrWeatherFetch, resp.StatusCode, string(body))
	}

	var forecast forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", model.ErrWeatherFetch, err)
	}

	return buildWeatherReport(&forecast), nil
}

func buildWeatherReport(f *forecastResponse) *model.WeatherReport {
	report := &model.WeatherReport{}

	if cw := f.CurrentWeather; cw != nil {
		report.TemperatureC = cw.Temperature
		report.WindSpeedKmh = cw.WindSpeed
		report.WeatherCode = cw.WeatherCode
		if cw.WeatherCode != nil {
			report.Description = model.DescribeWeatherCode(*cw.WeatherCode)
		}
	}

	// Missing, empty or null daily series means no rain expected
	if f.Daily != nil && len(f.Daily.PrecipitationProbabilityMax) > 0 {
		if first := f.Daily.PrecipitationProbabilityMax[0]; first != nil {
			report.RainProbabilityPct = int(math.Round(*first))
		}
	}

	return report
}
