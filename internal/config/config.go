package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tourplanner/internal/model"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Geocoding GeocodingConfig
	Weather   WeatherConfig
	Places    PlacesConfig
	Store     StoreConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	RequestTimeout time.Duration
}

// LLMConfig holds the intent extraction backend configuration
type LLMConfig struct {
	Provider    string // "gemini" or "openai"
	APIKey      string
	APIBase     string // empty uses the provider default
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// GeocodingConfig holds Nominatim configuration
type GeocodingConfig struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec float64
	CacheTTL       time.Duration
}

// WeatherConfig holds Open-Meteo configuration
type WeatherConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PlacesConfig holds Overpass configuration
type PlacesConfig struct {
	OverpassURL  string
	RadiusMeters int
	Timeout      time.Duration
	RulesFile    string // optional YAML override of the ranking rules
}

// StoreConfig holds plan log persistence configuration
type StoreConfig struct {
	Driver             string // none, sqlite or postgres
	DSN                string // postgres connection string
	SQLitePath         string
	MaxConnections     int
	MaxIdleConnections int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables.
// A missing LLM credential is a fatal configuration error.
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	provider := strings.ToLower(getEnv("LLM_PROVIDER", "gemini"))

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			Provider:    provider,
			APIKey:      getEnv("LLM_API_KEY", getEnv("GEMINI_API_KEY", getEnv("OPENAI_API_KEY", ""))),
			APIBase:     getEnv("LLM_API_BASE", ""),
			Model:       getEnv("LLM_MODEL", defaultModel(provider)),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		},
		Geocoding: GeocodingConfig{
			BaseURL:        getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:      getEnv("NOMINATIM_USER_AGENT", "TourPlanner/1.0"),
			Timeout:        getEnvAsDuration("NOMINATIM_TIMEOUT", 10*time.Second),
			RequestsPerSec: getEnvAsFloat("NOMINATIM_RATE", 1.0),
			CacheTTL:       getEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		},
		Weather: WeatherConfig{
			BaseURL: getEnv("OPEN_METEO_URL", "https://api.open-meteo.com"),
			Timeout: getEnvAsDuration("OPEN_METEO_TIMEOUT", 10*time.Second),
		},
		Places: PlacesConfig{
			OverpassURL:  getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
			RadiusMeters: getEnvAsInt("PLACES_RADIUS_METERS", 10000),
			Timeout:      getEnvAsDuration("OVERPASS_TIMEOUT", 30*time.Second),
			RulesFile:    getEnv("PLACES_RULES_FILE", ""),
		},
		Store: StoreConfig{
			Driver:             strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			SQLitePath:         getEnv("SQLITE_PATH", "tourplanner.db"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: LLM_API_KEY (or GEMINI_API_KEY) is not set", model.ErrConfiguration)
	}

	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("%w: unknown LLM_PROVIDER %q", model.ErrConfiguration, c.LLM.Provider)
	}

	switch c.Store.Driver {
	case "none", "sqlite":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: STORE_DRIVER=postgres requires DATABASE_URL", model.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", model.ErrConfiguration, c.Store.Driver)
	}

	if c.Places.RadiusMeters <= 0 {
		return fmt.Errorf("%w: PLACES_RADIUS_METERS must be positive", model.ErrConfiguration)
	}

	return nil
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "gemini-2.0-flash"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
