package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"tourplanner/internal/config"
	"tourplanner/internal/model"
)

// nominatimPlace is one entry of a Nominatim /search response.
// Coordinates arrive as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// GeoResolver resolves place names to coordinates using Nominatim.
// Lookups are throttled and successful results cached.
type GeoResolver struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
}

// NewGeoResolver creates a new resolver
func NewGeoResolver(cfg *config.GeocodingConfig) *GeoResolver {
	rps := cfg.RequestsPerSec
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	return &GeoResolver{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache.New(ttl, 10*time.Minute),
	}
}

// Resolve returns the first Nominatim match for name.
// Any failure is reported as model.ErrCityNotFound.
func (g *GeoResolver) Resolve(ctx context.Context, name string) (*model.Location, error) {
	key := cacheKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: empty place name", model.ErrCityNotFound)
	}

	if cached, ok := g.cache.Get(key); ok {
		loc := cached.(model.Location)
		return &loc, nil
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: rate limiter: %v", model.ErrCityNotFound, name, err)
	}

	loc, err := g.search(ctx, name)
	if err != nil {
		log.Printf("⚠️  Geocoding %q failed: %v", name, err)
		return nil, fmt.Errorf("%w: %s: %v", model.ErrCityNotFound, name, err)
	}

	g.cache.SetDefault(key, *loc)
	log.Printf("📍 Located %s at (%.4f, %.4f)", name, loc.Lat, loc.Lon)
	return loc, nil
}

func (g *GeoResolver) search(ctx context.Context, name string) (*model.Location, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("format", "json")
	params.Set("limit", "1")

	reqURL := fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("no match")
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed latitude %q", places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed longitude %q", places[0].Lon)
	}

	return &model.Location{
		Coordinates: model.Coordinates{Lat: lat, Lon: lon},
		DisplayName: places[0].DisplayName,
	}, nil
}

// cacheKey normalises a place name so "Paris" and " paris " share an entry
func cacheKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
