package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tourplanner/internal/config"
	"tourplanner/internal/model"
)

// featureFilters are the Overpass tag selectors that make up an attraction
// search. Each is applied with the same around: clause.
var featureFilters = []string{
	`["tourism"="attraction"]`,
	`["tourism"="museum"]`,
	`["tourism"="zoo"]`,
	`["historic"="monument"]`,
	`["historic"="memorial"]`,
	`["historic"="castle"]`,
	`["leisure"="park"]`,
	`["leisure"="garden"]`,
	`["amenity"="place_of_worship"]["tourism"]`,
	`["natural"="peak"]`,
	`["natural"="beach"]`,
}

// overpassResponse is the subset of an Overpass JSON response we read
type overpassResponse struct {
	Elements []struct {
		Type string            `json:"type"`
		ID   int64             `json:"id"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
	Remark string `json:"remark,omitempty"`
}

// PlacesClient retrieves raw point-of-interest candidates from Overpass
type PlacesClient struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewPlacesClient creates a new Overpass client
func NewPlacesClient(cfg *config.PlacesConfig) *PlacesClient {
	return &PlacesClient{
		endpoint: cfg.OverpassURL,
		timeout:  cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Search returns every tagged feature within radiusMeters of coords, in the
// order Overpass returned them. Failures wrap model.ErrPlacesFetch.
func (c *PlacesClient) Search(ctx context.Context, coords model.Coordinates, radiusMeters int) ([]model.Candidate, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	form := url.Values{}
	form.Set("data", BuildOverpassQuery(coords, radiusMeters))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", model.ErrPlacesFetch, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPlacesFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", model.ErrPlacesFetch, resp.StatusCode, string(body))
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", model.ErrPlacesFetch, err)
	}

	// Overpass reports query timeouts as a 200 with a remark and no elements
	if len(data.Elements) == 0 && data.Remark != "" {
		return nil, fmt.Errorf("%w: %s", model.ErrPlacesFetch, data.Remark)
	}

	candidates := make([]model.Candidate, 0, len(data.Elements))
	for _, el := range data.Elements {
		tags := el.Tags
		if tags == nil {
			tags = map[string]string{}
		}
		candidates = append(candidates, model.Candidate{
			Name: tags["name"],
			Tags: tags,
		})
	}

	return candidates, nil
}

// BuildOverpassQuery renders the attraction union query around a point
func BuildOverpassQuery(coords model.Coordinates, radiusMeters int) string {
	around := fmt.Sprintf("(around:%d,%s,%s)",
		radiusMeters,
		strconv.FormatFloat(coords.Lat, 'f', -1, 64),
		strconv.FormatFloat(coords.Lon, 'f', -1, 64),
	)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, f := range featureFilters {
		b.WriteString("  nwr")
		b.WriteString(f)
		b.WriteString(around)
		b.WriteString(";\n")
	}
	b.WriteString(");\nout center;")
	return b.String()
}
