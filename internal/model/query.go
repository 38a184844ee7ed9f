package model

// PlanRequest represents a travel query request
type PlanRequest struct {
	Query string `json:"query" binding:"required"`
}

// Result is the fused answer for one query. Presentation is left to callers.
type Result struct {
	ID           string          `json:"id"`
	Query        string          `json:"query"`
	City         string          `json:"city"`
	Location     *Location       `json:"location,omitempty"`
	Intent       *Intent         `json:"intent,omitempty"`
	Weather      *WeatherReport  `json:"weather,omitempty"`
	WeatherError string          `json:"weather_error,omitempty"`
	Attractions  *AttractionList `json:"attractions,omitempty"`
	PlacesError  string          `json:"places_error,omitempty"`
	Errors       []ErrorTag      `json:"errors"`
	Took         int64           `json:"took_ms"`
}

// HasError reports whether the given section was degraded
func (r *Result) HasError(tag ErrorTag) bool {
	for _, t := range r.Errors {
		if t == tag {
			return true
		}
	}
	return false
}

// ErrorResponse is the body returned for fatal outcomes
type ErrorResponse struct {
	Error string `json:"error"`
}
