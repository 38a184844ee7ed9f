package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
)

// PlanRecord is a persisted plan log entry
type PlanRecord struct {
	ID           string           `json:"id" db:"id"`
	Query        string           `json:"query" db:"query"`
	City         *string          `json:"city,omitempty" db:"city"`
	Location     *pgvector.Vector `json:"-" db:"location"` // [lat, lon]
	WantsWeather bool             `json:"wants_weather" db:"wants_weather"`
	WantsPlaces  bool             `json:"wants_places" db:"wants_places"`
	Outcome      string           `json:"outcome" db:"outcome"` // ok, or the fatal error message
	Errors       JSONArray        `json:"errors,omitempty" db:"errors"`
	Result       JSONMap          `json:"result,omitempty" db:"result"`
	TookMs       int              `json:"took_ms" db:"took_ms"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// Coordinates returns the stored location, if any
func (p *PlanRecord) Coordinates() *Coordinates {
	if p.Location == nil {
		return nil
	}
	v := p.Location.Slice()
	if len(v) != 2 {
		return nil
	}
	return &Coordinates{Lat: float64(v[0]), Lon: float64(v[1])}
}

// MarshalJSON exposes the location as coordinates instead of a raw vector
func (p PlanRecord) MarshalJSON() ([]byte, error) {
	type alias PlanRecord
	return json.Marshal(struct {
		alias
		Location *Coordinates `json:"location,omitempty"`
	}{alias: alias(p), Location: p.Coordinates()})
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}

// JSONMap represents a JSON object field
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}

// ToJSONMap converts any JSON-serialisable value into a JSONMap
func ToJSONMap(v any) (JSONMap, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m JSONMap
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
