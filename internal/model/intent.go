package model

// Intent is the structured reading of a travel query
type Intent struct {
	City         string `json:"city"`
	WantsWeather bool   `json:"wants_weather"`
	WantsPlaces  bool   `json:"wants_places"`
}

// Coordinates are WGS84 degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is a resolved place
type Location struct {
	Coordinates
	DisplayName string `json:"display_name,omitempty"`
}
