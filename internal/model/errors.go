package model

import "errors"

// Fatal errors abort a plan before any further upstream call.
var (
	// ErrConfiguration indicates the process cannot serve requests at all.
	ErrConfiguration = errors.New("configuration error")

	// ErrIntentParse indicates the query could not be turned into an Intent.
	ErrIntentParse = errors.New("could not understand query")

	// ErrCityNotFound indicates the geocoder had no usable match.
	ErrCityNotFound = errors.New("unknown city")
)

// Non-fatal errors degrade one section of a Result.
var (
	ErrWeatherFetch = errors.New("weather fetch failed")
	ErrPlacesFetch  = errors.New("places fetch failed")
)

// ErrorTag names a degraded Result section
type ErrorTag string

const (
	ErrorTagWeather ErrorTag = "weather_fetch_error"
	ErrorTagPlaces  ErrorTag = "places_fetch_error"
)
