package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourplanner/internal/config"
	"tourplanner/internal/model"
)

func newTestGeoResolver(url string) *GeoResolver {
	return NewGeoResolver(&config.GeocodingConfig{
		BaseURL:   url,
		UserAgent: "TourPlannerTest/1.0",
		Timeout:   2 * time.Second,
		CacheTTL:  time.Minute,
	})
}

func TestGeoResolver_Resolve(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "TourPlannerTest/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat": "48.8588897", "lon": "2.3200410", "display_name": "Paris, France"}]`))
	}))
	defer srv.Close()

	geo := newTestGeoResolver(srv.URL)

	loc, err := geo.Resolve(context.Background(), "Paris")
	require.NoError(t, err)
	assert.InDelta(t, 48.8588897, loc.Lat, 1e-9)
	assert.InDelta(t, 2.3200410, loc.Lon, 1e-9)
	assert.Equal(t, "Paris, France", loc.DisplayName)

	// Second lookup with different spacing and case is served from cache
	again, err := geo.Resolve(context.Background(), "  paris ")
	require.NoError(t, err)
	assert.Equal(t, loc, again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeoResolver_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"no match", http.StatusOK, `[]`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"malformed latitude", http.StatusOK, `[{"lat": "north", "lon": "2.3"}]`},
		{"not JSON", http.StatusOK, `<html></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			loc, err := newTestGeoResolver(srv.URL).Resolve(context.Background(), "Atlantis")
			assert.Nil(t, loc)
			assert.ErrorIs(t, err, model.ErrCityNotFound)
		})
	}
}

func TestGeoResolver_FailureNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	geo := newTestGeoResolver(srv.URL)
	_, err1 := geo.Resolve(context.Background(), "Atlantis")
	_, err2 := geo.Resolve(context.Background(), "Atlantis")

	assert.ErrorIs(t, err1, model.ErrCityNotFound)
	assert.ErrorIs(t, err2, model.ErrCityNotFound)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeoResolver_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestGeoResolver(url).Resolve(context.Background(), "Paris")
	assert.ErrorIs(t, err, model.ErrCityNotFound)
}

func TestGeoResolver_EmptyName(t *testing.T) {
	_, err := newTestGeoResolver("http://127.0.0.1:0").Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, model.ErrCityNotFound)
}
