package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tourplanner/internal/model"
	"tourplanner/internal/repository"
)

const (
	tracerName     = "tourplanner/planner"
	outcomeOK      = "ok"
	storeTimeout   = 5 * time.Second
	defaultRadiusM = 10000
)

// IntentSource extracts an Intent from a free-text query
type IntentSource interface {
	Extract(ctx context.Context, query string) (*model.Intent, error)
}

// Geocoder resolves a place name to a location
type Geocoder interface {
	Resolve(ctx context.Context, name string) (*model.Location, error)
}

// WeatherSource fetches current conditions at a point
type WeatherSource interface {
	Fetch(ctx context.Context, coords model.Coordinates) (*model.WeatherReport, error)
}

// AttractionSource returns ranked attractions around a point
type AttractionSource interface {
	Rank(ctx context.Context, coords model.Coordinates, radiusMeters int) (*model.AttractionList, error)
}

// PlanEventCallback is called for streaming plan events
type PlanEventCallback func(event string, data any) error

// PlannerService runs the intent -> geocode -> weather/attractions pipeline
type PlannerService struct {
	intent  IntentSource
	geo     Geocoder
	weather WeatherSource
	places  AttractionSource
	store   repository.PlanStore // optional
	radius  int
	tracer  trace.Tracer
	pending sync.WaitGroup
}

// NewPlannerService creates a new planner. store may be nil.
func NewPlannerService(
	intent IntentSource,
	geo Geocoder,
	weather WeatherSource,
	places AttractionSource,
	store repository.PlanStore,
	radiusMeters int,
) *PlannerService {
	if radiusMeters <= 0 {
		radiusMeters = defaultRadiusM
	}
	return &PlannerService{
		intent:  intent,
		geo:     geo,
		weather: weather,
		places:  places,
		store:   store,
		radius:  radiusMeters,
		tracer:  otel.Tracer(tracerName),
	}
}

// Plan answers a travel query. Intent and geocoding failures are returned as
// errors wrapping model.ErrIntentParse or model.ErrCityNotFound; weather and
// attraction failures are reported inside the Result.
func (s *PlannerService) Plan(ctx context.Context, query string) (*model.Result, error) {
	return s.run(ctx, query, nil)
}

// PlanStream is Plan with progress events: parsing, intent, location,
// weather and attractions. A failed weather or attraction lookup is still
// emitted, with an {"error": ...} payload. A callback error aborts the plan.
func (s *PlannerService) PlanStream(ctx context.Context, query string, callback PlanEventCallback) (*model.Result, error) {
	return s.run(ctx, query, callback)
}

// Store returns the configured plan store, or nil
func (s *PlannerService) Store() repository.PlanStore {
	return s.store
}

// Wait blocks until pending plan log writes have finished
func (s *PlannerService) Wait() {
	s.pending.Wait()
}

func (s *PlannerService) run(ctx context.Context, query string, callback PlanEventCallback) (*model.Result, error) {
	startTime := time.Now()
	result := &model.Result{
		ID:     uuid.NewString(),
		Query:  query,
		Errors: []model.ErrorTag{},
	}

	ctx, span := s.tracer.Start(ctx, "plan", trace.WithAttributes(attribute.String("plan.id", result.ID)))
	defer span.End()

	emit := newEmitter(callback)

	if err := emit.send("parsing", map[string]any{"status": "Understanding your request..."}); err != nil {
		return nil, err
	}

	intent, err := s.extractIntent(ctx, query)
	if err != nil {
		s.finish(span, result, startTime, err)
		return nil, err
	}
	result.Intent = intent
	result.City = intent.City

	if err := emit.send("intent", intent); err != nil {
		return nil, err
	}

	loc, err := s.resolve(ctx, intent.City)
	if err != nil {
		s.finish(span, result, startTime, err)
		return nil, err
	}
	result.Location = loc

	if err := emit.send("location", loc); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	if intent.WantsWeather {
		wg.Go(func() {
			report, err := s.fetchWeather(ctx, loc.Coordinates)
			if err != nil {
				result.WeatherError = err.Error()
				_ = emit.send("weather", map[string]any{"error": result.WeatherError})
				return
			}
			result.Weather = report
			_ = emit.send("weather", report)
		})
	}
	if intent.WantsPlaces {
		wg.Go(func() {
			list, err := s.rankAttractions(ctx, loc.Coordinates)
			if err != nil {
				result.PlacesError = err.Error()
				_ = emit.send("attractions", map[string]any{"error": result.PlacesError})
				return
			}
			result.Attractions = list
			_ = emit.send("attractions", list)
		})
	}
	wg.Wait()

	// Tags are appended after the join so their order is stable
	if result.WeatherError != "" {
		result.Errors = append(result.Errors, model.ErrorTagWeather)
	}
	if result.PlacesError != "" {
		result.Errors = append(result.Errors, model.ErrorTagPlaces)
	}

	if err := emit.err(); err != nil {
		return nil, err
	}

	s.finish(span, result, startTime, nil)
	return result, nil
}

func (s *PlannerService) extractIntent(ctx context.Context, query string) (*model.Intent, error) {
	ctx, span := s.tracer.Start(ctx, "intent")
	defer span.End()

	intent, err := s.intent.Extract(ctx, query)
	if err != nil {
		recordError(span, err)
		if !errors.Is(err, model.ErrIntentParse) {
			err = errors.Join(model.ErrIntentParse, err)
		}
		return nil, err
	}
	if intent == nil || strings.TrimSpace(intent.City) == "" {
		err = fmt.Errorf("%w: empty city", model.ErrIntentParse)
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("intent.city", intent.City),
		attribute.Bool("intent.wants_weather", intent.WantsWeather),
		attribute.Bool("intent.wants_places", intent.WantsPlaces),
	)
	return intent, nil
}

func (s *PlannerService) resolve(ctx context.Context, city string) (*model.Location, error) {
	ctx, span := s.tracer.Start(ctx, "geocode", trace.WithAttributes(attribute.String("geo.city", city)))
	defer span.End()

	loc, err := s.geo.Resolve(ctx, city)
	if err != nil {
		recordError(span, err)
		if !errors.Is(err, model.ErrCityNotFound) {
			err = errors.Join(model.ErrCityNotFound, err)
		}
		return nil, err
	}
	span.SetAttributes(attribute.Float64("geo.lat", loc.Lat), attribute.Float64("geo.lon", loc.Lon))
	return loc, nil
}

func (s *PlannerService) fetchWeather(ctx context.Context, coords model.Coordinates) (*model.WeatherReport, error) {
	ctx, span := s.tracer.Start(ctx, "weather")
	defer span.End()

	report, err := s.weather.Fetch(ctx, coords)
	if err != nil {
		recordError(span, err)
		log.Printf("⚠️  Weather lookup failed: %v", err)
		return nil, err
	}
	return report, nil
}

func (s *PlannerService) rankAttractions(ctx context.Context, coords model.Coordinates) (*model.AttractionList, error) {
	ctx, span := s.tracer.Start(ctx, "attractions", trace.WithAttributes(attribute.Int("places.radius_m", s.radius)))
	defer span.End()

	list, err := s.places.Rank(ctx, coords, s.radius)
	if err != nil {
		recordError(span, err)
		log.Printf("⚠️  Attraction lookup failed: %v", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("places.count", len(list.Names)))
	return list, nil
}

// finish stamps the elapsed time, closes out the span and logs the plan
func (s *PlannerService) finish(span trace.Span, result *model.Result, startTime time.Time, fatal error) {
	result.Took = time.Since(startTime).Milliseconds()

	if fatal != nil {
		recordError(span, fatal)
		log.Printf("❌ Plan %s failed after %dms: %v", result.ID, result.Took, fatal)
	} else {
		log.Printf("✅ Plan %s for %s completed in %dms (errors: %v)", result.ID, result.City, result.Took, result.Errors)
	}

	if s.store == nil {
		return
	}

	record := newPlanRecord(result, fatal)

	// Log plan (non-blocking)
	s.pending.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := s.store.SavePlan(ctx, record); err != nil {
			log.Printf("⚠️  Failed to store plan %s: %v", record.ID, err)
		}
	})
}

// newPlanRecord converts a finished plan into its persisted form
func newPlanRecord(result *model.Result, fatal error) *model.PlanRecord {
	record := &model.PlanRecord{
		ID:        result.ID,
		Query:     result.Query,
		Outcome:   outcomeOK,
		TookMs:    int(result.Took),
		CreatedAt: time.Now().UTC(),
	}

	if result.City != "" {
		city := result.City
		record.City = &city
	}
	if result.Intent != nil {
		record.WantsWeather = result.Intent.WantsWeather
		record.WantsPlaces = result.Intent.WantsPlaces
	}
	if result.Location != nil {
		vec := pgvector.NewVector([]float32{float32(result.Location.Lat), float32(result.Location.Lon)})
		record.Location = &vec
	}
	for _, tag := range result.Errors {
		record.Errors = append(record.Errors, string(tag))
	}

	if fatal != nil {
		record.Outcome = fatalMessage(fatal)
		return record
	}

	if m, err := model.ToJSONMap(result); err == nil {
		record.Result = m
	}
	return record
}

// fatalMessage returns the user-facing text for a fatal plan error
func fatalMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrIntentParse):
		return model.ErrIntentParse.Error()
	case errors.Is(err, model.ErrCityNotFound):
		return model.ErrCityNotFound.Error()
	default:
		return err.Error()
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// emitter serialises stream callbacks coming from concurrent stages and
// remembers the first callback failure
type emitter struct {
	mu       sync.Mutex
	callback PlanEventCallback
	failed   error
}

func newEmitter(callback PlanEventCallback) *emitter {
	return &emitter{callback: callback}
}

func (e *emitter) send(event string, data any) error {
	if e.callback == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failed != nil {
		return e.failed
	}
	if err := e.callback(event, data); err != nil {
		e.failed = err
		return err
	}
	return nil
}

func (e *emitter) err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failed
}
