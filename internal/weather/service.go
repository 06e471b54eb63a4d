package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FetchErrorMessage is the user-facing message stored when a fetch cycle fails.
const FetchErrorMessage = "Unable to fetch weather data"

var (
	// ErrFetchFailed is returned when either request of a fetch cycle fails.
	ErrFetchFailed = errors.New("fetch pair failed")
	// ErrSuperseded is returned when a newer cycle was issued before this one settled.
	// The result of a superseded cycle never reaches the store.
	ErrSuperseded = errors.New("fetch cycle superseded")
	// ErrNoClient is returned when the service has no weather client.
	ErrNoClient = errors.New("no weather client configured")
)

// Service runs fetch cycles against a Client and publishes results to a Store.
type Service struct {
	store  Store
	client Client
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	generation uint64
	inflight   int
}

// NewService creates a new Service.
func NewService(store Store, client Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		client: client,
		logger: logger.With("component", "fetcher"),
		now:    time.Now,
	}
}

// Fetch runs one fetch cycle for loc: current conditions and forecast are requested concurrently
// and both must succeed. On success both snapshots are replaced and the error is cleared; on failure
// the fixed error message is stored and previous snapshots are kept.
func (s *Service) Fetch(ctx context.Context, loc Location) error {
	if s.client == nil {
		return ErrNoClient
	}

	cycleID := uuid.NewString()
	gen := s.begin()
	defer s.finish()

	log := s.logger.With("cycle", cycleID, "city", loc.Label)
	log.Debug("fetch cycle started",
		"lat", loc.Coordinates.Latitude,
		"lon", loc.Coordinates.Longitude,
		"generation", gen,
	)

	var (
		wg          sync.WaitGroup
		current     Reading
		forecast    Reading
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = s.client.CurrentConditions(ctx, loc.Coordinates)
		if currentErr != nil {
			currentErr = fmt.Errorf("current conditions: %w", currentErr)
		}
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = s.client.Forecast(ctx, loc.Coordinates)
		if forecastErr != nil {
			forecastErr = fmt.Errorf("forecast: %w", forecastErr)
		}
	}()
	wg.Wait()

	err := errors.Join(currentErr, forecastErr)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		log.Debug("discarding superseded fetch cycle", "generation", gen, "latest", s.generation, "error", err)
		return ErrSuperseded
	}

	if err != nil {
		log.Error("fetch cycle failed", "provider", s.client.Name(), "error", err)
		s.store.SetError(FetchErrorMessage)
		return fmt.Errorf("%w for %s: %w", ErrFetchFailed, loc.Label, err)
	}

	fetchedAt := s.now().UTC()
	cycle := Cycle{
		ID:        cycleID,
		Location:  loc,
		FetchedAt: fetchedAt,
		Current: Snapshot{
			CycleID:   cycleID,
			City:      loc.Label,
			Location:  loc,
			Provider:  current.Provider,
			FetchedAt: fetchedAt,
			Body:      current.Body,
			Summary:   current.Summary,
		},
		Forecast: Snapshot{
			CycleID:   cycleID,
			City:      loc.Label,
			Location:  loc,
			Provider:  forecast.Provider,
			FetchedAt: fetchedAt,
			Body:      forecast.Body,
			Daily:     DailyOutlook(forecast.Entries),
		},
	}
	s.store.SaveCycle(cycle)

	log.Info("fetch cycle completed", "provider", s.client.Name(), "forecastDays", len(cycle.Forecast.Daily))
	return nil
}

// begin opens a cycle: it takes the next generation and raises the loading flag.
func (s *Service) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.inflight++
	s.store.SetLoading(true)
	return s.generation
}

// finish closes a cycle; loading drops once no cycle is outstanding.
func (s *Service) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight--
	if s.inflight == 0 {
		s.store.SetLoading(false)
	}
}

// View delegates to the underlying store.
func (s *Service) View() View {
	return s.store.View()
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(label string) (Cycle, error) {
	return s.store.GetLatest(label)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(label string, from, to time.Time) ([]Cycle, error) {
	return s.store.GetRange(label, from, to)
}
