package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNoLocations is returned by New when the rotation is empty.
	ErrNoLocations = errors.New("scheduler: no locations configured")
	// ErrStopped is returned when starting a scheduler that was already stopped.
	ErrStopped = errors.New("scheduler: stopped")
)

// Fetcher runs one fetch cycle for a location.
type Fetcher interface {
	Fetch(ctx context.Context, loc weather.Location) error
}

// Scheduler rotates through a fixed list of locations, fetching the next one on every tick.
// A single gocron job drives the rotation; it is never restarted when the index changes.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	fetcher      Fetcher
	locations    []weather.Location
	interval     time.Duration
	cycleTimeout time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	index   int
	ctx     context.Context
	started bool
	stopped bool

	// inflight tracks dispatched fetches so Stop can wait for them.
	inflight sync.WaitGroup
}

// New creates a new Scheduler. The locations slice is copied.
func New(locations []weather.Location, interval, cycleTimeout time.Duration, fetcher Fetcher, logger *slog.Logger) (*Scheduler, error) {
	if len(locations) == 0 {
		return nil, ErrNoLocations
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		scheduler:    gocron.NewScheduler(time.UTC),
		fetcher:      fetcher,
		locations:    append([]weather.Location(nil), locations...),
		interval:     interval,
		cycleTimeout: cycleTimeout,
		logger:       logger.With("component", "scheduler"),
		ctx:          context.Background(),
	}, nil
}

// Start fetches the first location immediately, then schedules the rotation.
// ctx is the parent context of every fetch the scheduler dispatches.
// The job is registered and running before s.mu is released, so a concurrent Stop always sees it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.tick); err != nil {
		return fmt.Errorf("schedule rotation: %w", err)
	}

	s.started = true
	s.ctx = ctx
	s.dispatchLocked(s.locations[s.index], "rotation")
	s.scheduler.StartAsync()

	s.logger.Info("rotation started", "locations", len(s.locations), "interval", s.interval)
	return nil
}

// Stop cancels the rotation and waits for dispatched fetches to return.
// No fetch is dispatched once Stop has been called. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.scheduler.Stop()
	s.inflight.Wait()
	s.logger.Info("rotation stopped")
}

// Trigger fetches loc immediately without touching the rotation index or timer.
// The next tick still advances the rotation and supersedes this result.
func (s *Scheduler) Trigger(loc weather.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	s.dispatchLocked(loc, "search")
	return nil
}

// Index returns the position of the active rotation location.
func (s *Scheduler) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current returns the active rotation location.
func (s *Scheduler) Current() weather.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locations[s.index]
}

// Locations returns a copy of the rotation.
func (s *Scheduler) Locations() []weather.Location {
	return append([]weather.Location(nil), s.locations...)
}

// Interval returns the rotation period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// tick advances the rotation and fetches the new location.
func (s *Scheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.index = (s.index + 1) % len(s.locations)
	s.dispatchLocked(s.locations[s.index], "rotation")
}

// dispatchLocked runs a fetch in the background. Callers hold s.mu.
func (s *Scheduler) dispatchLocked(loc weather.Location, source string) {
	parent := s.ctx
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx := parent
		if s.cycleTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, s.cycleTimeout)
			defer cancel()
		}

		s.logger.Debug("dispatching fetch", "city", loc.Label, "source", source)
		if err := s.fetcher.Fetch(ctx, loc); err != nil {
			if errors.Is(err, weather.ErrSuperseded) {
				s.logger.Debug("fetch superseded", "city", loc.Label, "source", source)
				return
			}
			s.logger.Warn("fetch failed", "city", loc.Label, "source", source, "error", err)
		}
	}()
}
