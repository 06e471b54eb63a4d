package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// CycleHistory holds a time-ordered list of successful fetch cycles for a location.
type CycleHistory struct {
	Cycles []weather.Cycle
}

// MemoryStore is a concurrency-safe in-memory presentation state.
// It keeps the latest current/forecast snapshots, the loading/error status,
// and a bounded history of successful cycles per location.
type MemoryStore struct {
	mu sync.RWMutex

	current   *weather.Snapshot
	forecast  *weather.Snapshot
	status    weather.Status
	updatedAt time.Time

	// key: location key, value: history
	data map[string]*CycleHistory

	// retention configuration
	maxHistory int           // max number of cycles per location
	maxAge     time.Duration // optional max age for cycles

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*CycleHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SetLoading sets the loading flag.
func (s *MemoryStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Loading = loading
}

// SetError records a failed cycle. Snapshots are left untouched.
func (s *MemoryStore) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Error = msg
	s.updatedAt = s.now().UTC()
}

// SaveCycle replaces both snapshots wholesale, clears the error,
// and appends the cycle to its location's history enforcing retention.
func (s *MemoryStore) SaveCycle(cycle weather.Cycle) {
	current := cycle.Current
	forecast := cycle.Forecast
	key := cycle.Location.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &current
	s.forecast = &forecast
	s.status.Error = ""
	s.updatedAt = s.now().UTC()

	history, ok := s.data[key]
	if !ok {
		history = &CycleHistory{}
		s.data[key] = history
	}

	history.Cycles = append(history.Cycles, cycle)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Cycles) > s.maxHistory {
		over := len(history.Cycles) - s.maxHistory
		history.Cycles = history.Cycles[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Cycles); i++ {
			if !history.Cycles[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		history.Cycles = history.Cycles[i:]
	}
}

// View returns a copy of the presentation state.
func (s *MemoryStore) View() weather.View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := weather.View{
		Status:    s.status,
		UpdatedAt: s.updatedAt,
	}
	if s.current != nil {
		c := *s.current
		v.Current = &c
	}
	if s.forecast != nil {
		f := *s.forecast
		v.Forecast = &f
	}
	return v
}

// GetLatest returns the most recent cycle for a location label.
func (s *MemoryStore) GetLatest(label string) (weather.Cycle, error) {
	key := weather.Location{Label: label}.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Cycles) == 0 {
		return weather.Cycle{}, ErrNotFound
	}
	return history.Cycles[len(history.Cycles)-1], nil
}

// GetRange returns all cycles for a location label fetched between from and to (inclusive).
func (s *MemoryStore) GetRange(label string, from, to time.Time) ([]weather.Cycle, error) {
	key := weather.Location{Label: label}.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Cycles) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Cycle
	for _, c := range history.Cycles {
		if !c.FetchedAt.Before(from) && !c.FetchedAt.After(to) {
			result = append(result, c)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
