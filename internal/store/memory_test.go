package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func cycleFor(label string, fetchedAt time.Time) weather.Cycle {
	loc := weather.Location{Label: label}
	return weather.Cycle{
		ID:        label + fetchedAt.Format(time.RFC3339),
		Location:  loc,
		FetchedAt: fetchedAt,
		Current:   weather.Snapshot{City: label, Body: weather.Payload{"kind": "current"}},
		Forecast:  weather.Snapshot{City: label, Body: weather.Payload{"kind": "forecast"}},
	}
}

func TestMemoryStoreViewEmpty(t *testing.T) {
	s := NewMemoryStore(10, 0)
	v := s.View()
	if v.Current != nil || v.Forecast != nil || v.Loading || v.Error != "" {
		t.Errorf("View() = %+v, want zero state", v)
	}
}

func TestMemoryStoreSaveCycleReplacesAndClearsError(t *testing.T) {
	s := NewMemoryStore(10, 0)
	now := time.Now().UTC()

	s.SaveCycle(cycleFor("Mumbai, IN", now))
	s.SetError(weather.FetchErrorMessage)

	v := s.View()
	if v.Current.City != "Mumbai, IN" || v.Error != weather.FetchErrorMessage {
		t.Fatalf("View() = %+v", v)
	}

	s.SaveCycle(cycleFor("Delhi, IN", now.Add(time.Second)))
	v = s.View()
	if v.Current.City != "Delhi, IN" || v.Forecast.City != "Delhi, IN" {
		t.Errorf("snapshots = %q/%q, want Delhi", v.Current.City, v.Forecast.City)
	}
	if v.Error != "" {
		t.Errorf("Error = %q, want cleared", v.Error)
	}
}

func TestMemoryStoreViewIsACopy(t *testing.T) {
	s := NewMemoryStore(10, 0)
	s.SaveCycle(cycleFor("Mumbai, IN", time.Now()))

	v := s.View()
	v.Current.City = "mutated"

	if got := s.View().Current.City; got != "Mumbai, IN" {
		t.Errorf("Current.City = %q after mutating a view", got)
	}
}

func TestMemoryStoreLoading(t *testing.T) {
	s := NewMemoryStore(10, 0)
	s.SetLoading(true)
	if !s.View().Loading {
		t.Error("Loading = false after SetLoading(true)")
	}
	s.SetLoading(false)
	if s.View().Loading {
		t.Error("Loading = true after SetLoading(false)")
	}
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.SaveCycle(cycleFor("Mumbai, IN", base.Add(time.Duration(i)*time.Minute)))
	}

	cycles, err := s.GetRange("Mumbai, IN", base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("len = %d, want 2", len(cycles))
	}
	if !cycles[1].FetchedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("newest = %v, want %v", cycles[1].FetchedAt, base.Add(4*time.Minute))
	}
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.SaveCycle(cycleFor("Delhi, IN", now.Add(-3*time.Hour)))
	s.SaveCycle(cycleFor("Delhi, IN", now.Add(-30*time.Minute)))

	latest, err := s.GetLatest("Delhi, IN")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if !latest.FetchedAt.Equal(now.Add(-30 * time.Minute)) {
		t.Errorf("latest = %v", latest.FetchedAt)
	}

	cycles, err := s.GetRange("Delhi, IN", now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(cycles) != 1 {
		t.Errorf("len = %d, want 1 (old cycle expired)", len(cycles))
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore(10, 0)

	if _, err := s.GetLatest("Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLatest error = %v, want ErrNotFound", err)
	}

	now := time.Now()
	s.SaveCycle(cycleFor("Mumbai, IN", now))
	if _, err := s.GetRange("Mumbai, IN", now.Add(time.Hour), now.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRange outside window error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreLookupIgnoresLabelCase(t *testing.T) {
	s := NewMemoryStore(10, 0)
	s.SaveCycle(cycleFor("Mumbai, IN", time.Now()))

	if _, err := s.GetLatest("mumbai, in"); err != nil {
		t.Errorf("GetLatest: %v", err)
	}
}
