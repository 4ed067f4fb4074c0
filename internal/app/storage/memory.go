package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomasrivera/flights-service/internal/app/domain/flight"
)

// Memory is a thread-safe in-memory persistence layer implementing the
// storage interfaces defined in this package. It is intended for tests and
// prototyping and deliberately keeps the implementation simple.
type Memory struct {
	mu      sync.RWMutex
	flights map[string]flight.Flight
}

var _ FlightStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{flights: make(map[string]flight.Flight)}
}

func (m *Memory) CreateFlight(_ context.Context, f flight.Flight) (flight.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	f.Passengers = clonePassengers(f.Passengers)
	f.OverbookedPassengers = clonePassengers(f.OverbookedPassengers)

	m.flights[f.ID] = f
	return cloneFlight(f), nil
}

func (m *Memory) UpdateFlight(_ context.Context, f flight.Flight) (flight.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.flights[f.ID]
	if !ok {
		return flight.Flight{}, ErrNotFound
	}

	f.CreatedAt = original.CreatedAt
	f.UpdatedAt = time.Now().UTC()
	f.Passengers = clonePassengers(f.Passengers)
	f.OverbookedPassengers = clonePassengers(f.OverbookedPassengers)

	m.flights[f.ID] = f
	return cloneFlight(f), nil
}

func (m *Memory) GetFlight(_ context.Context, id string) (flight.Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.flights[id]
	if !ok {
		return flight.Flight{}, ErrNotFound
	}
	return cloneFlight(f), nil
}

func (m *Memory) ListFlights(_ context.Context, filter flight.Filter) ([]flight.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filter = filter.Normalize()

	all := make([]flight.Flight, 0, len(m.flights))
	for _, f := range m.flights {
		if filter.FlightCode != "" && !strings.EqualFold(f.FlightCode, filter.FlightCode) {
			continue
		}
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if filter.Offset >= len(all) {
		return []flight.Summary{}, nil
	}
	all = all[filter.Offset:]
	if len(all) > filter.Limit {
		all = all[:filter.Limit]
	}

	result := make([]flight.Summary, 0, len(all))
	for _, f := range all {
		result = append(result, flight.Summary{ID: f.ID, FlightCode: f.FlightCode, Capacity: f.Capacity})
	}
	return result, nil
}

func (m *Memory) DeleteFlight(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flights[id]; !ok {
		return ErrNotFound
	}
	delete(m.flights, id)
	return nil
}

func (m *Memory) CountFlights(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.flights)), nil
}

func cloneFlight(f flight.Flight) flight.Flight {
	f.Passengers = clonePassengers(f.Passengers)
	f.OverbookedPassengers = clonePassengers(f.OverbookedPassengers)
	return f
}

func clonePassengers(src []flight.Passenger) []flight.Passenger {
	if src == nil {
		return []flight.Passenger{}
	}
	out := make([]flight.Passenger, len(src))
	copy(out, src)
	return out
}
