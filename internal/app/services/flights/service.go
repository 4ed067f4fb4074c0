// Package flights implements flight and passenger management: CRUD on
// flights, roster manipulation, and the overbooking policy applied when a
// flight is created with more passengers than seats.
package flights

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomasrivera/flights-service/internal/app/domain/flight"
	"github.com/tomasrivera/flights-service/internal/app/storage"
	"github.com/tomasrivera/flights-service/pkg/logger"
)

var (
	// ErrFlightNotFound is returned when the referenced flight does not exist.
	ErrFlightNotFound = errors.New("flight not found")
	// ErrPassengerNotFound is returned when the referenced passenger is not
	// on the flight's roster.
	ErrPassengerNotFound = errors.New("passenger not found")
	// ErrDuplicatePassenger is returned when a passenger ID collides within a
	// batch or with the existing roster.
	ErrDuplicatePassenger = errors.New("duplicate passenger")
	// ErrInvalidFlight is returned for flights violating basic constraints.
	ErrInvalidFlight = errors.New("invalid flight")
)

// Service provides flight operations on top of a FlightStore.
type Service struct {
	store storage.FlightStore
	log   *logger.Logger
}

// New creates a flights service.
func New(store storage.FlightStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("flights")
	}
	return &Service{store: store, log: log}
}

// List returns flight summaries matching the filter.
func (s *Service) List(ctx context.Context, filter flight.Filter) ([]flight.Summary, error) {
	return s.store.ListFlights(ctx, filter)
}

// Get returns the full flight aggregate.
func (s *Service) Get(ctx context.Context, id string) (flight.Flight, error) {
	f, err := s.store.GetFlight(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return flight.Flight{}, ErrFlightNotFound
	}
	return f, err
}

// Create validates the flight, splits its passengers into booked and
// overbooked rosters, and persists it.
func (s *Service) Create(ctx context.Context, flightCode string, capacity int, passengers []flight.Passenger) (flight.Flight, error) {
	if err := validateFlight(flightCode, capacity); err != nil {
		return flight.Flight{}, err
	}
	normalizeCategories(passengers)
	if err := validatePassengers(passengers); err != nil {
		return flight.Flight{}, err
	}
	if err := assertUniqueIDs(nil, passengers); err != nil {
		return flight.Flight{}, err
	}

	booked, overbooked := orderPassengers(passengers, capacity)

	created, err := s.store.CreateFlight(ctx, flight.Flight{
		FlightCode:           flightCode,
		Capacity:             capacity,
		Passengers:           booked,
		OverbookedPassengers: overbooked,
	})
	if err != nil {
		return flight.Flight{}, fmt.Errorf("create flight: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"flight_id":   created.ID,
		"flight_code": created.FlightCode,
		"booked":      len(created.Passengers),
		"overbooked":  len(created.OverbookedPassengers),
	}).Info("flight created")
	return created, nil
}

// Update replaces a flight's code and capacity, and optionally its roster.
// The overbooked roster is left untouched.
func (s *Service) Update(ctx context.Context, id string, update flight.Update) (flight.Flight, error) {
	if err := validateFlight(update.FlightCode, update.Capacity); err != nil {
		return flight.Flight{}, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return flight.Flight{}, err
	}

	existing.FlightCode = update.FlightCode
	existing.Capacity = update.Capacity
	if update.Passengers != nil {
		replacement := *update.Passengers
		normalizeCategories(replacement)
		if err := validatePassengers(replacement); err != nil {
			return flight.Flight{}, err
		}
		if err := assertUniqueIDs(nil, replacement); err != nil {
			return flight.Flight{}, err
		}
		existing.Passengers = replacement
	}

	updated, err := s.store.UpdateFlight(ctx, existing)
	if errors.Is(err, storage.ErrNotFound) {
		return flight.Flight{}, ErrFlightNotFound
	}
	return updated, err
}

// Delete removes a flight.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteFlight(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrFlightNotFound
	}
	return err
}

// AddPassengers appends a batch of passengers to the flight's roster. IDs
// must be unique within the batch and against passengers already on board.
func (s *Service) AddPassengers(ctx context.Context, id string, passengers []flight.Passenger) ([]flight.Passenger, error) {
	normalizeCategories(passengers)
	if err := validatePassengers(passengers); err != nil {
		return nil, err
	}

	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := assertUniqueIDs(f.Passengers, passengers); err != nil {
		return nil, err
	}

	f.Passengers = append(f.Passengers, passengers...)
	if _, err := s.store.UpdateFlight(ctx, f); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, err
	}
	return passengers, nil
}

// GetPassenger returns one passenger from the flight's roster.
func (s *Service) GetPassenger(ctx context.Context, id string, passengerID int) (flight.Passenger, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return flight.Passenger{}, err
	}
	for _, p := range f.Passengers {
		if p.ID == passengerID {
			return p, nil
		}
	}
	return flight.Passenger{}, ErrPassengerNotFound
}

// ListPassengers returns the flight's roster filtered by the given criteria.
func (s *Service) ListPassengers(ctx context.Context, id string, filter flight.PassengerFilter) ([]flight.Passenger, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := make([]flight.Passenger, 0, len(f.Passengers))
	for _, p := range f.Passengers {
		if filter.Matches(p) {
			result = append(result, p)
		}
	}
	return result, nil
}

// ListOverbooked returns the passengers displaced at creation time.
func (s *Service) ListOverbooked(ctx context.Context, id string) ([]flight.Passenger, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OverbookedPassengers == nil {
		return []flight.Passenger{}, nil
	}
	return f.OverbookedPassengers, nil
}

// UpdatePassenger applies a partial update to one passenger on the roster.
func (s *Service) UpdatePassenger(ctx context.Context, id string, passengerID int, patch flight.PassengerPatch) (flight.Passenger, error) {
	if patch.Age != nil && *patch.Age < 0 {
		return flight.Passenger{}, fmt.Errorf("%w: age must not be negative", ErrInvalidFlight)
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return flight.Passenger{}, fmt.Errorf("%w: unknown flight category %q", ErrInvalidFlight, *patch.Category)
	}

	f, err := s.Get(ctx, id)
	if err != nil {
		return flight.Passenger{}, err
	}

	for i, p := range f.Passengers {
		if p.ID != passengerID {
			continue
		}
		f.Passengers[i] = patch.Apply(p)
		if _, err := s.store.UpdateFlight(ctx, f); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return flight.Passenger{}, ErrFlightNotFound
			}
			return flight.Passenger{}, err
		}
		return f.Passengers[i], nil
	}
	return flight.Passenger{}, ErrPassengerNotFound
}

// RemovePassenger removes one passenger from the roster.
func (s *Service) RemovePassenger(ctx context.Context, id string, passengerID int) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	kept := f.Passengers[:0]
	removed := false
	for _, p := range f.Passengers {
		if p.ID == passengerID {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return ErrPassengerNotFound
	}

	f.Passengers = kept
	if _, err := s.store.UpdateFlight(ctx, f); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrFlightNotFound
		}
		return err
	}
	return nil
}

func validateFlight(flightCode string, capacity int) error {
	if flightCode == "" {
		return fmt.Errorf("%w: flight code is required", ErrInvalidFlight)
	}
	if capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalidFlight)
	}
	return nil
}

func validatePassengers(passengers []flight.Passenger) error {
	for _, p := range passengers {
		if p.Age < 0 {
			return fmt.Errorf("%w: passenger %d age must not be negative", ErrInvalidFlight, p.ID)
		}
		if !p.Category.Valid() {
			return fmt.Errorf("%w: passenger %d has unknown flight category %q", ErrInvalidFlight, p.ID, p.Category)
		}
	}
	return nil
}

func normalizeCategories(passengers []flight.Passenger) {
	for i := range passengers {
		if passengers[i].Category == "" {
			passengers[i].Category = flight.CategoryNormal
		}
	}
}

// assertUniqueIDs rejects passenger IDs duplicated within the batch or
// already present on the existing roster.
func assertUniqueIDs(existing, batch []flight.Passenger) error {
	seen := make(map[int]struct{}, len(batch))
	for _, p := range batch {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: id %d appears more than once", ErrDuplicatePassenger, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	for _, p := range existing {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: id %d already on flight", ErrDuplicatePassenger, p.ID)
		}
	}
	return nil
}
