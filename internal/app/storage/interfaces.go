package storage

import (
	"context"
	"errors"

	"github.com/tomasrivera/flights-service/internal/app/domain/flight"
)

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// FlightStore persists flight aggregates. Passenger rosters travel with the
// flight document; callers mutate rosters with read-modify-write through
// UpdateFlight.
type FlightStore interface {
	CreateFlight(ctx context.Context, f flight.Flight) (flight.Flight, error)
	UpdateFlight(ctx context.Context, f flight.Flight) (flight.Flight, error)
	GetFlight(ctx context.Context, id string) (flight.Flight, error)
	ListFlights(ctx context.Context, filter flight.Filter) ([]flight.Summary, error)
	DeleteFlight(ctx context.Context, id string) error
	CountFlights(ctx context.Context) (int64, error)
}
