// Package postgres implements the storage interfaces backed by PostgreSQL.
// Passenger rosters are persisted as JSONB documents alongside the flight
// row, preserving the aggregate shape the service works with.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/tomasrivera/flights-service/internal/app/domain/flight"
	"github.com/tomasrivera/flights-service/internal/app/storage"
)

// Store implements storage.FlightStore backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.FlightStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL, verifies the connection and returns a handle
// configured with the given pool limits.
func Open(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

type flightRow struct {
	ID         string    `db:"id"`
	FlightCode string    `db:"flight_code"`
	Capacity   int       `db:"capacity"`
	Passengers []byte    `db:"passengers"`
	Overbooked []byte    `db:"overbooked_passengers"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r flightRow) toDomain() (flight.Flight, error) {
	f := flight.Flight{
		ID:         r.ID,
		FlightCode: r.FlightCode,
		Capacity:   r.Capacity,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal(r.Passengers, &f.Passengers); err != nil {
		return flight.Flight{}, fmt.Errorf("decode passengers: %w", err)
	}
	if err := json.Unmarshal(r.Overbooked, &f.OverbookedPassengers); err != nil {
		return flight.Flight{}, fmt.Errorf("decode overbooked passengers: %w", err)
	}
	return f, nil
}

func marshalRoster(passengers []flight.Passenger) ([]byte, error) {
	if passengers == nil {
		passengers = []flight.Passenger{}
	}
	return json.Marshal(passengers)
}

func (s *Store) CreateFlight(ctx context.Context, f flight.Flight) (flight.Flight, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	passengersJSON, err := marshalRoster(f.Passengers)
	if err != nil {
		return flight.Flight{}, err
	}
	overbookedJSON, err := marshalRoster(f.OverbookedPassengers)
	if err != nil {
		return flight.Flight{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO flights (id, flight_code, capacity, passengers, overbooked_passengers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ID, f.FlightCode, f.Capacity, passengersJSON, overbookedJSON, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return flight.Flight{}, err
	}
	return f, nil
}

func (s *Store) UpdateFlight(ctx context.Context, f flight.Flight) (flight.Flight, error) {
	existing, err := s.GetFlight(ctx, f.ID)
	if err != nil {
		return flight.Flight{}, err
	}

	f.CreatedAt = existing.CreatedAt
	f.UpdatedAt = time.Now().UTC()

	passengersJSON, err := marshalRoster(f.Passengers)
	if err != nil {
		return flight.Flight{}, err
	}
	overbookedJSON, err := marshalRoster(f.OverbookedPassengers)
	if err != nil {
		return flight.Flight{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE flights
		SET flight_code = $2, capacity = $3, passengers = $4, overbooked_passengers = $5, updated_at = $6
		WHERE id = $1
	`, f.ID, f.FlightCode, f.Capacity, passengersJSON, overbookedJSON, f.UpdatedAt)
	if err != nil {
		return flight.Flight{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return flight.Flight{}, storage.ErrNotFound
	}
	return f, nil
}

func (s *Store) GetFlight(ctx context.Context, id string) (flight.Flight, error) {
	var row flightRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, flight_code, capacity, passengers, overbooked_passengers, created_at, updated_at
		FROM flights
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return flight.Flight{}, storage.ErrNotFound
	}
	if err != nil {
		return flight.Flight{}, err
	}
	return row.toDomain()
}

func (s *Store) ListFlights(ctx context.Context, filter flight.Filter) ([]flight.Summary, error) {
	filter = filter.Normalize()

	var rows []struct {
		ID         string `db:"id"`
		FlightCode string `db:"flight_code"`
		Capacity   int    `db:"capacity"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, flight_code, capacity
		FROM flights
		WHERE $1 = '' OR flight_code = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, filter.FlightCode, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}

	result := make([]flight.Summary, 0, len(rows))
	for _, r := range rows {
		result = append(result, flight.Summary{ID: r.ID, FlightCode: r.FlightCode, Capacity: r.Capacity})
	}
	return result, nil
}

func (s *Store) DeleteFlight(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM flights WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountFlights(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM flights`); err != nil {
		return 0, err
	}
	return count, nil
}
