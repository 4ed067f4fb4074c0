package flights

import (
	"context"
	"errors"
	"testing"

	"github.com/tomasrivera/flights-service/internal/app/domain/flight"
	"github.com/tomasrivera/flights-service/internal/app/storage"
)

func newService() *Service {
	return New(storage.NewMemory(), nil)
}

func TestCreateSplitsOverbooked(t *testing.T) {
	svc := newService()

	created, err := svc.Create(context.Background(), "IB3100", 1, []flight.Passenger{
		pax(1, "A", flight.CategoryNormal, 20, false, false),
		pax(2, "B", flight.CategoryBlack, 50, true, true),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id to be generated")
	}
	if len(created.Passengers) != 1 || created.Passengers[0].ID != 2 {
		t.Fatalf("expected passenger 2 booked, got %+v", created.Passengers)
	}
	if len(created.OverbookedPassengers) != 1 || created.OverbookedPassengers[0].ID != 1 {
		t.Fatalf("expected passenger 1 overbooked, got %+v", created.OverbookedPassengers)
	}
}

func TestCreateRejectsDuplicateIDsInBatch(t *testing.T) {
	svc := newService()

	_, err := svc.Create(context.Background(), "IB3100", 10, []flight.Passenger{
		pax(1, "A", flight.CategoryNormal, 20, false, false),
		pax(1, "B", flight.CategoryNormal, 30, false, false),
	})
	if !errors.Is(err, ErrDuplicatePassenger) {
		t.Fatalf("expected ErrDuplicatePassenger, got %v", err)
	}
}

func TestCreateRejectsInvalidCapacity(t *testing.T) {
	svc := newService()

	if _, err := svc.Create(context.Background(), "IB3100", 0, nil); !errors.Is(err, ErrInvalidFlight) {
		t.Fatalf("expected ErrInvalidFlight, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "", 1, nil); !errors.Is(err, ErrInvalidFlight) {
		t.Fatalf("expected ErrInvalidFlight for empty code, got %v", err)
	}
}

func TestCreateDefaultsCategory(t *testing.T) {
	svc := newService()

	p := pax(1, "A", "", 20, false, false)
	created, err := svc.Create(context.Background(), "IB3100", 5, []flight.Passenger{p})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Passengers[0].Category != flight.CategoryNormal {
		t.Fatalf("expected Normal category, got %q", created.Passengers[0].Category)
	}
}

func TestGetUnknownFlight(t *testing.T) {
	svc := newService()

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrFlightNotFound) {
		t.Fatalf("expected ErrFlightNotFound, got %v", err)
	}
}

func TestUpdateReplacesRosterOnlyWhenProvided(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "IB3100", 5, []flight.Passenger{
		pax(1, "A", flight.CategoryNormal, 20, false, false),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// No passengers in the update: roster untouched.
	updated, err := svc.Update(ctx, created.ID, flight.Update{FlightCode: "IB3200", Capacity: 6})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FlightCode != "IB3200" || updated.Capacity != 6 {
		t.Fatalf("flight fields not updated: %+v", updated)
	}
	if len(updated.Passengers) != 1 {
		t.Fatalf("roster should be untouched, got %+v", updated.Passengers)
	}

	// Explicit replacement, including an empty one.
	empty := []flight.Passenger{}
	updated, err = svc.Update(ctx, created.ID, flight.Update{FlightCode: "IB3200", Capacity: 6, Passengers: &empty})
	if err != nil {
		t.Fatalf("update roster: %v", err)
	}
	if len(updated.Passengers) != 0 {
		t.Fatalf("roster should be empty, got %+v", updated.Passengers)
	}
}

func TestAddPassengersDetectsConflicts(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "IB3100", 5, []flight.Passenger{
		pax(1, "A", flight.CategoryNormal, 20, false, false),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AddPassengers(ctx, created.ID, []flight.Passenger{
		pax(1, "B", flight.CategoryNormal, 25, false, false),
	}); !errors.Is(err, ErrDuplicatePassenger) {
		t.Fatalf("expected ErrDuplicatePassenger against roster, got %v", err)
	}

	added, err := svc.AddPassengers(ctx, created.ID, []flight.Passenger{
		pax(2, "B", flight.CategoryGold, 25, false, false),
		pax(3, "B", flight.CategoryGold, 27, false, false),
	})
	if err != nil {
		t.Fatalf("add passengers: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 added passengers, got %d", len(added))
	}

	roster, err := svc.ListPassengers(ctx, created.ID, flight.PassengerFilter{})
	if err != nil {
		t.Fatalf("list passengers: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("expected 3 passengers on board, got %d", len(roster))
	}
}

func TestListPassengersFilter(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "IB3100", 5, []flight.Passenger{
		pax(1, "A", flight.CategoryGold, 20, true, false),
		pax(2, "B", flight.CategoryGold, 30, false, false),
		pax(3, "C", flight.CategoryNormal, 30, false, false),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	gold := flight.CategoryGold
	got, err := svc.ListPassengers(ctx, created.ID, flight.PassengerFilter{Category: &gold})
	if err != nil {
		t.Fatalf("list passengers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 gold passengers, got %d", len(got))
	}

	age := 30
	got, err = svc.ListPassengers(ctx, created.ID, flight.PassengerFilter{Category: &gold, Age: &age})
	if err != nil {
		t.Fatalf("list passengers: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected passenger 2, got %+v", got)
	}
}

func TestUpdatePassengerPatch(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "IB3100", 5, []flight.Passenger{
		pax(1, "A", flight.CategoryNormal, 20, false, false),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Grace"
	platinum := flight.CategoryPlatinum
	updated, err := svc.UpdatePassenger(ctx, created.ID, 1, flight.PassengerPatch{Name: &name, Category: &platinum})
	if err != nil {
		t.Fatalf("update passenger: %v", err)
	}
	if updated.Name != "Grace" || updated.Category != flight.CategoryPlatinum {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Age != 20 || updated.ReservationID != "A" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	if _, err := svc.UpdatePassenger(ctx, created.ID, 99, flight.PassengerPatch{Name: &name}); !errors.Is(err, ErrPassengerNotFound) {
		t.Fatalf("expected ErrPassengerNotFound, got %v", err)
	}
}

func TestRemovePassenger(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "IB3100", 5, []flight.Passenger{
		pax(1, "A", flight.CategoryNormal, 20, false, false),
		pax(2, "A", flight.CategoryNormal, 22, false, false),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.RemovePassenger(ctx, created.ID, 1); err != nil {
		t.Fatalf("remove passenger: %v", err)
	}
	if err := svc.RemovePassenger(ctx, created.ID, 1); !errors.Is(err, ErrPassengerNotFound) {
		t.Fatalf("expected ErrPassengerNotFound, got %v", err)
	}

	roster, err := svc.ListPassengers(ctx, created.ID, flight.PassengerFilter{})
	if err != nil {
		t.Fatalf("list passengers: %v", err)
	}
	if len(roster) != 1 || roster[0].ID != 2 {
		t.Fatalf("expected only passenger 2, got %+v", roster)
	}
}

func TestListOverbooked(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "IB3100", 1, []flight.Passenger{
		pax(1, "A", flight.CategoryNormal, 20, false, false),
		pax(2, "B", flight.CategoryBlack, 50, true, true),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	overbooked, err := svc.ListOverbooked(ctx, created.ID)
	if err != nil {
		t.Fatalf("list overbooked: %v", err)
	}
	if len(overbooked) != 1 || overbooked[0].ID != 1 {
		t.Fatalf("expected passenger 1 overbooked, got %+v", overbooked)
	}

	if _, err := svc.ListOverbooked(ctx, "missing"); !errors.Is(err, ErrFlightNotFound) {
		t.Fatalf("expected ErrFlightNotFound, got %v", err)
	}
}

func TestListFlights(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, code := range []string{"IB3100", "IB3100", "UX1027"} {
		if _, err := svc.Create(ctx, code, 10, nil); err != nil {
			t.Fatalf("create %s: %v", code, err)
		}
	}

	all, err := svc.List(ctx, flight.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 flights, got %d", len(all))
	}

	filtered, err := svc.List(ctx, flight.Filter{FlightCode: "IB3100"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 IB3100 flights, got %d", len(filtered))
	}

	paged, err := svc.List(ctx, flight.Filter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if len(paged) != 1 {
		t.Fatalf("expected 1 flight on second page, got %d", len(paged))
	}
}
