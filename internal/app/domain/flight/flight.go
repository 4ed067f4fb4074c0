// Package flight defines the flight domain model: flights, their passenger
// rosters, and the filter/patch types used by the service and HTTP layers.
// JSON field names are camelCase to match the public API.
package flight

import "time"

// Category is a passenger's loyalty tier.
type Category string

const (
	CategoryBlack    Category = "Black"
	CategoryPlatinum Category = "Platinum"
	CategoryGold     Category = "Gold"
	CategoryNormal   Category = "Normal"
)

// Valid reports whether the category is one of the known tiers.
func (c Category) Valid() bool {
	switch c {
	case CategoryBlack, CategoryPlatinum, CategoryGold, CategoryNormal:
		return true
	}
	return false
}

// Passenger is a traveller booked (or overbooked) on a flight. IDs are
// caller-assigned and unique within a flight.
type Passenger struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	HasConnections    bool     `json:"hasConnections"`
	Age               int      `json:"age"`
	Category          Category `json:"flightCategory"`
	ReservationID     string   `json:"reservationId"`
	HasCheckedBaggage bool     `json:"hasCheckedBaggage"`
}

// Flight is the aggregate root. Passengers holds the admitted roster;
// OverbookedPassengers holds travellers displaced at creation time.
type Flight struct {
	ID                   string      `json:"id"`
	FlightCode           string      `json:"flightCode"`
	Capacity             int         `json:"capacity"`
	Passengers           []Passenger `json:"passengers"`
	OverbookedPassengers []Passenger `json:"overbookedPassengers"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// Summary is the list projection of a flight, without passenger rosters.
type Summary struct {
	ID         string `json:"id"`
	FlightCode string `json:"flightCode"`
	Capacity   int    `json:"capacity"`
}

// Pagination bounds for list queries.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Filter selects flights for listing.
type Filter struct {
	FlightCode string
	Limit      int
	Offset     int
}

// Normalize clamps pagination to the allowed bounds.
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// PassengerFilter selects passengers within a flight. Nil fields match
// everything.
type PassengerFilter struct {
	Name              *string
	HasConnections    *bool
	Age               *int
	Category          *Category
	ReservationID     *string
	HasCheckedBaggage *bool
}

// Matches reports whether the passenger satisfies every set field.
func (f PassengerFilter) Matches(p Passenger) bool {
	if f.Name != nil && p.Name != *f.Name {
		return false
	}
	if f.HasConnections != nil && p.HasConnections != *f.HasConnections {
		return false
	}
	if f.Age != nil && p.Age != *f.Age {
		return false
	}
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.ReservationID != nil && p.ReservationID != *f.ReservationID {
		return false
	}
	if f.HasCheckedBaggage != nil && p.HasCheckedBaggage != *f.HasCheckedBaggage {
		return false
	}
	return true
}

// Update replaces a flight's code and capacity. A nil Passengers leaves the
// roster untouched; a non-nil slice replaces it wholesale.
type Update struct {
	FlightCode string
	Capacity   int
	Passengers *[]Passenger
}

// PassengerPatch is a partial update of a passenger. Nil fields are left
// unchanged.
type PassengerPatch struct {
	Name              *string   `json:"name"`
	HasConnections    *bool     `json:"hasConnections"`
	Age               *int      `json:"age"`
	Category          *Category `json:"flightCategory"`
	ReservationID     *string   `json:"reservationId"`
	HasCheckedBaggage *bool     `json:"hasCheckedBaggage"`
}

// Apply returns the passenger with the patch's set fields applied.
func (p PassengerPatch) Apply(dst Passenger) Passenger {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.HasConnections != nil {
		dst.HasConnections = *p.HasConnections
	}
	if p.Age != nil {
		dst.Age = *p.Age
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.ReservationID != nil {
		dst.ReservationID = *p.ReservationID
	}
	if p.HasCheckedBaggage != nil {
		dst.HasCheckedBaggage = *p.HasCheckedBaggage
	}
	return dst
}
