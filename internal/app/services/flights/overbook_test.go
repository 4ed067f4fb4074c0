package flights

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomasrivera/flights-service/internal/app/domain/flight"
)

func pax(id int, reservation string, category flight.Category, age int, connections, baggage bool) flight.Passenger {
	return flight.Passenger{
		ID:                id,
		Name:              "p",
		ReservationID:     reservation,
		Category:          category,
		Age:               age,
		HasConnections:    connections,
		HasCheckedBaggage: baggage,
	}
}

func ids(passengers []flight.Passenger) []int {
	out := make([]int, 0, len(passengers))
	for _, p := range passengers {
		out = append(out, p.ID)
	}
	return out
}

func TestOrderPassengersEveryoneFits(t *testing.T) {
	passengers := []flight.Passenger{
		pax(1, "A", flight.CategoryNormal, 30, false, false),
		pax(2, "B", flight.CategoryGold, 40, false, false),
	}

	booked, overbooked := orderPassengers(passengers, 2)
	require.Len(t, booked, 2)
	require.Empty(t, overbooked)
}

func TestOrderPassengersHigherAverageWeightWins(t *testing.T) {
	// "low" weighs 22, "high" weighs 65.
	passengers := []flight.Passenger{
		pax(1, "low", flight.CategoryNormal, 20, false, false),
		pax(2, "high", flight.CategoryBlack, 50, true, true),
	}

	booked, overbooked := orderPassengers(passengers, 1)
	require.Equal(t, []int{2}, ids(booked))
	require.Equal(t, []int{1}, ids(overbooked))
}

func TestOrderPassengersGroupsAreNeverSplit(t *testing.T) {
	// The heavy pair does not fit into one remaining seat, so the whole
	// reservation is displaced and the lighter solo traveller boards.
	passengers := []flight.Passenger{
		pax(1, "pair", flight.CategoryBlack, 40, false, false),
		pax(2, "pair", flight.CategoryBlack, 42, false, false),
		pax(3, "solo", flight.CategoryNormal, 20, false, false),
	}

	booked, overbooked := orderPassengers(passengers, 1)
	require.Equal(t, []int{3}, ids(booked))
	require.ElementsMatch(t, []int{1, 2}, ids(overbooked))
}

func TestOrderPassengersSizeBreaksWeightTies(t *testing.T) {
	// Both groups average the same weight; the larger group is considered
	// first and takes the seats.
	passengers := []flight.Passenger{
		pax(1, "big", flight.CategoryNormal, 30, false, false),
		pax(2, "big", flight.CategoryNormal, 30, false, false),
		pax(3, "small", flight.CategoryNormal, 30, false, false),
	}

	booked, overbooked := orderPassengers(passengers, 2)
	require.ElementsMatch(t, []int{1, 2}, ids(booked))
	require.Equal(t, []int{3}, ids(overbooked))
}

func TestOrderPassengersGreedySkipsToSmallerGroup(t *testing.T) {
	// Capacity 3: the heaviest pair boards, the next pair does not fit, the
	// lightest solo still fills the remaining seat.
	passengers := []flight.Passenger{
		pax(1, "first", flight.CategoryBlack, 60, true, true),
		pax(2, "first", flight.CategoryBlack, 58, true, true),
		pax(3, "second", flight.CategoryGold, 35, false, true),
		pax(4, "second", flight.CategoryGold, 33, false, true),
		pax(5, "third", flight.CategoryNormal, 5, false, false),
	}

	booked, overbooked := orderPassengers(passengers, 3)
	require.ElementsMatch(t, []int{1, 2, 5}, ids(booked))
	require.ElementsMatch(t, []int{3, 4}, ids(overbooked))
}

func TestPassengerWeight(t *testing.T) {
	p := pax(1, "A", flight.CategoryPlatinum, 30, true, true)
	// 7 (Platinum) + 3 (connections) + 2 (baggage) + 30 (age)
	require.Equal(t, 42, passengerWeight(p))
}
