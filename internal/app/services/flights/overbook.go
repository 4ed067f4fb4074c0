package flights

import (
	"sort"

	"github.com/tomasrivera/flights-service/internal/app/domain/flight"
)

// Overbooking weights. A passenger's weight is their category weight plus
// bonuses for connections and checked baggage plus one point per year of age.
const (
	connectionWeight     = 3
	checkedBaggageWeight = 2
	ageWeight            = 1
)

var categoryWeights = map[flight.Category]int{
	flight.CategoryBlack:    10,
	flight.CategoryPlatinum: 7,
	flight.CategoryGold:     5,
	flight.CategoryNormal:   2,
}

type reservationGroup struct {
	passengers []flight.Passenger
	total      int
}

func (g reservationGroup) avgWeight() float64 {
	return float64(g.total) / float64(len(g.passengers))
}

// orderPassengers splits passengers into booked and overbooked rosters.
// Passengers sharing a reservation travel together: groups are admitted
// whole, in order of average weight (then size) descending, while they fit
// within capacity.
func orderPassengers(passengers []flight.Passenger, capacity int) (booked, overbooked []flight.Passenger) {
	booked = []flight.Passenger{}
	overbooked = []flight.Passenger{}

	groups := make(map[string]*reservationGroup)
	order := make([]string, 0)
	for _, p := range passengers {
		g, ok := groups[p.ReservationID]
		if !ok {
			g = &reservationGroup{}
			groups[p.ReservationID] = g
			order = append(order, p.ReservationID)
		}
		g.passengers = append(g.passengers, p)
		g.total += passengerWeight(p)
	}

	sorted := make([]*reservationGroup, 0, len(groups))
	for _, id := range order {
		sorted = append(sorted, groups[id])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].avgWeight() != sorted[j].avgWeight() {
			return sorted[i].avgWeight() > sorted[j].avgWeight()
		}
		return len(sorted[i].passengers) > len(sorted[j].passengers)
	})

	for _, g := range sorted {
		if len(booked)+len(g.passengers) <= capacity {
			booked = append(booked, g.passengers...)
		} else {
			overbooked = append(overbooked, g.passengers...)
		}
	}
	return booked, overbooked
}

func passengerWeight(p flight.Passenger) int {
	w := categoryWeights[p.Category]
	if p.HasConnections {
		w += connectionWeight
	}
	if p.HasCheckedBaggage {
		w += checkedBaggageWeight
	}
	return w + ageWeight*p.Age
}
