// Package httpapi exposes the flights REST API.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/tomasrivera/flights-service/internal/app"
	"github.com/tomasrivera/flights-service/internal/app/domain/flight"
	"github.com/tomasrivera/flights-service/internal/app/metrics"
	"github.com/tomasrivera/flights-service/internal/app/services/flights"
	"github.com/tomasrivera/flights-service/internal/app/services/tasks"
	"github.com/tomasrivera/flights-service/internal/middleware"
	"github.com/tomasrivera/flights-service/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// Options tune the router construction.
type Options struct {
	Logger *logger.Logger
	// RateLimiter is optional; nil disables throttling.
	RateLimiter *middleware.RateLimiter
}

// NewHandler returns the router exposing the REST API.
func NewHandler(application *app.Application, opts Options) http.Handler {
	h := &handler{app: application}

	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("http")
	}

	r := mux.NewRouter()
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics())
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Handler())
	}

	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/flights", h.listFlights).Methods(http.MethodGet)
	r.HandleFunc("/flights", h.createFlight).Methods(http.MethodPost)
	r.HandleFunc("/flights/{id}", h.getFlight).Methods(http.MethodGet)
	r.HandleFunc("/flights/{id}", h.updateFlight).Methods(http.MethodPut)
	r.HandleFunc("/flights/{id}", h.deleteFlight).Methods(http.MethodDelete)
	r.HandleFunc("/flights/{id}/passengers", h.listPassengers).Methods(http.MethodGet)
	r.HandleFunc("/flights/{id}/passengers", h.addPassengers).Methods(http.MethodPost)
	r.HandleFunc("/flights/{id}/passengers/{pid:[0-9]+}", h.getPassenger).Methods(http.MethodGet)
	r.HandleFunc("/flights/{id}/passengers/{pid:[0-9]+}", h.updatePassenger).Methods(http.MethodPut)
	r.HandleFunc("/flights/{id}/passengers/{pid:[0-9]+}", h.removePassenger).Methods(http.MethodDelete)
	r.HandleFunc("/flights/{id}/overbooked_passengers", h.listOverbooked).Methods(http.MethodGet)

	r.HandleFunc("/tasks", h.createTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", h.getTask).Methods(http.MethodGet)

	return r
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, "Hello world")
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listFlights(w http.ResponseWriter, r *http.Request) {
	filter := flight.Filter{Limit: flight.DefaultLimit}
	q := r.URL.Query()

	filter.FlightCode = q.Get("flightCode")
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > flight.MaxLimit {
			writeErrorMessage(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			writeErrorMessage(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	summaries, err := h.app.Flights.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) getFlight(w http.ResponseWriter, r *http.Request) {
	f, err := h.app.Flights.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *handler) createFlight(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FlightCode string             `json:"flightCode"`
		Capacity   int                `json:"capacity"`
		Passengers []flight.Passenger `json:"passengers"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.app.Flights.Create(r.Context(), payload.FlightCode, payload.Capacity, payload.Passengers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateFlight(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FlightCode string              `json:"flightCode"`
		Capacity   int                 `json:"capacity"`
		Passengers *[]flight.Passenger `json:"passengers"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.app.Flights.Update(r.Context(), mux.Vars(r)["id"], flight.Update{
		FlightCode: payload.FlightCode,
		Capacity:   payload.Capacity,
		Passengers: payload.Passengers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteFlight(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Flights.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listPassengers(w http.ResponseWriter, r *http.Request) {
	filter, err := passengerFilterFromQuery(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	passengers, err := h.app.Flights.ListPassengers(r.Context(), mux.Vars(r)["id"], filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, passengers)
}

func (h *handler) addPassengers(w http.ResponseWriter, r *http.Request) {
	var payload []flight.Passenger
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := h.app.Flights.AddPassengers(r.Context(), mux.Vars(r)["id"], payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *handler) getPassenger(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Flights.GetPassenger(r.Context(), mux.Vars(r)["id"], passengerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) updatePassenger(w http.ResponseWriter, r *http.Request) {
	var patch flight.PassengerPatch
	if err := decodeJSON(r.Body, &patch); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.app.Flights.UpdatePassenger(r.Context(), mux.Vars(r)["id"], passengerID(r), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) removePassenger(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Flights.RemovePassenger(r.Context(), mux.Vars(r)["id"], passengerID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listOverbooked(w http.ResponseWriter, r *http.Request) {
	passengers, err := h.app.Flights.ListOverbooked(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, passengers)
}

func (h *handler) createTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Duration float64 `json:"duration"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.app.Tasks.Enqueue(r.Context(), payload.Duration)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, t)
}

func (h *handler) getTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status, err := h.app.Tasks.Status(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

func passengerID(r *http.Request) int {
	// The route pattern guarantees digits.
	id, _ := strconv.Atoi(mux.Vars(r)["pid"])
	return id
}

func passengerFilterFromQuery(r *http.Request) (flight.PassengerFilter, error) {
	var filter flight.PassengerFilter
	q := r.URL.Query()

	if raw := q.Get("name"); raw != "" {
		filter.Name = &raw
	}
	if raw := q.Get("reservationId"); raw != "" {
		filter.ReservationID = &raw
	}
	if raw := q.Get("flightCategory"); raw != "" {
		category := flight.Category(raw)
		if !category.Valid() {
			return flight.PassengerFilter{}, errors.New("unknown flight category")
		}
		filter.Category = &category
	}
	if raw := q.Get("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil || age < 0 {
			return flight.PassengerFilter{}, errors.New("age must be a non-negative integer")
		}
		filter.Age = &age
	}
	if raw := q.Get("hasConnections"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return flight.PassengerFilter{}, errors.New("hasConnections must be a boolean")
		}
		filter.HasConnections = &v
	}
	if raw := q.Get("hasCheckedBaggage"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return flight.PassengerFilter{}, errors.New("hasCheckedBaggage must be a boolean")
		}
		filter.HasCheckedBaggage = &v
	}
	return filter, nil
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps service errors to HTTP responses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, flights.ErrFlightNotFound),
		errors.Is(err, flights.ErrPassengerNotFound),
		errors.Is(err, tasks.ErrTaskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, flights.ErrDuplicatePassenger):
		status = http.StatusConflict
	case errors.Is(err, flights.ErrInvalidFlight),
		errors.Is(err, tasks.ErrInvalidDuration):
		status = http.StatusBadRequest
	}
	writeErrorMessage(w, status, err.Error())
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
