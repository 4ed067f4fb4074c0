// Package maintenance runs periodic housekeeping jobs on a cron schedule.
// The only job today refreshes the stored-flights gauge.
package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomasrivera/flights-service/internal/app/metrics"
	"github.com/tomasrivera/flights-service/internal/app/storage"
	"github.com/tomasrivera/flights-service/pkg/logger"
)

// Service schedules housekeeping jobs. It implements system.Service.
type Service struct {
	store    storage.FlightStore
	log      *logger.Logger
	schedule string
	cron     *cron.Cron
}

// New creates the maintenance service. An empty schedule defaults to every
// minute.
func New(store storage.FlightStore, schedule string, log *logger.Logger) *Service {
	if schedule == "" {
		schedule = "@every 1m"
	}
	if log == nil {
		log = logger.NewDefault("maintenance")
	}
	return &Service{store: store, log: log, schedule: schedule}
}

// Name implements system.Service.
func (s *Service) Name() string { return "maintenance" }

// Start registers the cron jobs and launches the scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.refreshFlightGauge); err != nil {
		return err
	}
	s.cron.Start()

	// Prime the gauge so it is accurate before the first tick.
	s.refreshFlightGauge()
	return nil
}

// Stop halts the scheduler and waits for running jobs, bounded by ctx.
func (s *Service) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) refreshFlightGauge() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := s.store.CountFlights(ctx)
	if err != nil {
		s.log.WithError(err).Warn("count flights")
		return
	}
	metrics.SetFlightsTotal(count)
}
