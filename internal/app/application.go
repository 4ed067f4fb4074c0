package app

import (
	"context"
	"fmt"

	"github.com/tomasrivera/flights-service/internal/app/services/flights"
	"github.com/tomasrivera/flights-service/internal/app/services/maintenance"
	"github.com/tomasrivera/flights-service/internal/app/services/tasks"
	"github.com/tomasrivera/flights-service/internal/app/storage"
	"github.com/tomasrivera/flights-service/internal/app/system"
	"github.com/tomasrivera/flights-service/pkg/logger"
)

// Options encapsulates the application's external dependencies. Nil stores
// and queues default to the in-memory implementations.
type Options struct {
	Store storage.FlightStore
	Queue storage.Queue

	// WorkerConcurrency sizes the task worker pool; zero disables it.
	WorkerConcurrency int
	// MaintenanceSchedule is a cron expression; empty uses the default.
	MaintenanceSchedule string
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Flights *flights.Service
	Tasks   *tasks.Service
}

// New builds a fully initialised application with the provided options.
func New(opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if opts.Store == nil {
		log.Warn("no flight store configured; using in-memory store")
		opts.Store = storage.NewMemory()
	}
	if opts.Queue == nil {
		log.Warn("no task queue configured; using in-memory queue")
		opts.Queue = storage.NewMemoryQueue(0)
	}

	manager := system.NewManager()

	flightsService := flights.New(opts.Store, log.Named("flights"))
	tasksService := tasks.New(opts.Queue, log.Named("tasks"))

	if err := manager.Register(system.NoopService{ServiceName: "flights"}); err != nil {
		return nil, fmt.Errorf("register flights service: %w", err)
	}

	if opts.WorkerConcurrency > 0 {
		worker := tasks.NewWorker(opts.Queue, opts.WorkerConcurrency, log.Named("worker"))
		if err := manager.Register(worker); err != nil {
			return nil, fmt.Errorf("register %s: %w", worker.Name(), err)
		}
	} else {
		log.Warn("task worker disabled; queued tasks will not be processed by this process")
	}

	janitor := maintenance.New(opts.Store, opts.MaintenanceSchedule, log.Named("maintenance"))
	if err := manager.Register(janitor); err != nil {
		return nil, fmt.Errorf("register %s: %w", janitor.Name(), err)
	}

	return &Application{
		manager: manager,
		log:     log,
		Flights: flightsService,
		Tasks:   tasksService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
