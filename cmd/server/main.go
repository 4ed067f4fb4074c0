// Command server runs the flights HTTP service. Exactly one application
// instance is constructed per process; it is started, served, and torn down
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/tomasrivera/flights-service/internal/app"
	"github.com/tomasrivera/flights-service/internal/app/httpapi"
	"github.com/tomasrivera/flights-service/internal/app/storage/postgres"
	"github.com/tomasrivera/flights-service/internal/app/storage/redisq"
	"github.com/tomasrivera/flights-service/internal/config"
	"github.com/tomasrivera/flights-service/internal/middleware"
	"github.com/tomasrivera/flights-service/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("server", logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	opts := app.Options{MaintenanceSchedule: "@every 1m"}
	if cfg.Worker.Enabled {
		opts.WorkerConcurrency = cfg.Worker.Concurrency
	}

	if cfg.Database.DSN != "" {
		db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(db); err != nil {
			return err
		}
		opts.Store = postgres.New(db)
	}

	queue, err := redisq.New(redisq.Options{
		Addr:     cfg.Redis.Addr(),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Worker.Queue)
	if err != nil {
		log.WithError(err).Warn("redis unavailable; falling back to in-memory task queue")
	} else {
		defer queue.Close()
		opts.Queue = queue
	}

	application, err := app.New(opts, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	handlerOpts := httpapi.Options{Logger: log.Named("http")}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		handlerOpts.RateLimiter = middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log.Named("ratelimit"))
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      httpapi.NewHandler(application, handlerOpts),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application shutdown")
	}

	log.Info("server stopped")
	return nil
}
