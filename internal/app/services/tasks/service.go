// Package tasks provides deferred background work: the API enqueues tasks
// onto a queue and a worker pool drains it. A task sleeps for its requested
// duration and reports completion.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomasrivera/flights-service/internal/app/domain/task"
	"github.com/tomasrivera/flights-service/internal/app/storage"
	"github.com/tomasrivera/flights-service/pkg/logger"
)

// ErrTaskNotFound is returned when the task ID is unknown or expired.
var ErrTaskNotFound = errors.New("task not found")

// ErrInvalidDuration is returned for non-positive task durations.
var ErrInvalidDuration = errors.New("duration must be positive")

const maxDurationSeconds = 300

// Service enqueues tasks and reports their status.
type Service struct {
	queue storage.Queue
	log   *logger.Logger
}

// New creates a tasks service.
func New(queue storage.Queue, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("tasks")
	}
	return &Service{queue: queue, log: log}
}

// Enqueue submits a new sleep task and returns it with its generated ID.
func (s *Service) Enqueue(ctx context.Context, durationSeconds float64) (task.Task, error) {
	if durationSeconds <= 0 {
		return task.Task{}, ErrInvalidDuration
	}
	if durationSeconds > maxDurationSeconds {
		return task.Task{}, fmt.Errorf("%w: at most %d seconds", ErrInvalidDuration, maxDurationSeconds)
	}

	t := task.Task{
		ID:       uuid.NewString(),
		Duration: durationSeconds,
		Status:   task.StatusQueued,
		Queued:   time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("enqueue task: %w", err)
	}

	s.log.WithField("task_id", t.ID).Info("task queued")
	return t, nil
}

// Status returns the task's current status.
func (s *Service) Status(ctx context.Context, id string) (task.Status, error) {
	status, err := s.queue.GetStatus(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrTaskNotFound
	}
	return status, err
}
