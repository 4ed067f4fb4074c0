package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/tomasrivera/flights-service/internal/app/domain/task"
)

// ErrQueueEmpty is returned by Dequeue when no task became available within
// the poll window.
var ErrQueueEmpty = errors.New("queue empty")

// Queue transports background tasks between the API and the worker pool and
// tracks their status.
type Queue interface {
	Enqueue(ctx context.Context, t task.Task) error
	// Dequeue blocks for a bounded interval waiting for work and returns
	// ErrQueueEmpty when nothing arrived.
	Dequeue(ctx context.Context) (task.Task, error)
	SetStatus(ctx context.Context, id string, status task.Status) error
	// GetStatus returns ErrNotFound for unknown task IDs.
	GetStatus(ctx context.Context, id string) (task.Status, error)
}

// MemoryQueue is an in-process Queue for tests and single-node development.
type MemoryQueue struct {
	mu       sync.Mutex
	tasks    chan task.Task
	statuses map[string]task.Status
}

var _ Queue = (*MemoryQueue)(nil)

// NewMemoryQueue creates a MemoryQueue with a fixed buffer.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 128
	}
	return &MemoryQueue{
		tasks:    make(chan task.Task, size),
		statuses: make(map[string]task.Status),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, t task.Task) error {
	if err := q.SetStatus(ctx, t.ID, task.StatusQueued); err != nil {
		return err
	}
	select {
	case q.tasks <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (task.Task, error) {
	select {
	case t := <-q.tasks:
		return t, nil
	case <-ctx.Done():
		return task.Task{}, ctx.Err()
	}
}

func (q *MemoryQueue) SetStatus(_ context.Context, id string, status task.Status) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statuses[id] = status
	return nil
}

func (q *MemoryQueue) GetStatus(_ context.Context, id string) (task.Status, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	status, ok := q.statuses[id]
	if !ok {
		return "", ErrNotFound
	}
	return status, nil
}
