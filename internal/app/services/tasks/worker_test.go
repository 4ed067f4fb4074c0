package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomasrivera/flights-service/internal/app/domain/task"
	"github.com/tomasrivera/flights-service/internal/app/storage"
)

func TestEnqueueValidation(t *testing.T) {
	svc := New(storage.NewMemoryQueue(4), nil)

	if _, err := svc.Enqueue(context.Background(), 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if _, err := svc.Enqueue(context.Background(), -1); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration for negative, got %v", err)
	}
	if _, err := svc.Enqueue(context.Background(), maxDurationSeconds+1); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration for oversized, got %v", err)
	}
}

func TestStatusUnknownTask(t *testing.T) {
	svc := New(storage.NewMemoryQueue(4), nil)

	if _, err := svc.Status(context.Background(), "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestWorkerProcessesTask(t *testing.T) {
	queue := storage.NewMemoryQueue(4)
	svc := New(queue, nil)
	worker := NewWorker(queue, 1, nil)

	if err := worker.Start(context.Background()); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := worker.Stop(ctx); err != nil {
			t.Fatalf("stop worker: %v", err)
		}
	}()

	queued, err := svc.Enqueue(context.Background(), 0.01)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, err := svc.Status(context.Background(), queued.ID)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status == task.StatusFinished {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task never finished")
}
