package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomasrivera/flights-service/internal/app/domain/task"
	"github.com/tomasrivera/flights-service/internal/app/metrics"
	"github.com/tomasrivera/flights-service/internal/app/storage"
	"github.com/tomasrivera/flights-service/pkg/logger"
)

// Worker drains the task queue with a pool of goroutines. It implements
// system.Service.
type Worker struct {
	queue       storage.Queue
	concurrency int
	log         *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a worker pool over the given queue.
func NewWorker(queue storage.Queue, concurrency int, log *logger.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.NewDefault("worker")
	}
	return &Worker{queue: queue, concurrency: concurrency, log: log}
}

// Name implements system.Service.
func (w *Worker) Name() string { return "task-worker" }

// Start launches the pool. The parent context only covers startup; the pool
// runs until Stop is called.
func (w *Worker) Start(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
	w.log.WithField("concurrency", w.concurrency).Info("task worker started")
	return nil
}

// Stop cancels the pool and waits for in-flight tasks, bounded by ctx.
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	log := w.log.WithField("worker", id)

	for {
		t, err := w.queue.Dequeue(ctx)
		if errors.Is(err, storage.ErrQueueEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("dequeue failed")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		w.process(ctx, log, t)
	}
}

func (w *Worker) process(ctx context.Context, log *logger.Logger, t task.Task) {
	log = log.WithField("task_id", t.ID)
	if err := w.queue.SetStatus(ctx, t.ID, task.StatusStarted); err != nil {
		log.WithError(err).Warn("mark task started")
	}
	log.Info("STARTED")

	select {
	case <-time.After(time.Duration(t.Duration * float64(time.Second))):
	case <-ctx.Done():
		// Shutdown mid-task: leave it marked started so the status is
		// honest about the interruption.
		metrics.RecordTaskProcessed(string(task.StatusFailed))
		return
	}

	if err := w.queue.SetStatus(ctx, t.ID, task.StatusFinished); err != nil {
		log.WithError(err).Warn("mark task finished")
	}
	metrics.RecordTaskProcessed(string(task.StatusFinished))
	log.Info("FINISHED")
}
