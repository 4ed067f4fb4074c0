// Package redisq implements the task queue on Redis: a list for pending
// tasks plus per-task status keys with a bounded lifetime.
package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tomasrivera/flights-service/internal/app/domain/task"
	"github.com/tomasrivera/flights-service/internal/app/storage"
)

const (
	popTimeout = 2 * time.Second
	// Finished task statuses stay readable for a day.
	statusTTL = 24 * time.Hour
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// Queue is a storage.Queue backed by Redis.
type Queue struct {
	client *redis.Client
	key    string
}

var _ storage.Queue = (*Queue)(nil)

// New connects to Redis and returns a queue using the given list key.
func New(opts Options, key string) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Queue{client: client, key: key}, nil
}

// Close releases the underlying Redis connection.
func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) statusKey(id string) string {
	return q.key + ":status:" + id
}

func (q *Queue) Enqueue(ctx context.Context, t task.Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	if err := q.SetStatus(ctx, t.ID, task.StatusQueued); err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push task: %w", err)
	}
	return nil
}

func (q *Queue) Dequeue(ctx context.Context) (task.Task, error) {
	res, err := q.client.BRPop(ctx, popTimeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return task.Task{}, storage.ErrQueueEmpty
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("pop task: %w", err)
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return task.Task{}, fmt.Errorf("unexpected BRPOP reply of length %d", len(res))
	}

	var t task.Task
	if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
		return task.Task{}, fmt.Errorf("decode task: %w", err)
	}
	return t, nil
}

func (q *Queue) SetStatus(ctx context.Context, id string, status task.Status) error {
	if err := q.client.Set(ctx, q.statusKey(id), string(status), statusTTL).Err(); err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	return nil
}

func (q *Queue) GetStatus(ctx context.Context, id string) (task.Status, error) {
	val, err := q.client.Get(ctx, q.statusKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get task status: %w", err)
	}
	return task.Status(val), nil
}
