// Package task defines the background task model processed by the worker
// pool.
package task

import "time"

// Status of a task in the queue.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusStarted  Status = "started"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// Task is a unit of deferred work: sleep for Duration seconds and report
// completion. It mirrors the shape pushed onto the queue.
type Task struct {
	ID       string    `json:"id"`
	Duration float64   `json:"duration"`
	Status   Status    `json:"status"`
	Queued   time.Time `json:"queuedAt"`
}
