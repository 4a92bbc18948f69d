// Package upload tracks document ingestion: pre-submit validation, the
// background-task flow with its status polling, and the synchronous
// fallback when the backend cannot queue work.
package upload

import "time"

// Status is the lifecycle state of one ingestion task.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is the client-side tracking record for one backend ingestion
// job. It is created when the backend hands back a task id, mutated by
// the poller, and removed only by explicit dismissal once terminal.
type Task struct {
	ID        string    `json:"task_id"`
	Filename  string    `json:"filename"`
	Status    Status    `json:"status"`
	Progress  float64   `json:"progress,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
