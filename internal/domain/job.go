package domain

import (
	"context"
	"time"
)

type JobStatus string

const (
	StatusPending     JobStatus = "pending"
	StatusDownloading JobStatus = "downloading"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// TransferJob identifies one download session: the source URL, the
// destination path and the tuning knobs. It is created once when the job is
// submitted and never mutated afterwards.
type TransferJob struct {
	URL     string        `json:"url"`
	Dest    string        `json:"dest"`
	Workers int           `json:"workers"`
	Timeout time.Duration `json:"timeout"`
}

// QueueItem represents one transfer from submission to completion.
type QueueItem struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Status JobStatus `json:"status"`

	Job *TransferJob `json:"job"`

	TotalBytes int64 `json:"total_bytes"`

	// State carries the live counters while the transfer is running.
	// It is nil for items loaded from the store.
	State *TransferState `json:"-"`

	// BytesWritten is the persisted byte count; while downloading the live
	// value is read from State instead.
	BytesWritten int64 `json:"bytes_written"`

	StartedAt time.Time `json:"started_at"`
	Error     string    `json:"error,omitempty"`

	CancelFunc context.CancelFunc `json:"-"`
}

// Downloaded returns the most current byte count available for this item.
func (q *QueueItem) Downloaded() int64 {
	if q.State != nil {
		return q.State.Downloaded()
	}
	return q.BytesWritten
}
