// internal/model/job.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the outcome of a print job
type JobStatus string

const (
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// PrintJob records one submitted ticket: how it was delivered, how large the
// assembled stream was, and how the submission ended.
type PrintJob struct {
	ID        uuid.UUID `json:"id"`
	Transport string    `json:"transport"`
	Target    string    `json:"target"`
	Blocks    int       `json:"blocks"`
	Bytes     int       `json:"bytes"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	Duration  string    `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}
