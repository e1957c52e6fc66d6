// Package jobs defines asynchronous extraction jobs and the queue contracts.
package jobs

import (
	"context"
	"errors"
	"time"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	// JobStatusRetrying means the last attempt failed and another is scheduled.
	JobStatusRetrying JobStatus = "retrying"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrQueueClosed = errors.New("queue is closed")

	// ErrPermanent marks handler errors that retrying cannot fix.
	ErrPermanent = errors.New("permanent failure")
)

// ExtractDocumentJob extracts one document stored in GCS.
type ExtractDocumentJob struct {
	JobID     string `json:"job_id"`
	SourceURI string `json:"source_uri"`
	KindHint  string `json:"kind_hint,omitempty"`

	// Set by the handler once the pipeline ran.
	DocumentID      string `json:"document_id,omitempty"`
	RunID           string `json:"run_id,omitempty"`
	State           string `json:"extraction_state,omitempty"`
	AwaitingConfirm bool   `json:"awaiting_confirmation,omitempty"`
	Duplicate       bool   `json:"duplicate,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

// Publisher enqueues jobs.
type Publisher interface {
	Publish(ctx context.Context, job *ExtractDocumentJob) error
	Close() error
}

// Consumer runs a handler over queued jobs.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	// Stop waits for in-flight jobs.
	Stop(ctx context.Context) error
}

// JobHandler processes a job and may fill its result fields. A returned error
// schedules a retry unless it wraps ErrPermanent.
type JobHandler func(ctx context.Context, job *ExtractDocumentJob) error

// JobStore keeps job state for the status endpoints.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExtractDocumentJob) error
	GetJob(ctx context.Context, jobID string) (*ExtractDocumentJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractDocumentJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs.
type JobFilter struct {
	SourceURI string
	Status    JobStatus
	Limit     int
	Offset    int
}
