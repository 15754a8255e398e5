// Package jobs defines asynchronous document parsing jobs and the queue and
// store contracts that run them.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/finance-parser/internal/domain"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job produced a result.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed. Failed jobs are not retried.
	JobStatusFailed JobStatus = "failed"
)

// ErrJobNotFound is returned by a JobStore for unknown IDs.
var ErrJobNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// ParseDocumentJob is one document to run through the parser.
// Exactly one of Text and SourceURI is set.
type ParseDocumentJob struct {
	JobID string `json:"job_id"`

	// Text is inline document text.
	Text string `json:"text,omitempty"`

	// SourceURI is a loader reference (gs:// URI or object name).
	SourceURI string `json:"source_uri,omitempty"`

	DocType domain.DocType `json:"doc_type"`
	Status  JobStatus      `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	Result *domain.ParsingResult `json:"result,omitempty"`
}

// Validate checks that the job can be run.
func (j *ParseDocumentJob) Validate() error {
	if (j.Text == "") == (j.SourceURI == "") {
		return errors.New("exactly one of text or source_uri is required")
	}
	if _, err := domain.ParseDocType(string(j.DocType)); err != nil {
		return err
	}
	return nil
}

// Publisher enqueues jobs.
type Publisher interface {
	Publish(ctx context.Context, job *ParseDocumentJob) error
	Close() error
}

// Consumer runs queued jobs.
type Consumer interface {
	// Start begins consuming jobs. The handler is called once per job.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job, setting job.Result on success.
type JobHandler func(ctx context.Context, job *ParseDocumentJob) error

// JobStore stores job state.
type JobStore interface {
	SaveJob(ctx context.Context, job *ParseDocumentJob) error
	GetJob(ctx context.Context, jobID string) (*ParseDocumentJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ParseDocumentJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status  JobStatus
	DocType domain.DocType

	// Limit limits the number of results. Zero means no limit.
	Limit int

	// Offset for pagination.
	Offset int
}
