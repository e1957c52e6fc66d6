package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// Extraction run statuses.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// ExtractionRunRow tracks one pass of the processing pipeline over a source.
type ExtractionRunRow struct {
	RunID      string `bigquery:"run_id"`      // REQUIRED
	DocumentID string `bigquery:"document_id"` // NULLABLE, set on success
	SourceURI  string `bigquery:"source_uri"`  // NULLABLE

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	Status       string `bigquery:"status"`        // REQUIRED
	ErrorMessage string `bigquery:"error_message"` // NULLABLE
}

// AttemptRow is one backend attempt within a run.
type AttemptRow struct {
	RunID        string    `bigquery:"run_id"`        // REQUIRED
	DocumentID   string    `bigquery:"document_id"`   // REQUIRED
	AttemptIndex int64     `bigquery:"attempt_index"` // REQUIRED
	Method       string    `bigquery:"method"`        // REQUIRED
	Outcome      string    `bigquery:"outcome"`       // REQUIRED
	Reason       string    `bigquery:"reason"`        // NULLABLE
	DurationMS   int64     `bigquery:"duration_ms"`   // REQUIRED
	RecordedTS   time.Time `bigquery:"recorded_ts"`   // REQUIRED
}
