package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
)

const (
	extractionRunsTable = "extraction_runs"
	attemptsTable       = "extraction_attempts"

	maxErrorMessageLen = 2000
)

// StartExtractionRunWithClient inserts a RUNNING row and returns its id.
func StartExtractionRunWithClient(ctx context.Context, client *bigquery.Client, dataset, sourceURI string) (string, error) {
	runID := uuid.NewString()

	q := client.Query(fmt.Sprintf(`
		INSERT `+"`%s.%s.%s`"+` (
			run_id,
			source_uri,
			started_ts,
			status
		)
		VALUES (
			@run_id,
			@source_uri,
			@started_ts,
			@status
		)
	`, client.Project(), dataset, extractionRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "source_uri", Value: sourceURI},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: RunStatusRunning},
	}

	if err := runAndWait(ctx, q); err != nil {
		return "", fmt.Errorf("StartExtractionRun: %w", err)
	}
	return runID, nil
}

// MarkExtractionRunFailedWithClient records the failure. Errors are logged,
// never returned: the caller is already handling a failure.
func MarkExtractionRunFailedWithClient(ctx context.Context, client *bigquery.Client, dataset, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		if len(errMsg) > maxErrorMessageLen {
			errMsg = errMsg[:maxErrorMessageLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE `+"`%s.%s.%s`"+`
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, client.Project(), dataset, extractionRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	if err := runAndWait(ctx, q); err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkExtractionRunFailed: update failed")
	}
}

// MarkExtractionRunSucceededWithClient closes the run and links the document.
func MarkExtractionRunSucceededWithClient(ctx context.Context, client *bigquery.Client, dataset, runID, documentID string) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE `+"`%s.%s.%s`"+`
		SET status = @status,
		    finished_ts = @finished_ts,
		    document_id = @document_id,
		    error_message = ""
		WHERE run_id = @run_id
	`, client.Project(), dataset, extractionRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "document_id", Value: documentID},
		{Name: "run_id", Value: runID},
	}

	if err := runAndWait(ctx, q); err != nil {
		return fmt.Errorf("MarkExtractionRunSucceeded: %w", err)
	}
	return nil
}

// InsertAttemptsWithClient streams the attempt rows of a run.
func InsertAttemptsWithClient(ctx context.Context, client *bigquery.Client, dataset string, rows []*AttemptRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := client.Dataset(dataset).Table(attemptsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertAttempts: inserting %d rows: %w", len(rows), err)
	}
	return nil
}

func runAndWait(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
