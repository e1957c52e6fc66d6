package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/gcsuploader"
	"github.com/mlisboa17/assistente-pessoal/internal/jobs"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/orchestrator"
	"github.com/mlisboa17/assistente-pessoal/internal/pipeline"
)

// DocumentProcessor runs the pipeline for one request.
type DocumentProcessor interface {
	Process(ctx context.Context, req pipeline.Request) (domain.ProcessResult, error)
}

// ExtractJobHandler runs the pipeline for queued gs:// documents and copies
// the outcome onto the job. Inputs that can never succeed are marked
// permanent so the queue does not retry them.
func ExtractJobHandler(p DocumentProcessor) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.ExtractDocumentJob) error {
		log := logger.FromContext(ctx).With().
			Str("job_id", job.JobID).
			Str("gcs_uri", job.SourceURI).
			Logger()
		ctx = logger.WithContext(ctx, log)

		req := pipeline.Request{SourceURI: job.SourceURI}
		if job.KindHint != "" {
			k, ok := domain.ParseKind(job.KindHint)
			if !ok {
				return fmt.Errorf("%w: unknown kind hint %q", jobs.ErrPermanent, job.KindHint)
			}
			req.KindHint = &k
		}

		log.Info().Msg("Processing extraction job")

		res, err := p.Process(ctx, req)
		if err != nil {
			log.Error().Err(err).Msg("Pipeline execution failed")
			if permanent(err) {
				return fmt.Errorf("%w: %w", jobs.ErrPermanent, err)
			}
			return err
		}

		doc := res.Extraction.Document
		job.DocumentID = doc.ID
		if res.Duplicate {
			job.DocumentID = res.ExistingDocumentID
		}
		job.State = string(res.Extraction.State)
		job.AwaitingConfirm = res.AwaitingConfirm
		job.Duplicate = res.Duplicate

		log.Info().
			Str("document_id", job.DocumentID).
			Str("extraction_state", job.State).
			Bool("awaiting_confirmation", job.AwaitingConfirm).
			Msg("Pipeline execution completed successfully")
		return nil
	}
}

func permanent(err error) bool {
	return errors.Is(err, orchestrator.ErrUnsupportedMediaType) ||
		errors.Is(err, gcsuploader.ErrInvalidURI) ||
		errors.Is(err, pipeline.ErrNoSource)
}
