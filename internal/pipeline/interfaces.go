package pipeline

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/mlisboa17/assistente-pessoal/internal/backend"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	infra "github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
)

// SourceFetcher downloads source files referenced by URI.
type SourceFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Extractor runs the backend cascade.
type Extractor interface {
	Extract(ctx context.Context, in backend.Input) (domain.ExtractionResult, error)
}

type Validator interface {
	Validate(doc domain.ExtractedDocument) domain.ValidationResult
}

type Categorizer interface {
	Suggest(freeText, recipient string) domain.CategorySuggestion
}

// DocumentStore is the record-append side of the repository.
type DocumentStore interface {
	InsertDocument(ctx context.Context, row *infra.DocumentRow) error
	// FindDocumentByFingerprint returns nil, nil when nothing matches.
	FindDocumentByFingerprint(ctx context.Context, fingerprint string) (*infra.DocumentRow, error)
}

// RunRecorder tracks one extraction run and its cascade attempts.
type RunRecorder interface {
	StartExtractionRun(ctx context.Context, sourceURI string) (string, error)
	MarkExtractionRunFailed(ctx context.Context, runID string, runErr error)
	MarkExtractionRunSucceeded(ctx context.Context, runID, documentID string) error
	InsertAttempts(ctx context.Context, rows []*infra.AttemptRow) error
}

// ReminderScheduler is told about payments that fall due in the future.
type ReminderScheduler interface {
	Schedule(ctx context.Context, documentID string, due civil.Date) error
}

// Exporter mirrors processed documents to an external tool.
type Exporter interface {
	Export(ctx context.Context, res domain.ProcessResult) error
}
