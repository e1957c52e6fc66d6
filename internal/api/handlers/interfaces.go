package handlers

import (
	"context"
	"io"

	"github.com/mlisboa17/assistente-pessoal/internal/confirmation"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	infra "github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/pipeline"
)

// Processor runs the extraction pipeline. *pipeline.Processor satisfies it.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (domain.ProcessResult, error)
	Confirm(ctx context.Context, documentID string, patch domain.Patch) (domain.ProcessResult, error)
}

// DocumentReader reads stored documents.
type DocumentReader interface {
	GetDocument(ctx context.Context, documentID string) (*infra.DocumentRow, error)
	ListDocuments(ctx context.Context, filter infra.DocumentFilter) ([]*infra.DocumentRow, error)
}

// PendingReader reads parked documents.
type PendingReader interface {
	Get(ctx context.Context, documentID string) (confirmation.Pending, error)
	List(ctx context.Context) ([]confirmation.Pending, error)
}

// Uploader stores raw files and returns their gs:// URI.
type Uploader interface {
	Upload(ctx context.Context, bucket, object string, r io.Reader, contentType string) (string, error)
}

// Categorizer suggests a spending category.
type Categorizer interface {
	Suggest(freeText, recipient string) domain.CategorySuggestion
}
