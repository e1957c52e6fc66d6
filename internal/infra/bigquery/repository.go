// Package bigquery persists extracted documents, extraction runs and their
// cascade attempts in BigQuery.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/config"
)

// Repository holds a shared BigQuery client so each operation reuses one
// connection.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

// NewRepository creates a client for the configured project.
func NewRepository(ctx context.Context, cfg config.GCP) (*Repository, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("NewRepository: gcp.project_id is not set")
	}
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, dataset: cfg.Dataset}, nil
}

// Client exposes the underlying client for the migration tool.
func (r *Repository) Client() *bigquery.Client {
	return r.client
}

// Close releases the client.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *Repository) InsertDocument(ctx context.Context, row *DocumentRow) error {
	return InsertDocumentWithClient(ctx, r.client, r.dataset, row)
}

func (r *Repository) FindDocumentByFingerprint(ctx context.Context, fingerprint string) (*DocumentRow, error) {
	return FindDocumentByFingerprintWithClient(ctx, r.client, r.dataset, fingerprint)
}

func (r *Repository) GetDocument(ctx context.Context, documentID string) (*DocumentRow, error) {
	return GetDocumentWithClient(ctx, r.client, r.dataset, documentID)
}

func (r *Repository) ListDocuments(ctx context.Context, filter DocumentFilter) ([]*DocumentRow, error) {
	return ListDocumentsWithClient(ctx, r.client, r.dataset, filter)
}

func (r *Repository) DeleteDocument(ctx context.Context, documentID string) error {
	return DeleteDocumentWithClient(ctx, r.client, r.dataset, documentID)
}

func (r *Repository) StartExtractionRun(ctx context.Context, sourceURI string) (string, error) {
	return StartExtractionRunWithClient(ctx, r.client, r.dataset, sourceURI)
}

// MarkExtractionRunFailed only logs on error.
func (r *Repository) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {
	MarkExtractionRunFailedWithClient(ctx, r.client, r.dataset, runID, runErr)
}

func (r *Repository) MarkExtractionRunSucceeded(ctx context.Context, runID, documentID string) error {
	return MarkExtractionRunSucceededWithClient(ctx, r.client, r.dataset, runID, documentID)
}

func (r *Repository) InsertAttempts(ctx context.Context, rows []*AttemptRow) error {
	return InsertAttemptsWithClient(ctx, r.client, r.dataset, rows)
}
