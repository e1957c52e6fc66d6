// Package notionsync exports extracted documents to a Notion database and
// marks due dates on their pages.
package notionsync

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
)

// DocumentLister is the read side of the document repository.
type DocumentLister interface {
	ListDocuments(ctx context.Context, filter bigquery.DocumentFilter) ([]*bigquery.DocumentRow, error)
}

// Exporter writes documents to the Notion documents database.
type Exporter struct {
	notion NotionService
}

func NewExporter(notion NotionService) *Exporter {
	return &Exporter{notion: notion}
}

// Export creates the page for a processed document. Documents waiting for
// user confirmation are exported too, flagged by status.
func (e *Exporter) Export(ctx context.Context, res domain.ProcessResult) error {
	status := StatusStored
	if res.AwaitingConfirm {
		status = StatusAwaitingConfirm
	}
	page := NewDocumentPage(res.Extraction.Document, res.Category, status)
	if _, err := e.notion.CreateDocumentPage(ctx, page); err != nil {
		return fmt.Errorf("Export: %w", err)
	}
	return nil
}

// Schedule sets the reminder date on the document's page.
func (e *Exporter) Schedule(ctx context.Context, documentID string, due civil.Date) error {
	pages, err := e.notion.DocumentPages(ctx)
	if err != nil {
		return fmt.Errorf("Schedule: %w", err)
	}

	page := ReminderPage(documentID, due)
	if pageID, ok := pages[documentID]; ok {
		err = e.notion.UpdateDocumentPage(ctx, pageID, page)
	} else {
		_, err = e.notion.CreateDocumentPage(ctx, page)
	}
	if err != nil {
		return fmt.Errorf("Schedule: %w", err)
	}
	return nil
}

// SyncStats counts what SyncDocuments did.
type SyncStats struct {
	Created int
	Skipped int
	Failed  int
}

// SyncDocuments exports every stored document created since the given time
// that has no page yet. Pages are matched on the Document ID title.
func SyncDocuments(ctx context.Context, repo DocumentLister, notion NotionService, since time.Time, dryRun bool) (SyncStats, error) {
	log := logger.FromContext(ctx)
	var stats SyncStats

	log.Info().
		Time("since", since).
		Bool("dry_run", dryRun).
		Msg("Starting documents sync to Notion")

	rows, err := repo.ListDocuments(ctx, bigquery.DocumentFilter{Since: since, Limit: 1000})
	if err != nil {
		return stats, fmt.Errorf("failed to query documents: %w", err)
	}

	existing, err := notion.DocumentPages(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().
		Int("document_count", len(rows)).
		Int("notion_page_count", len(existing)).
		Msg("Retrieved documents and pages")

	for _, row := range rows {
		if _, ok := existing[row.DocumentID]; ok {
			stats.Skipped++
			continue
		}
		if dryRun {
			log.Info().Str("document_id", row.DocumentID).Msg("[DRY RUN] Would create Notion page")
			stats.Created++
			continue
		}

		doc, cat := row.ToDomain()
		status := StatusStored
		if !row.Valid || row.Incomplete {
			status = StatusAwaitingConfirm
		}
		pageID, err := notion.CreateDocumentPage(ctx, NewDocumentPage(doc, cat, status))
		if err != nil {
			log.Warn().Err(err).Str("document_id", row.DocumentID).Msg("Failed to create Notion page")
			stats.Failed++
			continue
		}
		log.Info().
			Str("document_id", row.DocumentID).
			Str("page_id", pageID).
			Msg("Created Notion page for document")
		stats.Created++
	}

	log.Info().
		Int("created", stats.Created).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("Documents sync completed")
	return stats, nil
}
