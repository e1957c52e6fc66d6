package notionsync

import "context"

// NotionService is the documents database as the exporter sees it. Pages
// are keyed by the Document ID title.
type NotionService interface {
	CreateDocumentPage(ctx context.Context, page DocumentPage) (string, error)
	UpdateDocumentPage(ctx context.Context, pageID string, page DocumentPage) error
	// DocumentPages maps every document id in the database to its page id.
	DocumentPages(ctx context.Context) (map[string]string, error)
}
