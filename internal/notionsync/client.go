package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

const pageSize = 100

// NotionClient implements NotionService with the notionapi SDK, bound to a
// single documents database.
type NotionClient struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
}

func NewNotionClient(token, databaseID string) *NotionClient {
	return &NotionClient{
		client:     notionapi.NewClient(notionapi.Token(token)),
		databaseID: notionapi.DatabaseID(databaseID),
	}
}

// CreateDocumentPage adds a page to the database and returns its id.
func (n *NotionClient) CreateDocumentPage(ctx context.Context, page DocumentPage) (string, error) {
	created, err := n.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: n.databaseID,
		},
		Properties: page.Properties(),
	})
	if err != nil {
		return "", fmt.Errorf("CreateDocumentPage %s: %w", page.DocumentID, err)
	}
	return string(created.ID), nil
}

func (n *NotionClient) UpdateDocumentPage(ctx context.Context, pageID string, page DocumentPage) error {
	req := &notionapi.PageUpdateRequest{Properties: page.Properties()}
	if _, err := n.client.Page.Update(ctx, notionapi.PageID(pageID), req); err != nil {
		return fmt.Errorf("UpdateDocumentPage %s: %w", page.DocumentID, err)
	}
	return nil
}

// DocumentPages follows the query cursor until the database is exhausted.
// Pages without a Document ID title are ignored.
func (n *NotionClient) DocumentPages(ctx context.Context) (map[string]string, error) {
	pages := map[string]string{}
	var cursor notionapi.Cursor
	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: pageSize, StartCursor: cursor}
		resp, err := n.client.Database.Query(ctx, n.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("DocumentPages: %w", err)
		}
		indexPages(pages, resp.Results)
		if !resp.HasMore {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

func indexPages(index map[string]string, results []notionapi.Page) {
	for _, page := range results {
		if id := extractDocumentID(page); id != "" {
			index[id] = string(page.ID)
		}
	}
}

// extractDocumentID reads the title of a page returned by a query.
func extractDocumentID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropDocumentID]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok && len(title.Title) > 0 {
			return title.Title[0].PlainText
		}
	}
	return ""
}
