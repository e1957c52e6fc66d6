package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// DeleteDocumentWithClient removes a document with its attempts and runs.
// Children go first so a partial failure never leaves orphans behind.
func DeleteDocumentWithClient(ctx context.Context, client *bigquery.Client, dataset, documentID string) error {
	for _, table := range []string{attemptsTable, extractionRunsTable, documentsTable} {
		if err := deleteByDocumentID(ctx, client, dataset, table, documentID); err != nil {
			return fmt.Errorf("DeleteDocument: deleting from %s: %w", table, err)
		}
	}
	return nil
}

func deleteByDocumentID(ctx context.Context, client *bigquery.Client, dataset, table, documentID string) error {
	q := client.Query(fmt.Sprintf(`
		DELETE FROM `+"`%s.%s.%s`"+`
		WHERE document_id = @document_id
	`, client.Project(), dataset, table))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "document_id", Value: documentID},
	}
	return runAndWait(ctx, q)
}
