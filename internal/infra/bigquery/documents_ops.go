package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	documentsTable = "documents"
	documentColumns = `
			document_id,
			run_id,
			source_uri,
			media_type,
			document_kind,
			amount,
			due_or_transaction_date,
			beneficiary_name,
			payer_name,
			beneficiary_tax_id,
			payer_tax_id,
			document_line_code,
			barcode,
			external_transaction_id,
			pix_key,
			bank_code,
			description,
			extraction_method,
			extraction_state,
			extraction_confidence,
			incomplete,
			raw_source_excerpt,
			fingerprint,
			category,
			category_confidence,
			validation_valid,
			violations,
			user_confirmed,
			created_ts`
)

// InsertDocumentWithClient streams one document row.
func InsertDocumentWithClient(ctx context.Context, client *bigquery.Client, dataset string, row *DocumentRow) error {
	inserter := client.Dataset(dataset).Table(documentsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertDocument: inserting row: %w", err)
	}
	return nil
}

// FindDocumentByFingerprintWithClient returns the oldest document with the
// given fingerprint, or nil when none exists.
func FindDocumentByFingerprintWithClient(ctx context.Context, client *bigquery.Client, dataset, fingerprint string) (*DocumentRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM `+"`%s.%s.%s`"+`
		WHERE fingerprint = @fingerprint
		ORDER BY created_ts ASC
		LIMIT 1
	`, documentColumns, client.Project(), dataset, documentsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "fingerprint", Value: fingerprint},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByFingerprint: reading query: %w", err)
	}

	var row DocumentRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByFingerprint: reading row: %w", err)
	}
	return &row, nil
}

// GetDocumentWithClient returns one document by id, or nil when absent.
func GetDocumentWithClient(ctx context.Context, client *bigquery.Client, dataset, documentID string) (*DocumentRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM `+"`%s.%s.%s`"+`
		WHERE document_id = @document_id
		LIMIT 1
	`, documentColumns, client.Project(), dataset, documentsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "document_id", Value: documentID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetDocument: reading query: %w", err)
	}

	var row DocumentRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetDocument: reading row: %w", err)
	}
	return &row, nil
}

// ListDocumentsWithClient returns documents newest first.
func ListDocumentsWithClient(ctx context.Context, client *bigquery.Client, dataset string, filter DocumentFilter) ([]*DocumentRow, error) {
	where, params := filterClause(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM `+"`%s.%s.%s`"+`
		%s
		ORDER BY created_ts DESC
		LIMIT %d
	`, documentColumns, client.Project(), dataset, documentsTable, where, limit))
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListDocuments: reading query: %w", err)
	}

	var documents []*DocumentRow
	for {
		var row DocumentRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListDocuments: iterating: %w", err)
		}
		documents = append(documents, &row)
	}
	return documents, nil
}

func filterClause(f DocumentFilter) (string, []bigquery.QueryParameter) {
	var (
		conds  []string
		params []bigquery.QueryParameter
	)
	if f.Kind != "" {
		conds = append(conds, "document_kind = @kind")
		params = append(params, bigquery.QueryParameter{Name: "kind", Value: f.Kind})
	}
	if !f.Since.IsZero() {
		conds = append(conds, "created_ts >= @since")
		params = append(params, bigquery.QueryParameter{Name: "since", Value: f.Since})
	}
	if len(conds) == 0 {
		return "", nil
	}
	clause := "WHERE " + conds[0]
	for _, c := range conds[1:] {
		clause += " AND " + c
	}
	return clause, params
}
