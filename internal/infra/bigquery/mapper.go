package bigquery

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/shopspring/decimal"
)

// NewDocumentRow maps a processed document to its table row.
func NewDocumentRow(res domain.ProcessResult, runID, sourceURI, mediaType string) (*DocumentRow, error) {
	doc := res.Extraction.Document

	row := &DocumentRow{
		DocumentID:            doc.ID,
		RunID:                 runID,
		SourceURI:             sourceURI,
		MediaType:             mediaType,
		DocumentKind:          string(doc.Kind),
		BeneficiaryName:       doc.BeneficiaryName,
		PayerName:             doc.PayerName,
		BeneficiaryTaxID:      doc.BeneficiaryTaxID,
		PayerTaxID:            doc.PayerTaxID,
		LineCode:              doc.LineCode,
		Barcode:               doc.Barcode,
		ExternalTransactionID: doc.ExternalTransactionID,
		PixKey:                doc.PixKey,
		BankCode:              doc.BankCode,
		Description:           doc.Description,
		ExtractionMethod:      string(doc.Method),
		ExtractionState:       string(res.Extraction.State),
		ExtractionConfidence:  doc.Confidence,
		Incomplete:            doc.Incomplete,
		RawSourceExcerpt:      doc.RawSourceExcerpt,
		Fingerprint:           doc.Fingerprint,
		Valid:                 res.Validation.Valid,
		CreatedTS:             doc.CreatedAt,
	}

	if !doc.Amount.IsZero() {
		row.Amount = doc.Amount.Rat()
	}
	if doc.Date != nil {
		row.Date = bigquery.NullDate{Date: *doc.Date, Valid: true}
	}
	if res.Category != nil {
		row.Category = string(res.Category.Category)
		row.CategoryConfidence = bigquery.NullFloat64{Float64: res.Category.Confidence, Valid: true}
	}
	if len(res.Validation.Violations) > 0 {
		b, err := json.Marshal(res.Validation.Violations)
		if err != nil {
			return nil, fmt.Errorf("NewDocumentRow: marshal violations: %w", err)
		}
		row.Violations = bigquery.NullJSON{JSONVal: string(b), Valid: true}
	}
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now().UTC()
	}
	return row, nil
}

// ToDomain rebuilds the document and its category from a row.
func (r *DocumentRow) ToDomain() (domain.ExtractedDocument, *domain.CategorySuggestion) {
	doc := domain.ExtractedDocument{
		ID:                    r.DocumentID,
		Kind:                  domain.DocumentKind(r.DocumentKind),
		BeneficiaryName:       r.BeneficiaryName,
		PayerName:             r.PayerName,
		BeneficiaryTaxID:      r.BeneficiaryTaxID,
		PayerTaxID:            r.PayerTaxID,
		LineCode:              r.LineCode,
		Barcode:               r.Barcode,
		ExternalTransactionID: r.ExternalTransactionID,
		PixKey:                r.PixKey,
		BankCode:              r.BankCode,
		Description:           r.Description,
		Confidence:            r.ExtractionConfidence,
		Method:                domain.Method(r.ExtractionMethod),
		RawSourceExcerpt:      r.RawSourceExcerpt,
		Incomplete:            r.Incomplete,
		Fingerprint:           r.Fingerprint,
		CreatedAt:             r.CreatedTS,
	}
	if r.Amount != nil {
		doc.Amount = decimal.NewFromBigRat(r.Amount, 2)
	}
	if r.Date.Valid {
		d := r.Date.Date
		doc.Date = &d
	}

	var cat *domain.CategorySuggestion
	if r.Category != "" {
		cat = &domain.CategorySuggestion{Category: domain.Category(r.Category)}
		if r.CategoryConfidence.Valid {
			cat.Confidence = r.CategoryConfidence.Float64
		}
	}
	return doc, cat
}

// NewAttemptRows maps the cascade attempts of one run.
func NewAttemptRows(runID, documentID string, attempts []domain.Attempt, now time.Time) []*AttemptRow {
	rows := make([]*AttemptRow, 0, len(attempts))
	for i, a := range attempts {
		rows = append(rows, &AttemptRow{
			RunID:        runID,
			DocumentID:   documentID,
			AttemptIndex: int64(i),
			Method:       string(a.Method),
			Outcome:      string(a.Outcome),
			Reason:       a.Reason,
			DurationMS:   a.Duration.Milliseconds(),
			RecordedTS:   now,
		})
	}
	return rows
}
