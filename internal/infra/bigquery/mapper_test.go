package bigquery

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() domain.ProcessResult {
	due := civil.Date{Year: 2025, Month: time.March, Day: 10}
	doc := domain.ExtractedDocument{
		ID:               "doc-1",
		Kind:             domain.KindBankSlip,
		Amount:           decimal.RequireFromString("150.00"),
		Date:             &due,
		BeneficiaryName:  "ENERGIA SA",
		BeneficiaryTaxID: "11222333000181",
		Barcode:          "34197101600000150001090000012345678901234567",
		Confidence:       0.9,
		Method:           domain.MethodVisionAI,
		Fingerprint:      "abc",
		CreatedAt:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	return domain.ProcessResult{
		Extraction: domain.ExtractionResult{Document: doc, State: domain.StateResolved},
		Validation: domain.NewValidationResult([]domain.Violation{{
			Rule:     domain.RuleStaleDueDate,
			Field:    domain.FieldDate,
			Message:  "old",
			Severity: domain.SeveritySoft,
		}}),
		Category: &domain.CategorySuggestion{Category: domain.CategoryHousing, Confidence: 0.4},
	}
}

func TestNewDocumentRow(t *testing.T) {
	row, err := NewDocumentRow(sampleResult(), "run-1", "gs://b/o.pdf", "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", row.DocumentID)
	assert.Equal(t, "run-1", row.RunID)
	assert.Equal(t, "bank_slip", row.DocumentKind)
	assert.Equal(t, "150", row.Amount.RatString())
	assert.True(t, row.Date.Valid)
	assert.Equal(t, "resolved", row.ExtractionState)
	assert.Equal(t, "housing", row.Category)
	assert.InDelta(t, 0.4, row.CategoryConfidence.Float64, 1e-9)
	assert.True(t, row.Valid)

	require.True(t, row.Violations.Valid)
	var v []domain.Violation
	require.NoError(t, json.Unmarshal([]byte(row.Violations.JSONVal), &v))
	assert.Equal(t, domain.RuleStaleDueDate, v[0].Rule)
}

func TestNewDocumentRow_OptionalColumnsStayNull(t *testing.T) {
	res := domain.ProcessResult{
		Extraction: domain.ExtractionResult{
			Document: domain.ExtractedDocument{ID: "x", Kind: domain.KindGenericReceipt},
			State:    domain.StateExhausted,
		},
		Validation: domain.NewValidationResult(nil),
	}

	row, err := NewDocumentRow(res, "", "", "")
	require.NoError(t, err)

	assert.Nil(t, row.Amount)
	assert.False(t, row.Date.Valid)
	assert.False(t, row.CategoryConfidence.Valid)
	assert.False(t, row.Violations.Valid)
	assert.False(t, row.CreatedTS.IsZero())
}

func TestDocumentRow_ToDomain(t *testing.T) {
	res := sampleResult()
	row, err := NewDocumentRow(res, "run-1", "", "")
	require.NoError(t, err)

	doc, cat := row.ToDomain()

	want := res.Extraction.Document
	assert.True(t, want.Amount.Equal(doc.Amount))
	assert.Equal(t, *want.Date, *doc.Date)
	assert.Equal(t, want.Barcode, doc.Barcode)
	assert.Equal(t, want.Method, doc.Method)
	assert.Equal(t, want.Fingerprint, doc.Fingerprint)
	require.NotNil(t, cat)
	assert.Equal(t, domain.CategoryHousing, cat.Category)
}

func TestNewAttemptRows(t *testing.T) {
	now := time.Now()
	rows := NewAttemptRows("run-1", "doc-1", []domain.Attempt{
		{Method: domain.MethodVisionAI, Outcome: domain.OutcomeFailure, Reason: "timeout: deadline", Duration: 1500 * time.Millisecond},
		{Method: domain.MethodTextLayer, Outcome: domain.OutcomeSuccess, Duration: 20 * time.Millisecond},
	}, now)

	require.Len(t, rows, 2)
	assert.Equal(t, int64(0), rows[0].AttemptIndex)
	assert.Equal(t, int64(1500), rows[0].DurationMS)
	assert.Equal(t, "failure", rows[0].Outcome)
	assert.Equal(t, "text_layer", rows[1].Method)
	assert.Equal(t, now, rows[1].RecordedTS)
}

func TestFilterClause(t *testing.T) {
	where, params := filterClause(DocumentFilter{})
	assert.Empty(t, where)
	assert.Empty(t, params)

	where, params = filterClause(DocumentFilter{Kind: "pix_receipt", Since: time.Unix(0, 1)})
	assert.Equal(t, "WHERE document_kind = @kind AND created_ts >= @since", where)
	assert.Len(t, params, 2)
}
