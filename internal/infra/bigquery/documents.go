package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
)

// DocumentRow is one extracted document in the documents table.
type DocumentRow struct {
	DocumentID string `bigquery:"document_id"` // REQUIRED
	RunID      string `bigquery:"run_id"`      // NULLABLE
	SourceURI  string `bigquery:"source_uri"`  // NULLABLE
	MediaType  string `bigquery:"media_type"`  // NULLABLE

	DocumentKind string            `bigquery:"document_kind"`           // REQUIRED
	Amount       *big.Rat          `bigquery:"amount"`                  // NUMERIC, NULLABLE
	Date         bigquery.NullDate `bigquery:"due_or_transaction_date"` // NULLABLE

	BeneficiaryName  string `bigquery:"beneficiary_name"`   // NULLABLE
	PayerName        string `bigquery:"payer_name"`         // NULLABLE
	BeneficiaryTaxID string `bigquery:"beneficiary_tax_id"` // NULLABLE
	PayerTaxID       string `bigquery:"payer_tax_id"`       // NULLABLE

	LineCode              string `bigquery:"document_line_code"`      // NULLABLE
	Barcode               string `bigquery:"barcode"`                 // NULLABLE
	ExternalTransactionID string `bigquery:"external_transaction_id"` // NULLABLE
	PixKey                string `bigquery:"pix_key"`                 // NULLABLE
	BankCode              string `bigquery:"bank_code"`               // NULLABLE
	Description           string `bigquery:"description"`             // NULLABLE

	ExtractionMethod     string  `bigquery:"extraction_method"`     // REQUIRED
	ExtractionState      string  `bigquery:"extraction_state"`      // REQUIRED
	ExtractionConfidence float64 `bigquery:"extraction_confidence"` // REQUIRED
	Incomplete           bool    `bigquery:"incomplete"`            // REQUIRED
	RawSourceExcerpt     string  `bigquery:"raw_source_excerpt"`    // NULLABLE
	Fingerprint          string  `bigquery:"fingerprint"`           // REQUIRED

	Category           string               `bigquery:"category"`            // NULLABLE
	CategoryConfidence bigquery.NullFloat64 `bigquery:"category_confidence"` // NULLABLE

	Valid      bool              `bigquery:"validation_valid"` // REQUIRED
	Violations bigquery.NullJSON `bigquery:"violations"`       // NULLABLE
	Confirmed  bool              `bigquery:"user_confirmed"`   // REQUIRED

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// DocumentFilter narrows ListDocuments.
type DocumentFilter struct {
	Kind  string
	Since time.Time
	Limit int
}
