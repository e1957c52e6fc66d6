package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/mlisboa17/assistente-pessoal/internal/boleto"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
	"github.com/shopspring/decimal"
)

// DocumentKind classifies a Brazilian financial document.
type DocumentKind string

const (
	KindBankSlip       DocumentKind = "bank_slip"
	KindPixReceipt     DocumentKind = "pix_receipt"
	KindBankTransfer   DocumentKind = "bank_transfer"
	KindTaxGuide       DocumentKind = "tax_guide"
	KindGenericReceipt DocumentKind = "generic_receipt"
)

// ParseKind accepts the canonical names and a few Portuguese aliases used by
// model replies. Unknown values return false.
func ParseKind(s string) (DocumentKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bank_slip", "boleto":
		return KindBankSlip, true
	case "pix_receipt", "pix":
		return KindPixReceipt, true
	case "bank_transfer", "transferencia", "transferência", "ted", "doc":
		return KindBankTransfer, true
	case "tax_guide", "darf", "gps", "das", "imposto":
		return KindTaxGuide, true
	case "generic_receipt", "recibo", "comprovante", "fatura", "outro":
		return KindGenericReceipt, true
	}
	return "", false
}

// Method names the strategy that produced a record.
type Method string

const (
	MethodVisionAI           Method = "vision_ai"
	MethodTextLayer          Method = "text_layer"
	MethodOCR                Method = "ocr"
	MethodPatternSpecialized Method = "pattern_specialized"
)

// MaxExcerptLength bounds RawSourceExcerpt in runes.
const MaxExcerptLength = 500

// ExtractedDocument is the typed output of one extraction.
// Treat it as immutable once validated: corrections go through WithPatch.
type ExtractedDocument struct {
	ID                    string          `json:"id"`
	Kind                  DocumentKind    `json:"document_kind"`
	Amount                decimal.Decimal `json:"amount"`
	Date                  *civil.Date     `json:"due_or_transaction_date,omitempty"`
	BeneficiaryName       string          `json:"beneficiary_name,omitempty"`
	PayerName             string          `json:"payer_name,omitempty"`
	BeneficiaryTaxID      string          `json:"beneficiary_tax_id,omitempty"`
	PayerTaxID            string          `json:"payer_tax_id,omitempty"`
	LineCode              string          `json:"document_line_code,omitempty"`
	Barcode               string          `json:"barcode,omitempty"`
	ExternalTransactionID string          `json:"external_transaction_id,omitempty"`
	PixKey                string          `json:"pix_key,omitempty"`
	BankCode              string          `json:"bank_code,omitempty"`
	Description           string          `json:"description,omitempty"`
	Confidence            float64         `json:"extraction_confidence"`
	Method                Method          `json:"extraction_method"`
	RawSourceExcerpt      string          `json:"raw_source_excerpt,omitempty"`
	Incomplete            bool            `json:"incomplete"`
	Fingerprint           string          `json:"fingerprint"`
	CreatedAt             time.Time       `json:"created_at"`
}

// HasAmount reports whether a positive amount was extracted.
func (d *ExtractedDocument) HasAmount() bool {
	return d.Amount.IsPositive()
}

// HasReference reports whether any identifying payment reference is present.
func (d *ExtractedDocument) HasReference() bool {
	return d.LineCode != "" || d.Barcode != "" || d.ExternalTransactionID != ""
}

// NewDocument builds a document from merged fields. Amount and codes are
// copied as-is; normalization happens before this call.
func NewDocument(f Fields, method Method, confidence float64, rawText string) ExtractedDocument {
	doc := ExtractedDocument{
		ID:                    uuid.NewString(),
		Kind:                  KindGenericReceipt,
		BeneficiaryName:       f.BeneficiaryName,
		PayerName:             f.PayerName,
		BeneficiaryTaxID:      f.BeneficiaryTaxID,
		PayerTaxID:            f.PayerTaxID,
		LineCode:              f.LineCode,
		Barcode:               f.Barcode,
		ExternalTransactionID: f.ExternalTransactionID,
		PixKey:                f.PixKey,
		BankCode:              f.BankCode,
		Description:           f.Description,
		Confidence:            confidence,
		Method:                method,
		RawSourceExcerpt:      Excerpt(rawText, MaxExcerptLength),
		CreatedAt:             time.Now().UTC(),
	}
	if f.Kind != nil {
		doc.Kind = *f.Kind
	}
	if f.Amount != nil {
		doc.Amount = f.Amount.Round(2)
	}
	if f.Date != nil {
		d := *f.Date
		doc.Date = &d
	}
	doc.Fingerprint = Fingerprint(&doc)
	return doc
}

// Patch carries user corrections for a document awaiting confirmation.
type Patch struct {
	Kind                  *DocumentKind    `json:"document_kind,omitempty"`
	Amount                *decimal.Decimal `json:"amount,omitempty"`
	Date                  *civil.Date      `json:"due_or_transaction_date,omitempty"`
	BeneficiaryName       *string          `json:"beneficiary_name,omitempty"`
	PayerName             *string          `json:"payer_name,omitempty"`
	BeneficiaryTaxID      *string          `json:"beneficiary_tax_id,omitempty"`
	PayerTaxID            *string          `json:"payer_tax_id,omitempty"`
	LineCode              *string          `json:"document_line_code,omitempty"`
	Barcode               *string          `json:"barcode,omitempty"`
	ExternalTransactionID *string          `json:"external_transaction_id,omitempty"`
	Description           *string          `json:"description,omitempty"`
}

// WithPatch returns a new document with the patch applied, a fresh ID and a
// recomputed fingerprint. A user-confirmed record is no longer incomplete.
// The receiver is left untouched.
func (d ExtractedDocument) WithPatch(p Patch) ExtractedDocument {
	out := d
	if d.Date != nil {
		date := *d.Date
		out.Date = &date
	}

	if p.Kind != nil {
		out.Kind = *p.Kind
	}
	if p.Amount != nil {
		out.Amount = p.Amount.Round(2)
	}
	if p.Date != nil {
		date := *p.Date
		out.Date = &date
	}
	setString(&out.BeneficiaryName, p.BeneficiaryName)
	setString(&out.PayerName, p.PayerName)
	setString(&out.BeneficiaryTaxID, p.BeneficiaryTaxID)
	setString(&out.PayerTaxID, p.PayerTaxID)
	setString(&out.LineCode, p.LineCode)
	setString(&out.Barcode, p.Barcode)
	setString(&out.ExternalTransactionID, p.ExternalTransactionID)
	setString(&out.Description, p.Description)

	out.ID = uuid.NewString()
	out.Incomplete = false
	out.CreatedAt = time.Now().UTC()
	out.Fingerprint = Fingerprint(&out)
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// Fingerprint hashes the normalized payment reference, amount and date so that
// the same physical document resubmitted twice maps to the same value.
// A valid line code is reduced to its barcode so that both forms agree.
// Records without any reference are identified by their parties and source
// text instead, so distinct receipts of equal amount never collide.
func Fingerprint(d *ExtractedDocument) string {
	ref := normalize.Digits(d.Barcode)
	if ref == "" {
		ref = normalize.Digits(d.LineCode)
		if bc, err := boleto.LineToBarcode(ref); err == nil {
			ref = bc
		}
	}
	if ref == "" {
		ref = strings.ToUpper(strings.TrimSpace(d.ExternalTransactionID))
	}
	if ref == "" {
		ref = strings.Join([]string{
			"noref",
			string(d.Kind),
			d.BeneficiaryTaxID,
			squash(d.BeneficiaryName),
			d.PayerTaxID,
			squash(d.Description),
			squash(d.RawSourceExcerpt),
		}, "|")
	}

	date := ""
	if d.Date != nil {
		date = d.Date.String()
	}

	sum := sha256.Sum256([]byte(ref + "|" + d.Amount.StringFixed(2) + "|" + date))
	return hex.EncodeToString(sum[:])
}

func squash(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Excerpt trims s to at most max runes.
func Excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
