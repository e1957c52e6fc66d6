package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Field names used by Fields.Has, merge reports and required-field checks.
const (
	FieldKind             = "document_kind"
	FieldAmount           = "amount"
	FieldDate             = "date"
	FieldBeneficiaryName  = "beneficiary_name"
	FieldPayerName        = "payer_name"
	FieldBeneficiaryTaxID = "beneficiary_tax_id"
	FieldPayerTaxID       = "payer_tax_id"
	FieldLineCode         = "line_code"
	FieldBarcode          = "barcode"
	FieldExternalID       = "external_transaction_id"
	FieldPixKey           = "pix_key"
	FieldBankCode         = "bank_code"
	FieldDescription      = "description"
)

// Fields is a partial field map produced by a backend or the pattern pass.
// Nil pointers and empty strings mean "not found".
type Fields struct {
	Kind                  *DocumentKind
	Amount                *decimal.Decimal
	Date                  *civil.Date
	BeneficiaryName       string
	PayerName             string
	BeneficiaryTaxID      string
	PayerTaxID            string
	LineCode              string
	Barcode               string
	ExternalTransactionID string
	PixKey                string
	PixKeyType            string
	BankCode              string
	Description           string
}

// Has reports whether the named field is present.
func (f *Fields) Has(name string) bool {
	switch name {
	case FieldKind:
		return f.Kind != nil
	case FieldAmount:
		return f.Amount != nil
	case FieldDate:
		return f.Date != nil
	case FieldBeneficiaryName:
		return f.BeneficiaryName != ""
	case FieldPayerName:
		return f.PayerName != ""
	case FieldBeneficiaryTaxID:
		return f.BeneficiaryTaxID != ""
	case FieldPayerTaxID:
		return f.PayerTaxID != ""
	case FieldLineCode:
		return f.LineCode != ""
	case FieldBarcode:
		return f.Barcode != ""
	case FieldExternalID:
		return f.ExternalTransactionID != ""
	case FieldPixKey:
		return f.PixKey != ""
	case FieldBankCode:
		return f.BankCode != ""
	case FieldDescription:
		return f.Description != ""
	}
	return false
}

// Present lists the names of every field that is set, in declaration order.
func (f *Fields) Present() []string {
	var out []string
	for _, name := range allFields {
		if f.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// Count returns the number of fields set.
func (f *Fields) Count() int {
	return len(f.Present())
}

// FillFrom copies every field that is absent in f and present in other.
// It returns the names of the fields it filled.
func (f *Fields) FillFrom(other Fields) []string {
	var filled []string
	fill := func(name string, cond bool, apply func()) {
		if cond {
			apply()
			filled = append(filled, name)
		}
	}

	fill(FieldKind, f.Kind == nil && other.Kind != nil, func() { k := *other.Kind; f.Kind = &k })
	fill(FieldAmount, f.Amount == nil && other.Amount != nil, func() { a := *other.Amount; f.Amount = &a })
	fill(FieldDate, f.Date == nil && other.Date != nil, func() { d := *other.Date; f.Date = &d })
	fill(FieldBeneficiaryName, f.BeneficiaryName == "" && other.BeneficiaryName != "", func() { f.BeneficiaryName = other.BeneficiaryName })
	fill(FieldPayerName, f.PayerName == "" && other.PayerName != "", func() { f.PayerName = other.PayerName })
	fill(FieldBeneficiaryTaxID, f.BeneficiaryTaxID == "" && other.BeneficiaryTaxID != "", func() { f.BeneficiaryTaxID = other.BeneficiaryTaxID })
	fill(FieldPayerTaxID, f.PayerTaxID == "" && other.PayerTaxID != "", func() { f.PayerTaxID = other.PayerTaxID })
	fill(FieldLineCode, f.LineCode == "" && other.LineCode != "", func() { f.LineCode = other.LineCode })
	fill(FieldBarcode, f.Barcode == "" && other.Barcode != "", func() { f.Barcode = other.Barcode })
	fill(FieldExternalID, f.ExternalTransactionID == "" && other.ExternalTransactionID != "", func() { f.ExternalTransactionID = other.ExternalTransactionID })
	fill(FieldPixKey, f.PixKey == "" && other.PixKey != "", func() { f.PixKey = other.PixKey; f.PixKeyType = other.PixKeyType })
	fill(FieldBankCode, f.BankCode == "" && other.BankCode != "", func() { f.BankCode = other.BankCode })
	fill(FieldDescription, f.Description == "" && other.Description != "", func() { f.Description = other.Description })

	return filled
}

var allFields = []string{
	FieldKind,
	FieldAmount,
	FieldDate,
	FieldBeneficiaryName,
	FieldPayerName,
	FieldBeneficiaryTaxID,
	FieldPayerTaxID,
	FieldLineCode,
	FieldBarcode,
	FieldExternalID,
	FieldPixKey,
	FieldBankCode,
	FieldDescription,
}

// KindPtr is a convenience for building Fields literals.
func KindPtr(k DocumentKind) *DocumentKind {
	return &k
}
