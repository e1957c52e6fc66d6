// Package validator checks extracted documents against business rules.
package validator

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mlisboa17/assistente-pessoal/internal/boleto"
	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
	"github.com/mlisboa17/assistente-pessoal/internal/taxid"
	"github.com/shopspring/decimal"
)

// Validator evaluates every rule and aggregates the violations. It never
// modifies the document.
type Validator struct {
	minAmount decimal.Decimal
	maxAmount decimal.Decimal
	staleDays int
	now       func() time.Time
}

// New builds a validator. A nil clock means time.Now.
func New(cfg config.Validation, clock func() time.Time) *Validator {
	if clock == nil {
		clock = time.Now
	}
	return &Validator{
		minAmount: decimal.NewFromFloat(cfg.MinAmount).Round(2),
		maxAmount: decimal.NewFromFloat(cfg.MaxAmount).Round(2),
		staleDays: cfg.StaleSlipDays,
		now:       clock,
	}
}

// Validate runs all rules.
func (v *Validator) Validate(doc domain.ExtractedDocument) domain.ValidationResult {
	var out []domain.Violation
	out = append(out, v.amount(doc)...)
	out = append(out, v.staleness(doc)...)
	out = append(out, taxIDs(doc)...)
	out = append(out, codes(doc)...)
	out = append(out, reference(doc)...)
	return domain.NewValidationResult(out)
}

func (v *Validator) amount(doc domain.ExtractedDocument) []domain.Violation {
	if doc.Amount.IsZero() {
		return []domain.Violation{hard(domain.RuleAmountRange, domain.FieldAmount, "amount missing")}
	}
	if doc.Amount.LessThan(v.minAmount) || doc.Amount.GreaterThan(v.maxAmount) {
		msg := fmt.Sprintf("amount %s outside [%s, %s]",
			doc.Amount.StringFixed(2), v.minAmount.StringFixed(2), v.maxAmount.StringFixed(2))
		return []domain.Violation{hard(domain.RuleAmountRange, domain.FieldAmount, msg)}
	}
	return nil
}

func (v *Validator) staleness(doc domain.ExtractedDocument) []domain.Violation {
	if doc.Kind != domain.KindBankSlip || doc.Date == nil {
		return nil
	}
	limit := civil.DateOf(v.now()).AddDays(-v.staleDays)
	if doc.Date.Before(limit) {
		return []domain.Violation{{
			Rule:     domain.RuleStaleDueDate,
			Field:    domain.FieldDate,
			Message:  fmt.Sprintf("due date %s is more than %d days in the past", doc.Date, v.staleDays),
			Severity: domain.SeveritySoft,
		}}
	}
	return nil
}

func taxIDs(doc domain.ExtractedDocument) []domain.Violation {
	var out []domain.Violation
	check := func(field, id string) {
		if id == "" || taxid.Valid(id) {
			return
		}
		msg := fmt.Sprintf("%s is not a valid CPF or CNPJ", id)
		if k := taxid.KindOf(id); k != taxid.KindUnknown {
			msg = fmt.Sprintf("%s has invalid %s check digits", id, k)
		}
		out = append(out, hard(domain.RuleTaxIDChecksum, field, msg))
	}
	check(domain.FieldBeneficiaryTaxID, doc.BeneficiaryTaxID)
	check(domain.FieldPayerTaxID, doc.PayerTaxID)
	return out
}

// codes checks lengths and, when both halves exist, that the line code and
// the barcode describe the same slip. Collection codes have a 48-digit line
// and are not converted, so only their length is checked.
func codes(doc domain.ExtractedDocument) []domain.Violation {
	var out []domain.Violation

	line := normalize.Digits(doc.LineCode)
	lineOK := true
	if doc.LineCode != "" {
		switch {
		case len(line) == boleto.LineLength:
		case len(line) == boleto.CollectionLineLength && boleto.IsCollection(line):
		default:
			lineOK = false
			out = append(out, hard(domain.RuleLineCodeLength, domain.FieldLineCode,
				fmt.Sprintf("line code has %d digits, want %d", len(line), boleto.LineLength)))
		}
	}

	barcode := normalize.Digits(doc.Barcode)
	barcodeOK := true
	if doc.Barcode != "" && len(barcode) != boleto.BarcodeLength {
		barcodeOK = false
		out = append(out, hard(domain.RuleBarcodeLength, domain.FieldBarcode,
			fmt.Sprintf("barcode has %d digits, want %d", len(barcode), boleto.BarcodeLength)))
	}

	if line != "" && barcode != "" && lineOK && barcodeOK && !boleto.IsCollection(line) {
		if !boleto.Consistent(line, barcode) {
			out = append(out, hard(domain.RuleLineBarcodeMismatch, domain.FieldLineCode,
				"line code and barcode do not describe the same slip"))
		}
	}
	return out
}

func reference(doc domain.ExtractedDocument) []domain.Violation {
	if doc.Kind != domain.KindBankSlip && doc.Kind != domain.KindPixReceipt {
		return nil
	}
	if doc.HasReference() {
		return nil
	}
	return []domain.Violation{hard(domain.RuleMissingReference, domain.FieldLineCode, "no identifying reference found")}
}

func hard(rule, field, msg string) domain.Violation {
	return domain.Violation{Rule: rule, Field: field, Message: msg, Severity: domain.SeverityHard}
}
