package domain

// Severity of a validation finding. Soft findings are warnings.
type Severity string

const (
	SeveritySoft Severity = "soft"
	SeverityHard Severity = "hard"
)

// Validation rule names.
const (
	RuleAmountRange         = "amount_range"
	RuleStaleDueDate        = "stale_due_date"
	RuleTaxIDChecksum       = "tax_id_checksum"
	RuleLineCodeLength      = "line_code_length"
	RuleBarcodeLength       = "barcode_length"
	RuleLineBarcodeMismatch = "line_barcode_mismatch"
	RuleMissingReference    = "missing_reference"
)

// Violation is one failed rule.
type Violation struct {
	Rule     string   `json:"rule"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult aggregates every rule outcome for a document.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// NewValidationResult derives Valid from the violations.
func NewValidationResult(violations []Violation) ValidationResult {
	valid := true
	for _, v := range violations {
		if v.Severity == SeverityHard {
			valid = false
			break
		}
	}
	return ValidationResult{Valid: valid, Violations: violations}
}

// HasRule reports whether a violation for rule is present.
func (r ValidationResult) HasRule(rule string) bool {
	for _, v := range r.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}
