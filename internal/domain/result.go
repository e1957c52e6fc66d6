package domain

import "time"

// ExtractionState is the terminal state of an orchestrator run.
type ExtractionState string

const (
	StateResolved  ExtractionState = "resolved"
	StateExhausted ExtractionState = "exhausted"
)

// AttemptOutcome records what happened to one backend in the cascade.
type AttemptOutcome string

const (
	OutcomeSuccess AttemptOutcome = "success"
	OutcomeFailure AttemptOutcome = "failure"
	OutcomeSkipped AttemptOutcome = "skipped"
)

// Attempt is one step of the cascade.
type Attempt struct {
	Method   Method         `json:"method"`
	Outcome  AttemptOutcome `json:"outcome"`
	Reason   string         `json:"reason,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// ExtractionResult is what the orchestrator returns.
type ExtractionResult struct {
	Document ExtractedDocument `json:"document"`
	State    ExtractionState   `json:"state"`
	Attempts []Attempt         `json:"attempts"`
}

// Resolved is shorthand for State == StateResolved.
func (r ExtractionResult) Resolved() bool {
	return r.State == StateResolved
}

// ProcessResult is the end-to-end output of the processing pipeline.
type ProcessResult struct {
	Extraction         ExtractionResult    `json:"extraction"`
	Validation         ValidationResult    `json:"validation"`
	Category           *CategorySuggestion `json:"category,omitempty"`
	Duplicate          bool                `json:"duplicate"`
	ExistingDocumentID string              `json:"existing_document_id,omitempty"`
	AwaitingConfirm    bool                `json:"awaiting_confirmation"`
}
