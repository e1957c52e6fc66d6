// Package pipeline turns a source document into a validated, categorized and
// stored record, and applies user confirmations to parked documents.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/confirmation"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/metrics"
)

// Request is one document to process. Exactly one of SourceURI, Data or Text
// is normally set; Data and Text win over SourceURI.
type Request struct {
	SourceURI string
	Data      []byte
	MediaType string
	Text      string
	KindHint  *domain.DocumentKind
}

// Deps are the collaborators of the pipeline. Extractor and Validator are
// required; every other dependency is optional and its step is skipped when
// it is nil.
type Deps struct {
	Fetcher       SourceFetcher
	Extractor     Extractor
	Validator     Validator
	Categorizer   Categorizer
	Documents     DocumentStore
	Runs          RunRecorder
	Confirmations confirmation.Store
	Reminders     ReminderScheduler
	Exporter      Exporter
	Metrics       *metrics.Metrics
	Clock         func() time.Time
}

func (d Deps) check() error {
	if d.Extractor == nil {
		return fmt.Errorf("pipeline: extractor is required")
	}
	if d.Validator == nil {
		return fmt.Errorf("pipeline: validator is required")
	}
	return nil
}

// NewDocumentPipeline wires the standard steps.
func NewDocumentPipeline(deps Deps) *Pipeline {
	return NewPipeline(
		&FetchSourceStep{Fetcher: deps.Fetcher},
		&DetectMediaStep{},
		&StartRunStep{Runs: deps.Runs},
		&ExtractStep{Extractor: deps.Extractor},
		&ValidateStep{Validator: deps.Validator, Metrics: deps.Metrics},
		&CategorizeStep{Categorizer: deps.Categorizer, Metrics: deps.Metrics},
		&DedupStep{Documents: deps.Documents, Metrics: deps.Metrics},
		&ConfirmationStep{Store: deps.Confirmations},
		&StoreStep{Documents: deps.Documents, Runs: deps.Runs},
		&ExportStep{Exporter: deps.Exporter},
		&ScheduleReminderStep{Reminders: deps.Reminders, Clock: deps.Clock},
		&MarkRunSucceededStep{Runs: deps.Runs},
	)
}

// ProcessWithDeps runs the full pipeline. A failure after the run was opened
// marks the run FAILED before returning.
func ProcessWithDeps(ctx context.Context, req Request, deps Deps) (domain.ProcessResult, error) {
	if err := deps.check(); err != nil {
		return domain.ProcessResult{}, err
	}

	state := &PipelineState{Request: req}
	err := NewDocumentPipeline(deps).Execute(ctx, state)
	if err != nil {
		if state.RunID != "" && deps.Runs != nil {
			deps.Runs.MarkExtractionRunFailed(ctx, state.RunID, err)
		}
		return state.Result, err
	}

	doc := state.Document()
	logger.FromContext(ctx).Info().
		Str("document_id", doc.ID).
		Str("run_id", state.RunID).
		Str("kind", string(doc.Kind)).
		Str("method", string(doc.Method)).
		Str("state", string(state.Result.Extraction.State)).
		Bool("valid", state.Result.Validation.Valid).
		Bool("duplicate", state.Result.Duplicate).
		Bool("awaiting_confirmation", state.Result.AwaitingConfirm).
		Msg("Document processed")
	return state.Result, nil
}

// ConfirmWithDeps applies the user's corrections to a parked document. The
// patched record gets a new id and is re-validated. When hard violations
// remain it is parked again under the new id; otherwise it is appended as a
// user-confirmed record.
func ConfirmWithDeps(ctx context.Context, documentID string, patch domain.Patch, deps Deps) (domain.ProcessResult, error) {
	if err := deps.check(); err != nil {
		return domain.ProcessResult{}, err
	}
	if deps.Confirmations == nil {
		return domain.ProcessResult{}, fmt.Errorf("pipeline: confirmation store is required")
	}
	log := logger.FromContext(ctx).With().Str("document_id", documentID).Logger()

	pending, err := deps.Confirmations.Take(ctx, documentID)
	if err != nil {
		return domain.ProcessResult{}, fmt.Errorf("ConfirmWithDeps: %w", err)
	}

	doc := pending.Document.WithPatch(patch)
	res := domain.ProcessResult{
		Extraction: domain.ExtractionResult{
			Document: doc,
			State:    domain.StateResolved,
			Attempts: pending.Attempts,
		},
		Validation: deps.Validator.Validate(doc),
		Category:   pending.Category,
	}
	if deps.Categorizer != nil {
		suggestion := categorize(deps.Categorizer, doc)
		res.Category = &suggestion
	}

	if !res.Validation.Valid {
		res.AwaitingConfirm = true
		err := deps.Confirmations.Put(ctx, confirmation.Pending{
			Document:   doc,
			State:      res.Extraction.State,
			Attempts:   res.Extraction.Attempts,
			Validation: res.Validation,
			Category:   res.Category,
		})
		if err != nil {
			return res, fmt.Errorf("ConfirmWithDeps: re-parking %s: %w", doc.ID, err)
		}
		log.Info().Str("new_document_id", doc.ID).Msg("Confirmation still invalid, parked again")
		return res, nil
	}

	if deps.Documents != nil {
		existing, err := deps.Documents.FindDocumentByFingerprint(ctx, doc.Fingerprint)
		if err != nil {
			return res, fmt.Errorf("ConfirmWithDeps: dedup: %w", err)
		}
		if existing != nil {
			res.Duplicate = true
			res.ExistingDocumentID = existing.DocumentID
			return res, nil
		}
		if err := appendDocument(ctx, deps.Documents, res, "", Request{}, true); err != nil {
			return res, fmt.Errorf("ConfirmWithDeps: storing: %w", err)
		}
	}

	if deps.Exporter != nil {
		if err := deps.Exporter.Export(ctx, res); err != nil {
			log.Warn().Err(err).Msg("Failed to export confirmed document")
		}
	}
	if deps.Reminders != nil {
		scheduleReminder(ctx, deps.Reminders, deps.Clock, doc)
	}

	log.Info().Str("new_document_id", doc.ID).Msg("Document confirmed")
	return res, nil
}

// Processor binds a set of dependencies for repeated use.
type Processor struct {
	deps Deps
}

func NewProcessor(deps Deps) *Processor {
	return &Processor{deps: deps}
}

func (p *Processor) Process(ctx context.Context, req Request) (domain.ProcessResult, error) {
	return ProcessWithDeps(ctx, req, p.deps)
}

func (p *Processor) Confirm(ctx context.Context, documentID string, patch domain.Patch) (domain.ProcessResult, error) {
	return ConfirmWithDeps(ctx, documentID, patch, p.deps)
}

// Pending exposes the confirmation store for read endpoints.
func (p *Processor) Pending() confirmation.Store {
	return p.deps.Confirmations
}
