package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mlisboa17/assistente-pessoal/internal/backend"
	"github.com/mlisboa17/assistente-pessoal/internal/confirmation"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	infra "github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/metrics"
)

// ErrNoSource is returned when a request carries neither a URI, bytes nor text.
var ErrNoSource = errors.New("request has no source")

// PipelineStep is a single step of document processing.
type PipelineStep interface {
	Name() string
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState is shared by all steps of one run.
type PipelineState struct {
	Request Request
	Input   backend.Input
	RunID   string
	Result  domain.ProcessResult
	// Stored is set once the document row was appended.
	Stored bool
}

// Document is shorthand for the extracted document.
func (s *PipelineState) Document() *domain.ExtractedDocument {
	return &s.Result.Extraction.Document
}

// Pipeline executes steps in order and stops at the first error.
type Pipeline struct {
	steps []PipelineStep
}

func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d (%s) failed: %w", i+1, step.Name(), err)
		}
	}
	return nil
}

// Step 1: FetchSourceStep downloads the source when only a URI was given.
type FetchSourceStep struct {
	Fetcher SourceFetcher
}

func (s *FetchSourceStep) Name() string { return "fetch_source" }

func (s *FetchSourceStep) Execute(ctx context.Context, state *PipelineState) error {
	req := state.Request
	if len(req.Data) > 0 || req.Text != "" {
		return nil
	}
	if req.SourceURI == "" {
		return ErrNoSource
	}
	if s.Fetcher == nil {
		return fmt.Errorf("no fetcher configured for %s", req.SourceURI)
	}

	data, err := s.Fetcher.Fetch(ctx, req.SourceURI)
	if err != nil {
		return err
	}
	state.Request.Data = data
	return nil
}

// Step 2: DetectMediaStep sniffs the media type and builds the backend input.
// Bytes that turn out to be plain text are handed over as text.
type DetectMediaStep struct{}

func (s *DetectMediaStep) Name() string { return "detect_media" }

func (s *DetectMediaStep) Execute(ctx context.Context, state *PipelineState) error {
	req := state.Request
	in := backend.Input{Data: req.Data, MediaType: req.MediaType, Text: req.Text, KindHint: req.KindHint}

	if in.MediaType == "" && len(in.Data) > 0 {
		in.MediaType = backend.SniffMediaType(in.Data)
	}
	if in.Shape() == backend.ShapeText && in.Text == "" && len(in.Data) > 0 {
		in.Text = string(in.Data)
		in.Data = nil
	}

	logger.FromContext(ctx).Debug().
		Str("media_type", in.MediaType).
		Str("shape", string(in.Shape())).
		Int("bytes", len(in.Data)).
		Msg("Detected media type")

	state.Input = in
	return nil
}

// Step 3: StartRunStep opens an extraction run row (status RUNNING).
type StartRunStep struct {
	Runs RunRecorder
}

func (s *StartRunStep) Name() string { return "start_run" }

func (s *StartRunStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Runs == nil {
		return nil
	}
	runID, err := s.Runs.StartExtractionRun(ctx, state.Request.SourceURI)
	if err != nil {
		return err
	}
	state.RunID = runID
	return nil
}

// Step 4: ExtractStep runs the backend cascade.
type ExtractStep struct {
	Extractor Extractor
}

func (s *ExtractStep) Name() string { return "extract" }

func (s *ExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	res, err := s.Extractor.Extract(ctx, state.Input)
	if err != nil {
		return err
	}
	state.Result.Extraction = res
	return nil
}

// Step 5: ValidateStep applies the business rules.
type ValidateStep struct {
	Validator Validator
	Metrics   *metrics.Metrics
}

func (s *ValidateStep) Name() string { return "validate" }

func (s *ValidateStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Result.Validation = s.Validator.Validate(*state.Document())
	if s.Metrics != nil {
		for _, v := range state.Result.Validation.Violations {
			s.Metrics.ViolationsTotal.WithLabelValues(v.Rule, string(v.Severity)).Inc()
		}
	}
	return nil
}

// Step 6: CategorizeStep suggests a spending category.
type CategorizeStep struct {
	Categorizer Categorizer
	Metrics     *metrics.Metrics
}

func (s *CategorizeStep) Name() string { return "categorize" }

func (s *CategorizeStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Categorizer == nil {
		return nil
	}
	suggestion := categorize(s.Categorizer, *state.Document())
	state.Result.Category = &suggestion
	if s.Metrics != nil {
		s.Metrics.CategoriesTotal.WithLabelValues(string(suggestion.Category)).Inc()
	}
	return nil
}

func categorize(c Categorizer, doc domain.ExtractedDocument) domain.CategorySuggestion {
	text := strings.TrimSpace(doc.Description + " " + doc.RawSourceExcerpt)
	return c.Suggest(text, doc.BeneficiaryName)
}

// Step 7: DedupStep flags documents whose fingerprint is already stored.
type DedupStep struct {
	Documents DocumentStore
	Metrics   *metrics.Metrics
}

func (s *DedupStep) Name() string { return "dedup" }

func (s *DedupStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Documents == nil {
		return nil
	}
	existing, err := s.Documents.FindDocumentByFingerprint(ctx, state.Document().Fingerprint)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	state.Result.Duplicate = true
	state.Result.ExistingDocumentID = existing.DocumentID
	if s.Metrics != nil {
		s.Metrics.DuplicatesTotal.Inc()
	}
	logger.FromContext(ctx).Info().
		Str("document_id", state.Document().ID).
		Str("existing_document_id", existing.DocumentID).
		Msg("Document already stored, skipping append")
	return nil
}

// Step 8: ConfirmationStep parks exhausted or invalid documents until the
// user confirms or corrects them.
type ConfirmationStep struct {
	Store confirmation.Store
}

func (s *ConfirmationStep) Name() string { return "confirmation" }

func (s *ConfirmationStep) Execute(ctx context.Context, state *PipelineState) error {
	res := &state.Result
	if res.Duplicate || !needsConfirmation(*res) {
		return nil
	}
	res.AwaitingConfirm = true
	if s.Store == nil {
		return nil
	}
	return s.Store.Put(ctx, confirmation.Pending{
		Document:   res.Extraction.Document,
		State:      res.Extraction.State,
		Attempts:   res.Extraction.Attempts,
		Validation: res.Validation,
		Category:   res.Category,
	})
}

func needsConfirmation(res domain.ProcessResult) bool {
	return !res.Extraction.Resolved() || !res.Validation.Valid
}

// Step 9: StoreStep appends the document and the cascade attempts. Duplicates
// and documents awaiting confirmation are not appended; attempts always are.
type StoreStep struct {
	Documents DocumentStore
	Runs      RunRecorder
}

func (s *StoreStep) Name() string { return "store" }

func (s *StoreStep) Execute(ctx context.Context, state *PipelineState) error {
	doc := state.Document()

	if s.Runs != nil && state.RunID != "" {
		rows := infra.NewAttemptRows(state.RunID, doc.ID, state.Result.Extraction.Attempts, time.Now())
		if err := s.Runs.InsertAttempts(ctx, rows); err != nil {
			return err
		}
	}

	if s.Documents == nil || state.Result.Duplicate || state.Result.AwaitingConfirm {
		return nil
	}
	if err := appendDocument(ctx, s.Documents, state.Result, state.RunID, state.Request, false); err != nil {
		return err
	}
	state.Stored = true
	return nil
}

func appendDocument(ctx context.Context, docs DocumentStore, res domain.ProcessResult, runID string, req Request, confirmed bool) error {
	row, err := infra.NewDocumentRow(res, runID, req.SourceURI, req.MediaType)
	if err != nil {
		return err
	}
	row.Confirmed = confirmed
	return docs.InsertDocument(ctx, row)
}

// Step 10: ExportStep mirrors the result to the exporter. Export failures
// are logged and never fail the run.
type ExportStep struct {
	Exporter Exporter
}

func (s *ExportStep) Name() string { return "export" }

func (s *ExportStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Exporter == nil || state.Result.Duplicate {
		return nil
	}
	if err := s.Exporter.Export(ctx, state.Result); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("document_id", state.Document().ID).
			Msg("Failed to export document")
	}
	return nil
}

// Step 11: ScheduleReminderStep hands future due dates of stored slips and
// tax guides to the scheduler. Scheduling failures are logged only.
type ScheduleReminderStep struct {
	Reminders ReminderScheduler
	Clock     func() time.Time
}

func (s *ScheduleReminderStep) Name() string { return "schedule_reminder" }

func (s *ScheduleReminderStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Reminders == nil || !state.Stored {
		return nil
	}
	scheduleReminder(ctx, s.Reminders, s.Clock, *state.Document())
	return nil
}

func scheduleReminder(ctx context.Context, r ReminderScheduler, clock func() time.Time, doc domain.ExtractedDocument) {
	due, ok := reminderDate(doc, clock)
	if !ok {
		return
	}
	log := logger.FromContext(ctx)
	if err := r.Schedule(ctx, doc.ID, due); err != nil {
		log.Warn().Err(err).Str("document_id", doc.ID).Msg("Failed to schedule reminder")
		return
	}
	log.Info().Str("document_id", doc.ID).Str("due", due.String()).Msg("Reminder scheduled")
}

func reminderDate(doc domain.ExtractedDocument, clock func() time.Time) (civil.Date, bool) {
	if doc.Kind != domain.KindBankSlip && doc.Kind != domain.KindTaxGuide {
		return civil.Date{}, false
	}
	if doc.Date == nil {
		return civil.Date{}, false
	}
	if clock == nil {
		clock = time.Now
	}
	if !doc.Date.After(civil.DateOf(clock())) {
		return civil.Date{}, false
	}
	return *doc.Date, true
}

// Step 12: MarkRunSucceededStep closes the run and links the document.
type MarkRunSucceededStep struct {
	Runs RunRecorder
}

func (s *MarkRunSucceededStep) Name() string { return "mark_run_succeeded" }

func (s *MarkRunSucceededStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Runs == nil || state.RunID == "" {
		return nil
	}
	documentID := state.Document().ID
	if state.Result.Duplicate {
		documentID = state.Result.ExistingDocumentID
	}
	return s.Runs.MarkExtractionRunSucceeded(ctx, state.RunID, documentID)
}
