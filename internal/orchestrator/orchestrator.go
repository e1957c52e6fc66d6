// Package orchestrator runs the extraction cascade: an ordered list of
// backends tried one at a time until one yields a complete record.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/backend"
	"github.com/mlisboa17/assistente-pessoal/internal/boleto"
	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/metrics"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
	"github.com/mlisboa17/assistente-pessoal/internal/patterns"
)

// ErrUnsupportedMediaType is returned when no backend can read the input and
// it carries no text to fall back on.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// Backend order per input shape.
var (
	pdfOrder   = []domain.Method{domain.MethodVisionAI, domain.MethodTextLayer, domain.MethodOCR}
	imageOrder = []domain.Method{domain.MethodPatternSpecialized, domain.MethodVisionAI, domain.MethodOCR}
	textOrder  = []domain.Method{domain.MethodPatternSpecialized}
)

// Orchestrator owns the backend set and the scoring constants.
type Orchestrator struct {
	cfg      config.Extraction
	backends map[domain.Method]backend.Backend
	metrics  *metrics.Metrics
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics replaces the process-wide collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New builds an orchestrator. Methods missing from backends are recorded as
// skipped when their turn comes.
func New(cfg config.Extraction, backends map[domain.Method]backend.Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{cfg: cfg, backends: backends}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = metrics.Get()
	}
	return o
}

// Order returns the cascade for an input.
func Order(in backend.Input) ([]domain.Method, error) {
	switch in.Shape() {
	case backend.ShapePDF:
		return pdfOrder, nil
	case backend.ShapeImage:
		return imageOrder, nil
	}
	if textual(in) {
		return textOrder, nil
	}
	return nil, ErrUnsupportedMediaType
}

// textual reports whether the input is handled on the plain-text path.
func textual(in backend.Input) bool {
	switch in.Shape() {
	case backend.ShapeText:
		return true
	case backend.ShapeUnknown:
		return strings.TrimSpace(in.Text) != ""
	}
	return false
}

// Extract runs the cascade. Each backend is tried at most once; the first
// complete record resolves the run. When every backend is spent the best
// partial record is returned as exhausted, never dropped.
func (o *Orchestrator) Extract(ctx context.Context, in backend.Input) (domain.ExtractionResult, error) {
	order, err := Order(in)
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	if o.cfg.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.OverallTimeout)
		defer cancel()
	}

	log := logger.FromContext(ctx)
	start := time.Now()

	var (
		attempts []domain.Attempt
		best     *candidate
	)

	for _, method := range order {
		if ctx.Err() != nil {
			attempts = append(attempts, o.skip(method, "overall deadline exceeded"))
			continue
		}
		b, ok := o.backends[method]
		if !ok || b == nil {
			attempts = append(attempts, o.skip(method, "backend not configured"))
			continue
		}

		res, took := o.try(ctx, b, in)
		if res.Failure != nil {
			reason := string(res.Failure.Code) + ": " + res.Failure.Reason
			log.Info().
				Str("method", string(method)).
				Str("code", string(res.Failure.Code)).
				Dur("duration", took).
				Msg("Backend failed, advancing")
			attempts = append(attempts, o.record(method, domain.OutcomeFailure, reason, took))
			continue
		}

		c := o.merge(method, res, in)
		if c.complete {
			attempts = append(attempts, o.record(method, domain.OutcomeSuccess, "", took))
			doc := o.document(c, c.confidence, false)
			o.metrics.ObserveExtraction(string(domain.StateResolved), time.Since(start))
			log.Info().
				Str("method", string(method)).
				Str("document_kind", string(doc.Kind)).
				Float64("confidence", doc.Confidence).
				Msg("Extraction resolved")
			return domain.ExtractionResult{Document: doc, State: domain.StateResolved, Attempts: attempts}, nil
		}

		reason := "missing required fields: " + strings.Join(c.missing, ", ")
		log.Info().Str("method", string(method)).Strs("missing", c.missing).Msg("Backend record incomplete, advancing")
		attempts = append(attempts, o.record(method, domain.OutcomeFailure, reason, took))
		if best == nil || c.betterThan(best) {
			best = &c
		}
	}

	if best == nil {
		best = o.empty(order[0], in)
	}
	conf := min(best.confidence, o.cfg.ExhaustedCap, config.MaxExhaustedCap)
	doc := o.document(*best, conf, true)

	o.metrics.ObserveExtraction(string(domain.StateExhausted), time.Since(start))
	log.Warn().
		Str("method", string(doc.Method)).
		Int("attempts", len(attempts)).
		Msg("Extraction exhausted, returning best partial record")

	return domain.ExtractionResult{Document: doc, State: domain.StateExhausted, Attempts: attempts}, nil
}

func (o *Orchestrator) try(ctx context.Context, b backend.Backend, in backend.Input) (backend.Result, time.Duration) {
	if d := o.timeout(b.Method()); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	start := time.Now()
	res := b.TryExtract(ctx, in)
	return res, time.Since(start)
}

func (o *Orchestrator) skip(method domain.Method, reason string) domain.Attempt {
	return o.record(method, domain.OutcomeSkipped, reason, 0)
}

func (o *Orchestrator) record(method domain.Method, outcome domain.AttemptOutcome, reason string, took time.Duration) domain.Attempt {
	o.metrics.ObserveAttempt(string(method), string(outcome), took)
	return domain.Attempt{Method: method, Outcome: outcome, Reason: reason, Duration: took}
}

func (o *Orchestrator) timeout(method domain.Method) time.Duration {
	t := o.cfg.BackendTimeout
	switch method {
	case domain.MethodVisionAI:
		return t.VisionAI
	case domain.MethodTextLayer:
		return t.TextLayer
	case domain.MethodOCR:
		return t.OCR
	case domain.MethodPatternSpecialized:
		return t.PatternSpecialized
	}
	return 0
}

func (o *Orchestrator) base(method domain.Method, in backend.Input) float64 {
	b := o.cfg.BaseConfidence
	if method == domain.MethodPatternSpecialized && textual(in) {
		return b.Text
	}
	switch method {
	case domain.MethodVisionAI:
		return b.VisionAI
	case domain.MethodTextLayer:
		return b.TextLayer
	case domain.MethodOCR:
		return b.OCR
	case domain.MethodPatternSpecialized:
		return b.PatternSpecialized
	}
	return 0
}

// merge completes a backend record with the pattern pass, settles the kind,
// reconstructs codes and scores the result.
func (o *Orchestrator) merge(method domain.Method, res backend.Result, in backend.Input) candidate {
	fields := res.Fields
	own := res.Fields

	var sources []string
	if strings.TrimSpace(res.RawText) != "" {
		sources = append(sources, res.RawText)
	}
	if text := backend.InputText(in); strings.TrimSpace(text) != "" && text != res.RawText {
		sources = append(sources, text)
	}

	// On the text path the backend already ran the patterns over the same text.
	if !textual(in) {
		for _, src := range sources {
			fields.FillFrom(patterns.Extract(src, in.KindHint))
		}
	}

	all := strings.Join(sources, "\n")
	if fields.Kind == nil {
		k := patterns.DetectKind(all, in.KindHint)
		fields.Kind = &k
	} else if patterns.DetectKind(all, nil) == domain.KindTaxGuide {
		fields.Kind = domain.KindPtr(domain.KindTaxGuide)
	}

	normalizeFields(&fields)
	if o.cfg.ReconstructCodes {
		reconstruct(&fields)
	}

	req := required(*fields.Kind)
	var missing []string
	satisfied, patched := 0, 0
	for _, g := range req {
		if !g.satisfiedBy(&fields) {
			missing = append(missing, g.name())
			continue
		}
		satisfied++
		if !g.satisfiedBy(&own) {
			patched++
		}
	}

	base := o.base(method, in)
	conf := base - o.cfg.PatchPenalty*float64(patched)
	return candidate{
		method:     method,
		fields:     fields,
		rawText:    strings.Join(sources, "\n"),
		satisfied:  satisfied,
		missing:    missing,
		complete:   len(missing) == 0,
		base:       base,
		confidence: clamp(conf),
	}
}

func (o *Orchestrator) empty(method domain.Method, in backend.Input) *candidate {
	f := domain.Fields{}
	text := backend.InputText(in)
	k := patterns.DetectKind(text, in.KindHint)
	f.Kind = &k
	return &candidate{method: method, fields: f, rawText: text}
}

func (o *Orchestrator) document(c candidate, confidence float64, incomplete bool) domain.ExtractedDocument {
	doc := domain.NewDocument(c.fields, c.method, confidence, c.rawText)
	if o.cfg.MaxExcerpt > 0 && o.cfg.MaxExcerpt < domain.MaxExcerptLength {
		doc.RawSourceExcerpt = domain.Excerpt(c.rawText, o.cfg.MaxExcerpt)
	}
	doc.Incomplete = incomplete
	return doc
}

// normalizeFields canonicalizes codes and names that backends may return in
// loose form.
func normalizeFields(f *domain.Fields) {
	f.LineCode = normalize.Digits(f.LineCode)
	f.Barcode = normalize.Digits(f.Barcode)
	f.BeneficiaryTaxID = normalize.TaxID(f.BeneficiaryTaxID)
	f.PayerTaxID = normalize.TaxID(f.PayerTaxID)
	f.BeneficiaryName = strings.Join(strings.Fields(f.BeneficiaryName), " ")
	f.PayerName = strings.Join(strings.Fields(f.PayerName), " ")
	f.Description = strings.TrimSpace(f.Description)
	if f.Amount != nil {
		a := f.Amount.Round(2)
		f.Amount = &a
	}
}

// reconstruct fills the missing half of a line code / barcode pair when the
// present half is valid.
func reconstruct(f *domain.Fields) {
	switch {
	case f.LineCode == "" && boleto.ValidBarcode(f.Barcode):
		if line, err := boleto.BarcodeToLine(f.Barcode); err == nil {
			f.LineCode = line
		}
	case f.Barcode == "" && boleto.ValidLine(f.LineCode):
		if bc, err := boleto.LineToBarcode(f.LineCode); err == nil {
			f.Barcode = bc
		}
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
