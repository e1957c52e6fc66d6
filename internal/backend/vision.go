package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"golang.org/x/time/rate"
)

// Vision sends the document to a multimodal model with a structured prompt.
type Vision struct {
	submitter Submitter
	limiter   *rate.Limiter
}

// NewVision wraps a submitter. requestsPerMinute <= 0 disables limiting.
func NewVision(s Submitter, requestsPerMinute int) *Vision {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &Vision{submitter: s, limiter: rate.NewLimiter(limit, 1)}
}

func (v *Vision) Method() domain.Method { return domain.MethodVisionAI }

func (v *Vision) TryExtract(ctx context.Context, in Input) Result {
	log := logger.FromContext(ctx).With().Str("method", string(domain.MethodVisionAI)).Logger()

	if len(in.Data) == 0 && in.Text == "" {
		return fail(domain.MethodVisionAI, CodeUnsupportedInput, "empty input", nil)
	}

	if err := v.limiter.Wait(ctx); err != nil {
		if f := ctxFailure(ctx, domain.MethodVisionAI); f != nil {
			return Result{Failure: f}
		}
		return fail(domain.MethodVisionAI, CodeTimeout, "rate limiter wait", err)
	}

	reply, err := v.submitter.Submit(ctx, in, visionPrompt)
	if err != nil {
		if f := ctxFailure(ctx, domain.MethodVisionAI); f != nil {
			return Result{Failure: f}
		}
		if errors.Is(err, ErrEmptyReply) {
			return fail(domain.MethodVisionAI, CodeBadReply, "empty reply", err)
		}
		log.Warn().Err(err).Bool("retryable", IsRetryable(err)).Msg("Vision model call failed")
		return fail(domain.MethodVisionAI, CodeUnavailable, "model call failed", err)
	}

	fields, err := parseVisionReply(reply)
	if err != nil {
		log.Debug().Err(err).Str("reply", domain.Excerpt(reply, 200)).Msg("Unusable vision reply")
		return fail(domain.MethodVisionAI, CodeBadReply, "unparseable reply", err)
	}
	if !hasKeyFields(fields) {
		return fail(domain.MethodVisionAI, CodeMissingFields, "reply has no amount or reference", nil)
	}

	return Result{Fields: fields, RawText: fieldsText(fields)}
}

// fieldsText renders the reply fields as labelled lines so the pattern pass
// can run over them like any other raw text.
func fieldsText(f domain.Fields) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	add("Beneficiário", f.BeneficiaryName)
	add("Pagador", f.PayerName)
	add("Linha digitável", f.LineCode)
	add("Código de barras", f.Barcode)
	add("Descrição", f.Description)
	return strings.Join(lines, "\n")
}
