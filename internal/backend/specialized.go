package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/boleto"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/patterns"
)

// Specialized decodes the Interleaved 2 of 5 barcode printed on bank slips
// with zbarimg and reads bank, amount and due date from it. Other fields come
// from OCR text. Plain-text input goes through the regex extractor only.
type Specialized struct {
	runner  Runner
	zbarimg string
	ocr     *OCR
	now     func() time.Time
}

// NewSpecialized builds the backend. ocr may be nil, in which case only the
// barcode fields are returned.
func NewSpecialized(runner Runner, zbarimg string, ocr *OCR) *Specialized {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Specialized{runner: runner, zbarimg: zbarimg, ocr: ocr, now: time.Now}
}

func (s *Specialized) Method() domain.Method { return domain.MethodPatternSpecialized }

func (s *Specialized) TryExtract(ctx context.Context, in Input) Result {
	switch shape := in.Shape(); {
	case shape == ShapeImage:
		return s.fromImage(ctx, in)
	case shape == ShapeText, shape == ShapeUnknown && strings.TrimSpace(in.Text) != "":
		return s.fromText(InputText(in), in.KindHint)
	}
	return fail(domain.MethodPatternSpecialized, CodeUnsupportedInput, "expects an image or text", nil)
}

func (s *Specialized) fromImage(ctx context.Context, in Input) Result {
	log := logger.FromContext(ctx)

	dir, err := os.MkdirTemp("", "docx-zbar-*")
	if err != nil {
		return fail(domain.MethodPatternSpecialized, CodeToolError, "create temp dir", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "input"+imageExt(in.MediaType))
	if err := os.WriteFile(path, in.Data, 0600); err != nil {
		return fail(domain.MethodPatternSpecialized, CodeToolError, "write image", err)
	}

	out, err := s.runner.Run(ctx, s.zbarimg, "--raw", "-q", path)
	if err != nil && len(out) == 0 {
		// zbarimg exits non-zero when it finds no symbol.
		if f := ctxFailure(ctx, domain.MethodPatternSpecialized); f != nil {
			return Result{Failure: f}
		}
		if errors.Is(err, ErrToolMissing) {
			return toolFailure(ctx, domain.MethodPatternSpecialized, err)
		}
		return fail(domain.MethodPatternSpecialized, CodeMissingFields, "no barcode decoded", err)
	}

	var fields domain.Fields
	decoded := false
	for _, line := range strings.Split(string(out), "\n") {
		if f, ok := s.decode(line); ok {
			fields, decoded = f, true
			break
		}
	}
	if !decoded {
		return fail(domain.MethodPatternSpecialized, CodeMissingFields, "no bank slip barcode decoded", nil)
	}

	raw := ""
	if s.ocr != nil {
		text, err := s.ocr.Recognize(ctx, in)
		if err != nil {
			log.Debug().Err(err).Msg("OCR for slip text failed, keeping barcode fields only")
		} else {
			raw = text
			fields.FillFrom(patterns.Extract(text, in.KindHint))
		}
	}
	return Result{Fields: fields, RawText: raw}
}

// fromText runs the regex extractor alone. Raw text is never decoded into
// slip fields; a bare barcode keeps amount and due date absent.
func (s *Specialized) fromText(text string, hint *domain.DocumentKind) Result {
	if strings.TrimSpace(text) == "" {
		return fail(domain.MethodPatternSpecialized, CodeNoText, "empty text", nil)
	}
	return Result{Fields: patterns.Extract(text, hint), RawText: text}
}

// decode turns a 44-digit barcode or 47-digit line into slip fields.
func (s *Specialized) decode(code string) (domain.Fields, bool) {
	info, err := boleto.Decode(code, s.now())
	if err != nil {
		return domain.Fields{}, false
	}

	f := domain.Fields{
		Kind:     domain.KindPtr(domain.KindBankSlip),
		Barcode:  info.Barcode,
		LineCode: info.Line,
		BankCode: info.BankCode,
		Date:     info.DueDate,
	}
	if info.Amount.IsPositive() {
		amount := info.Amount
		f.Amount = &amount
	}
	return f, true
}
