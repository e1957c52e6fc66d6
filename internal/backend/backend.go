// Package backend holds the extraction strategies the orchestrator cascades
// through: vision model, PDF text layer, OCR and specialized barcode decode.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
)

// Shape is the coarse input class that selects the backend order.
type Shape string

const (
	ShapePDF     Shape = "pdf"
	ShapeImage   Shape = "image"
	ShapeText    Shape = "text"
	ShapeUnknown Shape = "unknown"
)

// Media types used across backends.
const (
	MediaPDF  = "application/pdf"
	MediaText = "text/plain"
)

// Input is one document to extract.
type Input struct {
	Data      []byte
	MediaType string
	Text      string
	KindHint  *domain.DocumentKind
}

// Shape classifies the input from its media type, sniffing the bytes when
// no type was given.
func (in Input) Shape() Shape {
	mt := in.MediaType
	if mt == "" && len(in.Data) > 0 {
		mt = SniffMediaType(in.Data)
	}
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch {
	case mt == MediaPDF:
		return ShapePDF
	case strings.HasPrefix(mt, "image/"):
		return ShapeImage
	case strings.HasPrefix(mt, "text/"):
		return ShapeText
	case mt == "" && strings.TrimSpace(in.Text) != "":
		return ShapeText
	}
	return ShapeUnknown
}

// InputText returns the text of a text-shaped input, reading Data when Text
// is empty.
func InputText(in Input) string {
	if in.Text != "" {
		return in.Text
	}
	if in.Shape() == ShapeText {
		return string(in.Data)
	}
	return ""
}

// SniffMediaType returns the MIME type detected from magic bytes, or "" when
// unknown. Bytes that are valid text are reported as text/plain.
func SniffMediaType(data []byte) string {
	kind, err := filetype.Match(data)
	if err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if looksLikeText(data) {
		return MediaText
	}
	return ""
}

func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	for _, b := range sample {
		if b == 0 {
			return false
		}
	}
	return true
}

// Backend is one extraction strategy.
type Backend interface {
	Method() domain.Method
	TryExtract(ctx context.Context, in Input) Result
}

// Result is a backend outcome. Exactly one of Fields (with RawText) or
// Failure is meaningful.
type Result struct {
	Fields  domain.Fields
	RawText string
	Failure *Failure
}

// OK reports whether the backend produced fields.
func (r Result) OK() bool {
	return r.Failure == nil
}

// FailureCode classifies why a backend gave up.
type FailureCode string

const (
	CodeUnavailable      FailureCode = "unavailable"
	CodeTimeout          FailureCode = "timeout"
	CodeBadReply         FailureCode = "bad_reply"
	CodeMissingFields    FailureCode = "missing_fields"
	CodeNoText           FailureCode = "no_text"
	CodeUnsupportedInput FailureCode = "unsupported_input"
	CodeToolError        FailureCode = "tool_error"
)

// Failure is a backend failure value. Backends return it instead of an error
// so that the cascade can move on.
type Failure struct {
	Method domain.Method
	Code   FailureCode
	Reason string
	Cause  error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", f.Method, f.Code, f.Reason, f.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", f.Method, f.Code, f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

func fail(method domain.Method, code FailureCode, reason string, cause error) Result {
	return Result{Failure: &Failure{Method: method, Code: code, Reason: reason, Cause: cause}}
}

// ctxFailure maps a context error to a timeout failure, or returns nil.
func ctxFailure(ctx context.Context, method domain.Method) *Failure {
	if err := ctx.Err(); err != nil {
		return &Failure{Method: method, Code: CodeTimeout, Reason: "deadline exceeded", Cause: err}
	}
	return nil
}
