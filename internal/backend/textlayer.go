package backend

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/patterns"
)

// PDFTextReader returns the embedded text of a PDF and its page count.
type PDFTextReader func(data []byte) (text string, pages int, err error)

// TextLayer reads the embedded text of digital PDFs.
type TextLayer struct {
	read           PDFTextReader
	minTextPerPage int
}

// NewTextLayer uses ledongthuc/pdf when read is nil.
func NewTextLayer(read PDFTextReader, minTextPerPage int) *TextLayer {
	if read == nil {
		read = ReadPDFText
	}
	return &TextLayer{read: read, minTextPerPage: minTextPerPage}
}

func (t *TextLayer) Method() domain.Method { return domain.MethodTextLayer }

func (t *TextLayer) TryExtract(ctx context.Context, in Input) Result {
	if in.Shape() != ShapePDF {
		return fail(domain.MethodTextLayer, CodeUnsupportedInput, "not a PDF", nil)
	}

	text, pages, err := t.read(in.Data)
	if f := ctxFailure(ctx, domain.MethodTextLayer); f != nil {
		return Result{Failure: f}
	}
	if err != nil {
		return fail(domain.MethodTextLayer, CodeToolError, "read PDF text", err)
	}
	if pages < 1 {
		pages = 1
	}

	chars := utf8.RuneCountInString(strings.Join(strings.Fields(text), ""))
	if chars/pages < t.minTextPerPage {
		return fail(domain.MethodTextLayer, CodeNoText,
			fmt.Sprintf("%d characters over %d pages", chars, pages), nil)
	}

	return Result{Fields: patterns.Extract(text, in.KindHint), RawText: text}
}

// ReadPDFText extracts plain text page by page. The PDF library panics on
// some malformed files; that is reported as an error.
func ReadPDFText(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during PDF text extraction: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open PDF reader: %w", err)
	}

	pages = reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", pages, fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(content)
		b.WriteByte('\n')
	}
	return b.String(), pages, nil
}
