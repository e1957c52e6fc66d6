package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticReader(text string, pages int, err error) PDFTextReader {
	return func([]byte) (string, int, error) { return text, pages, err }
}

func TestTextLayer_ExtractsFromEmbeddedText(t *testing.T) {
	text := "Valor: R$ 1.234,56\nVencimento: 15/12/2025\nCredor: Empresa XYZ\n" +
		strings.Repeat("Pagamento referente a serviços prestados. ", 3)
	tl := NewTextLayer(staticReader(text, 1, nil), 50)

	res := tl.TryExtract(context.Background(), Input{Data: pdfMagic, MediaType: MediaPDF})

	require.True(t, res.OK(), "%v", res.Failure)
	assert.Equal(t, "1234.56", res.Fields.Amount.StringFixed(2))
	assert.Equal(t, "2025-12-15", res.Fields.Date.String())
	assert.Equal(t, "Empresa XYZ", res.Fields.BeneficiaryName)
	assert.Equal(t, text, res.RawText)
}

func TestTextLayer_Failures(t *testing.T) {
	tests := []struct {
		name     string
		reader   PDFTextReader
		in       Input
		wantCode FailureCode
	}{
		{
			name:     "scanned PDF with almost no text",
			reader:   staticReader("  p. 1  \n p. 2 ", 2, nil),
			in:       Input{Data: pdfMagic, MediaType: MediaPDF},
			wantCode: CodeNoText,
		},
		{
			name:     "reader error",
			reader:   staticReader("", 0, errors.New("malformed xref")),
			in:       Input{Data: pdfMagic, MediaType: MediaPDF},
			wantCode: CodeToolError,
		},
		{
			name:     "image input",
			reader:   staticReader("irrelevant", 1, nil),
			in:       Input{Data: pngMagic, MediaType: "image/png"},
			wantCode: CodeUnsupportedInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewTextLayer(tt.reader, 50).TryExtract(context.Background(), tt.in)
			require.NotNil(t, res.Failure)
			assert.Equal(t, tt.wantCode, res.Failure.Code)
			assert.Equal(t, domain.MethodTextLayer, res.Failure.Method)
		})
	}
}

func TestReadPDFText_Garbage(t *testing.T) {
	_, _, err := ReadPDFText([]byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
}
