package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	pdfMagic = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")
	pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
)

func TestInput_Shape(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Shape
	}{
		{"explicit pdf", Input{MediaType: "application/pdf"}, ShapePDF},
		{"explicit image with params", Input{MediaType: "image/jpeg; q=0.9"}, ShapeImage},
		{"explicit text", Input{MediaType: "text/plain; charset=utf-8"}, ShapeText},
		{"sniffed pdf", Input{Data: pdfMagic}, ShapePDF},
		{"sniffed png", Input{Data: pngMagic}, ShapeImage},
		{"sniffed text", Input{Data: []byte("Valor: R$ 10,00")}, ShapeText},
		{"text only", Input{Text: "Valor: R$ 10,00"}, ShapeText},
		{"unknown binary", Input{Data: []byte{0, 1, 2, 3}}, ShapeUnknown},
		{"empty", Input{}, ShapeUnknown},
		{"unsupported type", Input{MediaType: "application/zip"}, ShapeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Shape())
		})
	}
}

func TestFailure_Error(t *testing.T) {
	f := &Failure{Method: "ocr", Code: CodeUnavailable, Reason: "tool not installed", Cause: ErrToolMissing}
	assert.Contains(t, f.Error(), "ocr: unavailable: tool not installed")
	assert.ErrorIs(t, f, ErrToolMissing)
}
