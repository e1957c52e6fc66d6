package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	itauBarcode = "34197101600000150001090000012345678901234567"
	itauLine    = "34191090080001234567489012345677710160000015000"
)

func newTestSpecialized(runner *fakeRunner) *Specialized {
	s := NewSpecialized(runner, "zbarimg", NewOCR(runner, config.Default().OCR))
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSpecialized_DecodesBarcodeFromImage(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"zbarimg":   "QR-Code:ignored\n" + itauBarcode + "\n",
		"tesseract": "Beneficiário: Energia SA\nPagador: João Silva\n",
	}}

	res := newTestSpecialized(runner).TryExtract(context.Background(), Input{Data: pngMagic, MediaType: "image/png"})

	require.True(t, res.OK(), "%v", res.Failure)
	f := res.Fields
	assert.Equal(t, domain.KindBankSlip, *f.Kind)
	assert.Equal(t, itauBarcode, f.Barcode)
	assert.Equal(t, itauLine, f.LineCode)
	assert.Equal(t, "341", f.BankCode)
	assert.Equal(t, "150.00", f.Amount.StringFixed(2))
	assert.Equal(t, "2025-03-10", f.Date.String())
	assert.Equal(t, "Energia SA", f.BeneficiaryName, "names come from the OCR text")
	assert.Equal(t, "João Silva", f.PayerName)
	assert.Equal(t, []string{"--raw", "-q"}, runner.calls[0][1:3])
}

func TestSpecialized_OCRFailureKeepsBarcodeFields(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"zbarimg": itauBarcode + "\n"},
		errs:    map[string]error{"tesseract": fmt.Errorf("%w: tesseract", ErrToolMissing)},
	}

	res := newTestSpecialized(runner).TryExtract(context.Background(), Input{Data: pngMagic, MediaType: "image/png"})

	require.True(t, res.OK())
	assert.Equal(t, itauBarcode, res.Fields.Barcode)
	assert.Empty(t, res.Fields.BeneficiaryName)
	assert.Empty(t, res.RawText)
}

func TestSpecialized_TextIsNotDecoded(t *testing.T) {
	text := "Linha digitável: 34191.09008 00012.345674 89012.345677 7 10160000015000\nBeneficiário: Energia SA"
	runner := &fakeRunner{}

	res := newTestSpecialized(runner).TryExtract(context.Background(), Input{Text: text})

	require.True(t, res.OK(), "%v", res.Failure)
	assert.Equal(t, itauLine, res.Fields.LineCode)
	assert.Empty(t, res.Fields.Barcode)
	assert.Nil(t, res.Fields.Amount)
	assert.Nil(t, res.Fields.Date)
	assert.Equal(t, "Energia SA", res.Fields.BeneficiaryName)
	assert.Empty(t, runner.calls)
}

func TestSpecialized_Failures(t *testing.T) {
	tests := []struct {
		name     string
		runner   *fakeRunner
		in       Input
		wantCode FailureCode
	}{
		{
			name:     "zbarimg not installed",
			runner:   &fakeRunner{errs: map[string]error{"zbarimg": fmt.Errorf("%w: zbarimg", ErrToolMissing)}},
			in:       Input{Data: pngMagic, MediaType: "image/png"},
			wantCode: CodeUnavailable,
		},
		{
			name:     "no symbol found",
			runner:   &fakeRunner{errs: map[string]error{"zbarimg": errors.New("exit status 4")}},
			in:       Input{Data: pngMagic, MediaType: "image/png"},
			wantCode: CodeMissingFields,
		},
		{
			name:     "symbol is not a slip barcode",
			runner:   &fakeRunner{outputs: map[string]string{"zbarimg": "https://example.com\n"}},
			in:       Input{Data: pngMagic, MediaType: "image/png"},
			wantCode: CodeMissingFields,
		},
		{
			name:     "blank text",
			runner:   &fakeRunner{},
			in:       Input{Text: "   "},
			wantCode: CodeNoText,
		},
		{
			name:     "pdf input",
			runner:   &fakeRunner{},
			in:       Input{Data: pdfMagic, MediaType: MediaPDF},
			wantCode: CodeUnsupportedInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestSpecialized(tt.runner).TryExtract(context.Background(), tt.in)
			require.NotNil(t, res.Failure)
			assert.Equal(t, tt.wantCode, res.Failure.Code)
			assert.Equal(t, domain.MethodPatternSpecialized, res.Failure.Method)
		})
	}
}

func TestSpecialized_TextWithoutCodesKeepsPatternFields(t *testing.T) {
	runner := &fakeRunner{}

	res := newTestSpecialized(runner).TryExtract(context.Background(), Input{Data: []byte("Valor: R$ 10,00"), MediaType: MediaText})

	require.True(t, res.OK(), "%v", res.Failure)
	assert.Equal(t, "10.00", res.Fields.Amount.StringFixed(2))
	assert.Empty(t, res.Fields.Barcode)
	assert.Equal(t, "Valor: R$ 10,00", res.RawText)
	assert.Empty(t, runner.calls, "text input never shells out")
}

func TestSpecialized_UnknownMediaWithText(t *testing.T) {
	in := Input{Data: []byte{0x00, 0x01, 0x02}, MediaType: "application/x-unknown", Text: "Total R$ 42,00"}

	res := newTestSpecialized(&fakeRunner{}).TryExtract(context.Background(), in)

	require.True(t, res.OK(), "%v", res.Failure)
	assert.Equal(t, "42.00", res.Fields.Amount.StringFixed(2))
}
