package normalize

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"brazilian with currency", "R$ 1.234,56", "1234.56"},
		{"brazilian no thousands", "150,00", "150.00"},
		{"plain decimal", "1234.56", "1234.56"},
		{"thousands dot only", "1.234", "1234.00"},
		{"multiple thousands groups", "12.345.678", "12345678.00"},
		{"dot decimal two digits", "12.50", "12.50"},
		{"us style", "1,234.56", "1234.56"},
		{"nbsp after currency", "R$\u00a0320,50", "320.50"},
		{"embedded in text", "Valor do documento: R$ 89,90 reais", "89.90"},
		{"trailing separator", "100,", "100.00"},
		{"rounds to cents", "10,005", "10.01"},
		{"integer", "R$ 50", "50.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestAmount_NoDigits(t *testing.T) {
	_, err := Amount("R$ --")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindAmount, perr.Kind)
}

func TestAmount_RoundTripsFormatBRL(t *testing.T) {
	values := []string{"0.01", "0.50", "1", "99.99", "1000", "1234.56", "1000000", "987654321.09"}
	for _, v := range values {
		x := decimal.RequireFromString(v)
		got, err := Amount(FormatBRL(x))
		require.NoError(t, err, v)
		assert.True(t, x.Equal(got), "%s -> %s -> %s", v, FormatBRL(x), got)
	}
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatBRL(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "R$ 0,50", FormatBRL(decimal.RequireFromString("0.5")))
	assert.Equal(t, "R$ 1.000.000,00", FormatBRL(decimal.RequireFromString("1000000")))
	assert.Equal(t, "-R$ 12,00", FormatBRL(decimal.RequireFromString("-12")))
}

func TestDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		layouts []string
		want    civil.Date
	}{
		{"default", "10/03/2025", nil, civil.Date{Year: 2025, Month: time.March, Day: 10}},
		{"embedded", "Vencimento: 05/01/2026", nil, civil.Date{Year: 2026, Month: time.January, Day: 5}},
		{"single digits", "5/3/2025", nil, civil.Date{Year: 2025, Month: time.March, Day: 5}},
		{"dash hint", "10-03-2025", []string{LayoutBRDash}, civil.Date{Year: 2025, Month: time.March, Day: 10}},
		{"dot hint", "10.03.2025", []string{LayoutBRDot}, civil.Date{Year: 2025, Month: time.March, Day: 10}},
		{"short year", "10/03/25", []string{LayoutBR, LayoutBRShort}, civil.Date{Year: 2025, Month: time.March, Day: 10}},
		{"iso", "2025-03-10", []string{LayoutISO}, civil.Date{Year: 2025, Month: time.March, Day: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Date(tt.input, tt.layouts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_Errors(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{"32/01/2025", "day out of range"},
		{"10/13/2025", "month out of range"},
		{"31/02/2025", "date does not exist or layout mismatch"},
		{"sem data", "no date found"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Date(tt.input)
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, KindDate, perr.Kind)
			assert.Equal(t, tt.reason, perr.Reason)
		})
	}
}

func TestTaxID(t *testing.T) {
	assert.Equal(t, "12345678000195", TaxID("12.345.678/0001-95"))
	assert.Equal(t, "52998224725", TaxID("529.982.247-25"))
	assert.Equal(t, "", TaxID("n/a"))
}

func TestDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"34191.09008 00012.345674 89012.345677 7 10160000015000", "34191090080001234567489012345677710160000015000"},
		{"(81) 98765-4321", "81987654321"},
		{"１２３ 45", "45"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Digits(tt.in), tt.in)
	}
}

func TestWhitespace(t *testing.T) {
	in := "  BANCO   ITAU \t S.A.  \r\n\n   \nValor:  R$ 10,00  "
	assert.Equal(t, "BANCO ITAU S.A.\nValor: R$ 10,00", Whitespace(in))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "beneficiario", Fold("Beneficiário"))
	assert.Equal(t, "linha digitavel", Fold("LINHA DIGITÁVEL"))
	assert.Equal(t, "sao joao", Fold("São João"))
}

func TestFoldIndex(t *testing.T) {
	text := "Código: 123"
	folded, index := FoldIndex(text)

	assert.Equal(t, "codigo: 123", folded)
	require.Len(t, index, len(folded))

	pos := len("codigo: ")
	assert.Equal(t, "123", text[index[pos]:])
}
