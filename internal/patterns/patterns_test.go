package patterns

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindPtr(k domain.DocumentKind) *domain.DocumentKind { return &k }

func TestExtract_LabelledBankSlip(t *testing.T) {
	text := "Valor: R$ 1.234,56\nVencimento: 15/12/2025\nCredor: Empresa XYZ"

	f := Extract(text, kindPtr(domain.KindBankSlip))

	require.NotNil(t, f.Amount)
	assert.Equal(t, "1234.56", f.Amount.StringFixed(2))
	require.NotNil(t, f.Date)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.December, Day: 15}, *f.Date)
	assert.Equal(t, "Empresa XYZ", f.BeneficiaryName)
	require.NotNil(t, f.Kind)
	assert.Equal(t, domain.KindBankSlip, *f.Kind)
}

func TestExtract_CurrencyAmounts(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Total: R$ 1.234", "1234.00"},
		{"Valor R$ 12.500", "12500.00"},
		{"Valor R$ 1.234.567", "1234567.00"},
		{"Total R$ 1.234,56", "1234.56"},
		{"Total R$ 50,00.", "50.00"},
		{"Total R$ 10.50", "10.50"},
		{"Pago R$ 80", "80.00"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := Extract(tt.text, nil)
			require.NotNil(t, f.Amount)
			assert.Equal(t, tt.want, f.Amount.StringFixed(2))
		})
	}
}

func TestExtract_BarcodeOnly(t *testing.T) {
	barcode := "34197101600000150001090000012345678901234567"

	f := Extract(barcode, kindPtr(domain.KindBankSlip))

	assert.Equal(t, barcode, f.Barcode)
	assert.Empty(t, f.LineCode)
	assert.Nil(t, f.Amount)
	assert.Nil(t, f.Date)
	assert.Equal(t, domain.KindBankSlip, *f.Kind)
	assert.Equal(t, "341", f.BankCode)
}

func TestExtract_FormattedLineCode(t *testing.T) {
	text := "Linha digitável: 34191.09008 00012.345674 89012.345677 7 10160000015000\nBeneficiário: Energia SA"

	f := Extract(text, nil)

	assert.Equal(t, "34191090080001234567489012345677710160000015000", f.LineCode)
	assert.Empty(t, f.BeneficiaryTaxID, "line digits are not tax ids")
	assert.Equal(t, "Energia SA", f.BeneficiaryName)
	assert.Equal(t, domain.KindBankSlip, *f.Kind)
}

func TestExtract_PixReceipt(t *testing.T) {
	text := "Comprovante de Pix\n" +
		"Valor: R$ 250,00\n" +
		"Data: 05/03/2025\n" +
		"Destinatário: Maria Souza\n" +
		"Chave Pix: maria@example.com\n" +
		"ID da transação: E18236120202503051234abcdEFGH567"

	f := Extract(text, nil)

	assert.Equal(t, "250.00", f.Amount.StringFixed(2))
	assert.Equal(t, "2025-03-05", f.Date.String())
	assert.Equal(t, "Maria Souza", f.BeneficiaryName)
	assert.Equal(t, "maria@example.com", f.PixKey)
	assert.Equal(t, PixKeyEmail, f.PixKeyType)
	assert.Equal(t, "E18236120202503051234abcdEFGH567", f.ExternalTransactionID)
	assert.Equal(t, domain.KindPixReceipt, *f.Kind)
}

func TestExtract_TaxIDAssignment(t *testing.T) {
	tests := []struct {
		name            string
		text            string
		wantBeneficiary string
		wantPayer       string
	}{
		{
			name:            "beneficiary first",
			text:            "Beneficiário: Loja X CNPJ 11.222.333/0001-81\nPagador: João CPF 529.982.247-25",
			wantBeneficiary: "11222333000181",
			wantPayer:       "52998224725",
		},
		{
			name:            "payer label precedes first id",
			text:            "Pagador: 529.982.247-25\nFavorecido CNPJ 11.222.333/0001-81",
			wantBeneficiary: "11222333000181",
			wantPayer:       "52998224725",
		},
		{
			name:            "invalid checksum is still captured",
			text:            "CPF: 123.456.789-00",
			wantBeneficiary: "12345678900",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(tt.text, nil)
			assert.Equal(t, tt.wantBeneficiary, f.BeneficiaryTaxID)
			assert.Equal(t, tt.wantPayer, f.PayerTaxID)
		})
	}
}

func TestExtract_NamesAreTrimmedAtTaxID(t *testing.T) {
	f := Extract("Beneficiário: Loja X CNPJ 11.222.333/0001-81\nPagador: João CPF 529.982.247-25", nil)
	assert.Equal(t, "Loja X", f.BeneficiaryName)
	assert.Equal(t, "João", f.PayerName)
}

func TestExtract_Idempotent(t *testing.T) {
	inputs := []string{
		"Valor: R$ 1.234,56\nVencimento: 15/12/2025\nCredor: Empresa XYZ",
		"34197101600000150001090000012345678901234567",
		"Comprovante de Pix\nValor: R$ 250,00\nChave Pix: 123e4567-e89b-12d3-a456-426614174000",
		"",
		"texto sem nada de útil",
	}
	for _, in := range inputs {
		assert.Equal(t, Extract(in, nil), Extract(in, nil), in)
	}
}

func TestExtract_EmptyKeepsHint(t *testing.T) {
	f := Extract("   ", kindPtr(domain.KindTaxGuide))
	require.NotNil(t, f.Kind)
	assert.Equal(t, domain.KindTaxGuide, *f.Kind)
	assert.Nil(t, f.Amount)
}

func TestClassifyPixKey(t *testing.T) {
	tests := []struct {
		in       string
		wantKey  string
		wantType string
	}{
		{"Maria@Example.com", "maria@example.com", PixKeyEmail},
		{"123E4567-E89B-12D3-A456-426614174000", "123e4567-e89b-12d3-a456-426614174000", PixKeyRandom},
		{"+55 81 98765-4321", "+5581987654321", PixKeyPhone},
		{"81987654321", "+5581987654321", PixKeyPhone},
		{"529.982.247-25", "52998224725", PixKeyCPF},
		{"11.222.333/0001-81", "11222333000181", PixKeyCNPJ},
		{"foo", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, typ := ClassifyPixKey(tt.in)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantType, typ)
		})
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		text string
		hint *domain.DocumentKind
		want domain.DocumentKind
	}{
		{"darf overrides hint", "DARF - Receita Federal", kindPtr(domain.KindPixReceipt), domain.KindTaxGuide},
		{"upper DAS", "DAS - Simples", nil, domain.KindTaxGuide},
		{"preposition das is not a tax guide", "pagamento das contas", nil, domain.KindGenericReceipt},
		{"barcode", "34197101600000150001090000012345678901234567", nil, domain.KindBankSlip},
		{"slip label", "Código de barras abaixo", nil, domain.KindBankSlip},
		{"random key", "chave 123e4567-e89b-12d3-a456-426614174000", nil, domain.KindPixReceipt},
		{"pix marker beats transfer", "Transferência via Pix", nil, domain.KindPixReceipt},
		{"ted", "Comprovante de TED", nil, domain.KindBankTransfer},
		{"hint fallback", "Obrigado pela compra", kindPtr(domain.KindBankSlip), domain.KindBankSlip},
		{"generic", "Obrigado pela compra", nil, domain.KindGenericReceipt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.text, tt.hint))
		})
	}
}
