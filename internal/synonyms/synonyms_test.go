package synonyms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindField(t *testing.T) {
	set := Default()
	tests := []struct {
		name      string
		text      string
		category  Category
		wantLabel string
		wantValue string
	}{
		{
			name:      "credor label",
			text:      "Valor: R$ 1.234,56\nVencimento: 15/12/2025\nCredor: Empresa XYZ",
			category:  Beneficiary,
			wantLabel: "credor",
			wantValue: "Empresa XYZ",
		},
		{
			name:      "accent and case insensitive",
			text:      "BENEFICIARIO: Companhia de Agua\nPAGADOR: Maria",
			category:  Beneficiary,
			wantLabel: "beneficiário",
			wantValue: "Companhia de Agua",
		},
		{
			name:      "value keeps original accents",
			text:      "Sacado - João da Silva",
			category:  Payer,
			wantLabel: "sacado",
			wantValue: "João da Silva",
		},
		{
			name:      "longer label wins at same offset",
			text:      "Valor total: R$ 99,90",
			category:  Amount,
			wantLabel: "valor total",
			wantValue: "R$ 99,90",
		},
		{
			name:      "first in document order wins",
			text:      "Favorecido: Loja A\nBeneficiário: Loja B",
			category:  Beneficiary,
			wantLabel: "favorecido",
			wantValue: "Loja A",
		},
		{
			name:      "label with empty value is skipped",
			text:      "Vencimento:\nData de pagamento: 10/03/2025",
			category:  Date,
			wantLabel: "data de pagamento",
			wantValue: "10/03/2025",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := FindField(tt.text, tt.category, set)
			require.True(t, ok)
			assert.Equal(t, tt.wantLabel, m.Label)
			assert.Equal(t, tt.wantValue, m.Value)
		})
	}
}

func TestFindField_WordBoundary(t *testing.T) {
	// "totalmente" must not match the "total" label.
	_, ok := FindField("Pago totalmente em dinheiro", Amount, Set{Amount: {"total"}})
	assert.False(t, ok)
}

func TestFindField_NoMatch(t *testing.T) {
	_, ok := FindField("nada aqui", Beneficiary, Default())
	assert.False(t, ok)

	_, ok = FindField("", Beneficiary, Default())
	assert.False(t, ok)

	_, ok = FindField("Credor: X", Category("unknown"), Default())
	assert.False(t, ok)
}

func TestFindField_OffsetIsInOriginalText(t *testing.T) {
	text := "Órgão emissor\nFavorecido: Prefeitura"
	m, ok := FindField(text, Beneficiary, Default())
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text[m.Offset:], "Favorecido"))
}

func TestFindField_WindowIsBounded(t *testing.T) {
	text := "Credor: " + strings.Repeat("x", 200)
	m, ok := FindField(text, Beneficiary, Default())
	require.True(t, ok)
	assert.Len(t, m.Value, MaxValueWindow)
}

func TestHas(t *testing.T) {
	assert.True(t, Has("Linha Digitável 34191...", Code, Default()))
	assert.False(t, Has("codigos", Code, Set{Code: {"codigo"}}))
}
