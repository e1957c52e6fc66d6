package categorizer

import (
	"testing"

	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	c := Default()

	tests := []struct {
		name      string
		text      string
		recipient string
		want      domain.Category
		wantConf  float64
	}{
		{"keyword in text and recipient", "Uber para o aeroporto", "Uber", domain.CategoryTransport, 0.6},
		{"text only", "Pagamento farmácia", "", domain.CategoryHealth, 0.2},
		{"accent and case folded", "FARMACIA DO BAIRRO", "", domain.CategoryHealth, 0.2},
		{"tie goes to priority", "pizza antes do cinema", "", domain.CategoryFood, 0.2},
		{"confidence capped", "farmácia drogaria hospital clínica exame consulta", "", domain.CategoryHealth, 1.0},
		{"fuel counts as transport", "Posto Ipiranga", "", domain.CategoryTransport, 0.4},
		{"word boundary", "produto barato", "", domain.CategoryOther, 0},
		{"nothing matches", "pagamento diverso", "Fulano de Tal", domain.CategoryOther, 0},
		{"empty", "", "", domain.CategoryOther, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Suggest(tt.text, tt.recipient)
			assert.Equal(t, tt.want, got.Category)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
		})
	}
}

func TestSuggest_RecipientBonusFromConfig(t *testing.T) {
	cfg := config.Categorizer{ScoreDivisor: 10, RecipientBonus: 5}
	c := New(cfg, Keywords{domain.CategoryEducation: {"alura"}})

	got := c.Suggest("assinatura anual", "Alura Cursos")

	assert.Equal(t, domain.CategoryEducation, got.Category)
	assert.InDelta(t, 0.5, got.Confidence, 1e-9)
}

func TestSuggest_RecipientSubstring(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		recipient string
		want      domain.Category
		wantConf  float64
	}{
		{"plural supermarket", "pagamento", "Supermercados BH", domain.CategoryFood, 0.4},
		{"plural drugstore", "compra", "Drogarias Pacheco", domain.CategoryHealth, 0.4},
		{"accented compound name", "boleto", "Farmácias Pague Menos", domain.CategoryHealth, 0.4},
		{"bonus once per category", "pagamento", "Padaria e Restaurante Sol", domain.CategoryFood, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Default().Suggest(tt.text, tt.recipient)
			assert.Equal(t, tt.want, got.Category)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
		})
	}
}

func TestSuggest_TextStillMatchesWholeWords(t *testing.T) {
	got := Default().Suggest("supermercados do bairro", "")
	assert.Equal(t, domain.CategoryOther, got.Category)
}

func TestSuggest_CountsRepeatedKeywords(t *testing.T) {
	got := Default().Suggest("uber ida, uber volta", "")
	assert.Equal(t, domain.CategoryTransport, got.Category)
	assert.InDelta(t, 0.4, got.Confidence, 1e-9)
}
