package categorizer

import "github.com/mlisboa17/assistente-pessoal/internal/domain"

// Keywords lists the merchant and expense words per category. Entries are
// folded before matching, so accents and case do not matter.
type Keywords map[domain.Category][]string

// DefaultKeywords is the built-in Brazilian merchant dictionary. Fuel
// stations count as transport.
func DefaultKeywords() Keywords {
	return Keywords{
		domain.CategoryFood: {
			"restaurante", "lanchonete", "padaria", "mercado", "supermercado",
			"ifood", "uber eats", "rappi", "delivery", "pizza", "burger",
			"açougue", "hortifruti", "feira", "bar", "café",
			"mcdonald", "subway", "bk", "atacadão", "assaí", "carrefour",
			"extra", "pão de açúcar", "big", "mateus", "gbarbosa",
		},
		domain.CategoryTransport: {
			"uber", "99", "taxi", "estacionamento", "pedágio", "ônibus",
			"metrô", "passagem", "cabify", "99pop", "indriver",
			"posto", "gasolina", "combustível", "shell", "ipiranga",
			"petrobras", "abastecimento", "diesel", "etanol", "gnv",
		},
		domain.CategoryHousing: {
			"aluguel", "condomínio", "luz", "energia", "celpe", "enel",
			"água", "compesa", "saneamento", "gás", "internet", "telefone",
			"tim", "vivo", "claro", "oi", "net", "sky",
		},
		domain.CategoryHealth: {
			"farmácia", "drogaria", "hospital", "clínica", "médico",
			"consulta", "exame", "laboratório", "dentista", "plano de saúde",
			"unimed", "hapvida", "pague menos", "drogasil", "panvel",
		},
		domain.CategoryLeisure: {
			"cinema", "teatro", "show", "netflix", "spotify", "amazon",
			"disney", "hbo", "streaming", "ingresso", "evento", "academia",
			"smartfit", "bluefit", "gym",
		},
		domain.CategoryEducation: {
			"escola", "faculdade", "curso", "livro", "udemy", "alura",
			"mensalidade", "matrícula", "apostila",
		},
		domain.CategoryClothing: {
			"roupa", "loja", "shopping", "renner", "riachuelo", "c&a",
			"marisa", "hering", "centauro", "netshoes", "zattini",
		},
		domain.CategoryTechnology: {
			"celular", "computador", "notebook", "eletrônico", "samsung",
			"apple", "xiaomi", "magazine", "casas bahia", "americanas",
		},
	}
}
