// Package synonyms locates labelled fields ("Beneficiário:", "Sacado", "Valor
// do documento") in document text using a Portuguese label dictionary.
package synonyms

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
)

// Category groups labels that introduce the same kind of field.
type Category string

const (
	Beneficiary    Category = "beneficiary"
	Payer          Category = "payer"
	Amount         Category = "amount"
	Date           Category = "date"
	Code           Category = "code"
	Identification Category = "identification"
)

// MaxValueWindow bounds the value captured after a label, in runes.
const MaxValueWindow = 80

// Set maps each category to its labels.
type Set map[Category][]string

// Match is a label found in text and the value that follows it.
type Match struct {
	Label  string
	Value  string
	Offset int
}

// Default returns the built-in dictionary.
func Default() Set {
	return Set{
		Beneficiary: {
			"beneficiário", "cedente", "credor", "favorecido", "recebedor",
			"destinatário", "fornecedor", "prestador de serviço", "empresa credora",
			"razão social", "nome do favorecido", "nome do recebedor",
		},
		Payer: {
			"pagador", "sacado", "devedor", "depositante", "ordenante", "emitente",
			"cliente", "contratante", "titular", "tomador", "locatário", "inquilino",
			"consumidor", "assinante", "nome do pagador",
		},
		Amount: {
			"valor", "valor total", "valor a pagar", "valor do boleto",
			"valor do documento", "valor cobrado", "valor líquido", "valor pago",
			"total", "total a pagar", "montante", "quantia", "importância",
		},
		Date: {
			"vencimento", "data de vencimento", "data do vencimento", "vence em",
			"data de pagamento", "data do pagamento", "data limite",
			"data da transferência", "data da transação", "data",
		},
		Code: {
			"linha digitável", "código de barras", "nosso número",
			"número do documento", "autenticação", "código",
		},
		Identification: {
			"cpf", "cnpj", "cpf/cnpj", "cnpj/cpf", "inscrição estadual", "documento",
		},
	}
}

// FindField returns the first label of category in text, in document order,
// with the value that follows it on the same line. Matching ignores case and
// accents and requires labels to sit on word boundaries. At equal offsets the
// longer label wins. Labels followed by nothing are skipped.
func FindField(text string, category Category, set Set) (Match, bool) {
	labels := set[category]
	if len(labels) == 0 || text == "" {
		return Match{}, false
	}

	folded, index := normalize.FoldIndex(text)

	var best Match
	bestStart, bestLen := 0, 0
	found := false

	for _, label := range labels {
		fl := normalize.Fold(label)
		if fl == "" {
			continue
		}
		for from := 0; from < len(folded); {
			i := strings.Index(folded[from:], fl)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(fl)
			from = start + 1

			if found && (start > bestStart || (start == bestStart && len(fl) <= bestLen)) {
				break
			}
			if !onBoundary(folded, start, end) {
				continue
			}
			value := valueAfter(text, folded, index, end)
			if value == "" {
				continue
			}

			best = Match{Label: label, Value: value, Offset: index[start]}
			bestStart, bestLen = start, len(fl)
			found = true
			break
		}
	}

	return best, found
}

// Has reports whether any label of category appears in text.
func Has(text string, category Category, set Set) bool {
	folded := normalize.Fold(text)
	for _, label := range set[category] {
		fl := normalize.Fold(label)
		for from := 0; from < len(folded); {
			i := strings.Index(folded[from:], fl)
			if i < 0 {
				break
			}
			start := from + i
			if onBoundary(folded, start, start+len(fl)) {
				return true
			}
			from = start + 1
		}
	}
	return false
}

func onBoundary(s string, start, end int) bool {
	if start > 0 && isWord(s[start]) && isWord(s[start-1]) {
		return false
	}
	if end < len(s) && isWord(s[end-1]) && isWord(s[end]) {
		return false
	}
	return true
}

func isWord(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}

// valueAfter skips separators after a label and returns the rest of the line
// from the original text, bounded by MaxValueWindow.
func valueAfter(text, folded string, index []int, pos int) string {
	for pos < len(folded) && strings.IndexByte(":- \t", folded[pos]) >= 0 {
		pos++
	}
	if pos >= len(folded) {
		return ""
	}

	rest := text[index[pos]:]
	if nl := strings.IndexAny(rest, "\r\n"); nl >= 0 {
		rest = rest[:nl]
	}
	if utf8.RuneCountInString(rest) > MaxValueWindow {
		rest = string([]rune(rest)[:MaxValueWindow])
	}
	return strings.TrimRightFunc(rest, unicode.IsSpace)
}
